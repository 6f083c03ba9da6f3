package models

import "time"

type Category string

const (
	CategorySoups  Category = "soups"
	CategoryMains  Category = "mains"
	CategorySides  Category = "sides"
	CategorySalads Category = "salads"
	CategoryBakery Category = "bakery"
	CategoryDrinks Category = "drinks"

	// CategoryAll is the filter sentinel; no dish carries it.
	CategoryAll Category = "all"
)

var Categories = []Category{
	CategorySoups,
	CategoryMains,
	CategorySides,
	CategorySalads,
	CategoryBakery,
	CategoryDrinks,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Dish struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	IsNew       bool     `json:"isNew"`
}

type CartLine struct {
	Dish
	Quantity int `json:"quantity"`
}

func (l CartLine) Subtotal() int {
	return l.Price * l.Quantity
}

type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	IsAdmin   bool   `json:"isAdmin"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID            int64       `json:"id"`
	UserID        int         `json:"userId"`
	Items         []CartLine  `json:"items"`
	Total         int         `json:"total"`
	OrderNumber   string      `json:"orderNumber"`
	CreatedAt     time.Time   `json:"createdAt"`
	CreatedLabel  string      `json:"createdLabel"`
	Status        OrderStatus `json:"status"`
	EstimatedTime string      `json:"estimatedTime,omitempty"`
	Comment       string      `json:"comment,omitempty"`
}

type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// LinesTotal sums price x quantity over lines.
func LinesTotal(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
