package transport

import "github.com/Skotchmaster/canteen/internal/models"

// DishView adds the derived active flag to a dish.
type DishView struct {
	models.Dish
	IsActive bool `json:"isActive"`
}

type CreateDishRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Price       int    `json:"price" validate:"gt=0,lte=100000"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"required,oneof=soups mains sides salads bakery drinks"`
	Image       string `json:"image" validate:"max=500"`
	IsNew       bool   `json:"isNew"`
}

type PatchDishRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Price       *int    `json:"price" validate:"omitempty,gt=0,lte=100000"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,oneof=soups mains sides salads bakery drinks"`
	Image       *string `json:"image" validate:"omitempty,max=500"`
	IsNew       *bool   `json:"isNew"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type MeResponse struct {
	User *models.User `json:"user"`
}

type AddToCartRequest struct {
	DishID int `json:"dishId" validate:"gt=0"`
}

// UpdateQuantityRequest sets the line quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=99"`
}

type CartView struct {
	Items []models.CartLine `json:"items"`
	Total int               `json:"total"`
	Count int               `json:"count"`
}

type CartCountResponse struct {
	Count int `json:"count"`
}

type CheckoutRequest struct {
	PickupTime string `json:"pickupTime" validate:"required,hhmm"`
	Comment    string `json:"comment" validate:"max=500"`
}

type CheckoutResponse struct {
	Order      OrderView `json:"order"`
	PaymentURL string    `json:"paymentUrl,omitempty"`
}

// OrderView is an order with its caption and the moves the admin board offers.
type OrderView struct {
	models.Order
	StatusLabel string               `json:"statusLabel"`
	Actions     []models.OrderStatus `json:"actions"`
}

type UpdateStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending preparing ready completed cancelled"`
	EstimatedTime *string `json:"estimatedTime" validate:"omitempty,hhmm"`
}

type FeedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ConfirmationResponse struct {
	ConfirmationID string `json:"confirmationId"`
	ExpiresIn      int    `json:"expiresInSeconds"`
}

type PendingResponse struct {
	Pending int `json:"pending"`
}

type ResolveRequest struct {
	Approve bool `json:"approve"`
}

type ResolveResponse struct {
	Approved bool `json:"approved"`
}

func NewOrderView(o models.Order) OrderView {
	return OrderView{Order: o, StatusLabel: o.Status.Label(), Actions: o.Status.Actions()}
}

func NewOrderViews(orders []models.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderView(o))
	}
	return out
}

func NewDishViews(dishes []models.Dish, active bool) []DishView {
	out := make([]DishView, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, DishView{Dish: d, IsActive: active})
	}
	return out
}
