package models

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"

	// StatusAll is the admin filter sentinel.
	StatusAll OrderStatus = "all"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Actions lists the statuses an order in s may move to. Nothing moves into pending.
func (s OrderStatus) Actions() []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Label is the Russian caption shown on the admin board.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPending:
		return "Ожидает"
	case StatusPreparing:
		return "Готовится"
	case StatusReady:
		return "Готов"
	case StatusCompleted:
		return "Выдан"
	case StatusCancelled:
		return "Отменён"
	}
	return string(s)
}
