package mykafka

import "time"

const (
	EventMenuItemAdded    = "menu_item_added"
	EventMenuItemUpdated  = "menu_item_updated"
	EventMenuItemRemoved  = "menu_item_removed"
	EventMenuItemRestored = "menu_item_restored"
	EventMenuItemDeleted  = "menu_item_deleted"

	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

type Event struct {
	Type    string    `json:"type"`
	ID      int64     `json:"id"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
