package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCartUpdated        EventType = "cartUpdated"
	EventContentInvalidated EventType = "content.invalidated"
	EventOrderPlaced        EventType = "order.placed"
)

// Event represents a notification emitted by the gateway clients.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	VisitorID string    `json:"visitor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, visitorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		VisitorID: visitorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CartUpdatedPayload carries the cart totals after a mutation.
type CartUpdatedPayload struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ContentInvalidatedPayload names the cache entry that was cleared.
type ContentInvalidatedPayload struct {
	Resource string `json:"resource"`
	Reason   string `json:"reason"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID     int64           `json:"order_id"`
	TableNumber string          `json:"table_number"`
	ItemCount   int             `json:"item_count"`
	Total       decimal.Decimal `json:"total"`
}
