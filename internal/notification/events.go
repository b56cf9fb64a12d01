package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/example/stripe-payments/internal/domain/order"
)

// EventType tags a notification point in the payment lifecycle.
type EventType string

const (
	// EventOrderCreated fires when the payment submission flow persisted a
	// new order.
	EventOrderCreated EventType = "order.created"
	// EventOrderCompleted fires when an order transitioned to
	// payment-completed. Receipts hang off this event.
	EventOrderCompleted EventType = "order.completed"
	// EventOrderCaptured fires on the manual-capture completion path. It is
	// deliberately separate from EventOrderCompleted so capture sends its
	// own notification exactly once.
	EventOrderCaptured EventType = "order.captured"
	// EventWebhookReceived fires for every authentic webhook delivery,
	// whether or not an order was resolved.
	EventWebhookReceived EventType = "webhook.received"
)

// Event is what observers receive and what gets re-broadcast to Kafka.
// Order is a snapshot taken at publish time, not a live reference.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	Order      *order.Order    `json:"order,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(t EventType, o *order.Order, payload json.RawMessage) Event {
	var snapshot *order.Order
	if o != nil {
		cp := *o
		snapshot = &cp
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		Order:      snapshot,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
