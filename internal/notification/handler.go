package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/stripe-payments/internal/domain/order"
)

// EmailSender is the slice of the email service the notifier needs.
type EmailSender interface {
	SendReceipt(to string, o *order.Order) error
	SendAdminAlert(o *order.Order) error
}

// Handler consumes re-broadcast payment events from Kafka and sends the
// notification emails. It runs in the notifier binary, off the webhook
// request path.
type Handler struct {
	email           EmailSender
	customerEnabled bool
	adminEnabled    bool
}

func NewHandler(email EmailSender, customerEnabled, adminEnabled bool) *Handler {
	return &Handler{
		email:           email,
		customerEnabled: customerEnabled,
		adminEnabled:    adminEnabled,
	}
}

// HandleEvent processes one Kafka message.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch ev.Type {
	case EventOrderCompleted, EventOrderCaptured:
		return h.handleCompleted(ev)
	}
	return nil
}

func (h *Handler) handleCompleted(ev Event) error {
	if ev.Order == nil {
		log.Printf("[Notifier] %s event %s carries no order, skipping", ev.Type, ev.ID)
		return nil
	}
	o := ev.Order
	log.Printf("[Notifier] Processing %s for order %s", ev.Type, o.Number)

	if h.customerEnabled && o.Email != "" {
		if err := h.email.SendReceipt(o.Email, o); err != nil {
			log.Printf("[Notifier] Failed to send receipt to %s: %v", o.Email, err)
			return err
		}
		log.Printf("[Notifier] Receipt sent to %s for order %s", o.Email, o.Number)
	}

	if h.adminEnabled {
		if err := h.email.SendAdminAlert(o); err != nil {
			log.Printf("[Notifier] Failed to send admin alert for order %s: %v", o.Number, err)
			return err
		}
		log.Printf("[Notifier] Admin alert sent for order %s", o.Number)
	}

	return nil
}
