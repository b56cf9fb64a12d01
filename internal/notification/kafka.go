package notification

import (
	"context"
)

// EventPublisher is implemented by the Kafka producer.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}

// KafkaObserver re-broadcasts every notification event to the payment-events
// topic. Keyed by order number when an order is attached so all events for
// one order land in the same partition.
func KafkaObserver(p EventPublisher) Observer {
	return func(ctx context.Context, ev Event) error {
		key := ev.ID
		if ev.Order != nil {
			key = ev.Order.Number
		}
		return p.Publish(ctx, key, string(ev.Type), ev)
	}
}
