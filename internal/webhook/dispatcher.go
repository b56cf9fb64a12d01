package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/stripe-payments/internal/domain/order"
	"github.com/example/stripe-payments/internal/infrastructure/store"
	"github.com/example/stripe-payments/internal/notification"
	"github.com/example/stripe-payments/internal/payment"
	"github.com/example/stripe-payments/internal/stripegw"
)

// PaymentService is the slice of the payment engine the dispatcher drives.
type PaymentService interface {
	ChargeSource(ctx context.Context, o *order.Order, sourceID, sourceType string) error
	CompleteCheckout(ctx context.Context, cs stripegw.CheckoutSession) (*order.Order, error)
}

// DispatchResult reports what a delivery did. Handled is false for event
// types the dispatcher has no rule for; the order is nil when no order
// matched the event's transaction id.
type DispatchResult struct {
	Order   *order.Order
	Handled bool
}

// Dispatcher routes authentic webhook events to the reconciliation rule for
// their type. Every rule is idempotent: replaying a delivery never repeats a
// side effect, it only appends another audit entry.
type Dispatcher struct {
	orders   store.OrderStore
	messages store.MessageStore
	payments PaymentService
	hub      *notification.Hub
}

func NewDispatcher(orders store.OrderStore, messages store.MessageStore, payments PaymentService, hub *notification.Hub) *Dispatcher {
	return &Dispatcher{
		orders:   orders,
		messages: messages,
		payments: payments,
		hub:      hub,
	}
}

// Dispatch applies the rule for ev's type and returns what happened.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (DispatchResult, error) {
	res, err := d.apply(ctx, ev)
	if err != nil {
		return res, err
	}

	d.hub.Publish(ctx, notification.NewEvent(notification.EventWebhookReceived, res.Order, ev.Raw))
	return res, nil
}

func (d *Dispatcher) apply(ctx context.Context, ev *Event) (DispatchResult, error) {
	switch ev.Type {
	case "source.chargeable":
		return d.sourceChargeable(ctx, ev)
	case "source.failed", "source.canceled":
		return d.sourceDead(ctx, ev)
	case "charge.pending", "charge.failed":
		return d.chargeNoted(ctx, ev)
	case "charge.succeeded":
		return d.chargeSucceeded(ctx, ev)
	case "charge.captured":
		return d.chargeCaptured(ctx, ev)
	case "checkout.session.completed":
		return d.checkoutCompleted(ctx, ev)
	}
	log.Printf("[Webhook] No rule for event type %s, ignoring", ev.Type)
	return DispatchResult{}, nil
}

// sourceChargeable charges an asynchronous source that became ready. The
// order was bound to the source id at submission time; charging re-binds it
// to the resulting charge id.
func (d *Dispatcher) sourceChargeable(ctx context.Context, ev *Event) (DispatchResult, error) {
	src, err := ev.source()
	if err != nil {
		return DispatchResult{}, err
	}

	o, err := d.findOrder(ctx, src.ID)
	if err != nil {
		return DispatchResult{}, err
	}
	if o == nil {
		log.Printf("[Webhook] %s: no order for source %s", ev.Type, src.ID)
		return DispatchResult{Handled: true}, nil
	}

	if err := d.payments.ChargeSource(ctx, o, src.ID, src.Type); err != nil {
		d.audit(ctx, o.ID, ev)
		if errors.Is(err, payment.ErrPaymentFailed) {
			// The provider rejected this source; a redelivery of the same
			// event cannot succeed either. Acknowledge and move on.
			log.Printf("[Webhook] Source %s could not be charged for order %s", src.ID, o.Number)
			return DispatchResult{Order: o, Handled: true}, nil
		}
		return DispatchResult{Order: o, Handled: true}, err
	}
	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

// sourceDead records that a source failed or was canceled. The order keeps
// waiting; Stripe may still deliver a retry with a fresh source.
func (d *Dispatcher) sourceDead(ctx context.Context, ev *Event) (DispatchResult, error) {
	src, err := ev.source()
	if err != nil {
		return DispatchResult{}, err
	}

	o, err := d.findOrder(ctx, src.ID)
	if err != nil {
		return DispatchResult{}, err
	}
	if o == nil {
		return DispatchResult{Handled: true}, nil
	}

	log.Printf("[Webhook] %s for order %s", ev.Type, o.Number)
	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

// chargeNoted records informational charge events without changing state.
func (d *Dispatcher) chargeNoted(ctx context.Context, ev *Event) (DispatchResult, error) {
	o, err := d.findOrder(ctx, ev.ObjectID())
	if err != nil {
		return DispatchResult{}, err
	}
	if o == nil {
		return DispatchResult{Handled: true}, nil
	}

	log.Printf("[Webhook] %s for order %s", ev.Type, o.Number)
	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

func (d *Dispatcher) chargeSucceeded(ctx context.Context, ev *Event) (DispatchResult, error) {
	o, err := d.findOrder(ctx, ev.ObjectID())
	if err != nil {
		return DispatchResult{}, err
	}
	if o == nil {
		return DispatchResult{Handled: true}, nil
	}

	if o.MarkCompleted() {
		if err := d.orders.Update(ctx, o); err != nil {
			return DispatchResult{Order: o, Handled: true}, fmt.Errorf("complete order %s: %w", o.Number, err)
		}
		log.Printf("[Webhook] Order %s completed by %s", o.Number, ev.Type)
		d.hub.Publish(ctx, notification.NewEvent(notification.EventOrderCompleted, o, ev.Raw))
	} else {
		log.Printf("[Webhook] Order %s already completed, %s is a no-op", o.Number, ev.Type)
	}

	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

// chargeCaptured completes an order whose charge was authorized earlier and
// captured now. The order is resolved by the charge object's own id, not the
// envelope id, since capture events reference the original charge.
func (d *Dispatcher) chargeCaptured(ctx context.Context, ev *Event) (DispatchResult, error) {
	ch, err := ev.charge()
	if err != nil {
		return DispatchResult{}, err
	}
	if !ch.Captured {
		log.Printf("[Webhook] charge.captured for %s without captured flag, ignoring", ch.ID)
		return DispatchResult{Handled: true}, nil
	}

	o, err := d.findOrder(ctx, ch.ID)
	if err != nil {
		return DispatchResult{}, err
	}
	if o == nil {
		return DispatchResult{Handled: true}, nil
	}

	if o.MarkCompleted() {
		if err := d.orders.Update(ctx, o); err != nil {
			return DispatchResult{Order: o, Handled: true}, fmt.Errorf("complete order %s: %w", o.Number, err)
		}
		log.Printf("[Webhook] Order %s completed by capture of %s", o.Number, ch.ID)
		d.hub.Publish(ctx, notification.NewEvent(notification.EventOrderCaptured, o, ev.Raw))
	}

	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

func (d *Dispatcher) checkoutCompleted(ctx context.Context, ev *Event) (DispatchResult, error) {
	cs, err := ev.checkoutSession()
	if err != nil {
		return DispatchResult{}, err
	}

	o, err := d.payments.CompleteCheckout(ctx, cs)
	if err != nil {
		if errors.Is(err, payment.ErrSessionUnusable) {
			// A session without a transaction stays unusable on every
			// redelivery; failing the request would only make Stripe retry.
			log.Printf("[Webhook] %v, no order derived", err)
			return DispatchResult{Handled: true}, nil
		}
		return DispatchResult{}, err
	}
	if o == nil {
		return DispatchResult{Handled: true}, nil
	}

	d.audit(ctx, o.ID, ev)
	return DispatchResult{Order: o, Handled: true}, nil
}

// findOrder resolves an order by transaction id. A miss is a normal no-op,
// not a fault; Stripe delivers events for objects this system never created.
func (d *Dispatcher) findOrder(ctx context.Context, stripeID string) (*order.Order, error) {
	if stripeID == "" {
		return nil, nil
	}
	o, err := d.orders.FindByTransactionID(ctx, stripeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order for %s: %w", stripeID, err)
	}
	return o, nil
}

// audit appends the delivery to the order's trail. Every delivery that
// resolved an order gets an entry, including idempotent replays.
func (d *Dispatcher) audit(ctx context.Context, orderID int64, ev *Event) {
	if err := d.messages.Append(ctx, orderID, ev.Type, ev.Raw); err != nil {
		log.Printf("[Webhook] Failed to append audit entry for order %d: %v", orderID, err)
	}
}
