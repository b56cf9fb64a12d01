package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/stripe-payments/internal/domain/form"
	"github.com/example/stripe-payments/internal/domain/order"
)

// ErrNotFound is returned by every lookup that resolves nothing. Callers in
// the webhook path treat it as "no matching order, no-op", never as a fault.
var ErrNotFound = errors.New("not found")

// OrderStore is the persistence contract the reconciliation core depends on.
type OrderStore interface {
	FindByTransactionID(ctx context.Context, stripeID string) (*order.Order, error)
	FindByNumber(ctx context.Context, number string) (*order.Order, error)
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	Create(ctx context.Context, o *order.Order) error
	Update(ctx context.Context, o *order.Order) error
	List(ctx context.Context) ([]*order.Order, error)
	ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}

// CustomerRecord caches the provider customer id for an email. The soft
// uniqueness key is (email, test_mode).
type CustomerRecord struct {
	ID        int64
	Email     string
	StripeID  string
	TestMode  bool
	CreatedAt time.Time
}

type CustomerStore interface {
	Find(ctx context.Context, email string, testMode bool) (*CustomerRecord, error)
	Save(ctx context.Context, rec *CustomerRecord) error
}

type FormStore interface {
	FindByID(ctx context.Context, id int64) (*form.PaymentForm, error)
	Update(ctx context.Context, f *form.PaymentForm) error
}

// Message is one entry of the append-only audit trail attached to an order.
type Message struct {
	ID        string
	OrderID   int64
	Kind      string
	Details   json.RawMessage
	CreatedAt time.Time
}

type MessageStore interface {
	Append(ctx context.Context, orderID int64, kind string, details json.RawMessage) error
	ListByOrder(ctx context.Context, orderID int64) ([]Message, error)
}
