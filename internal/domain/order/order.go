package order

import (
	"crypto/rand"
	"errors"
	"time"
)

// Status is the fulfillment state of an order. It is independent from
// IsCompleted, which tracks whether the payment itself went through.
type Status int

const (
	StatusNew Status = iota + 1
	StatusShipped
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusShipped:
		return "shipped"
	}
	return "unknown"
}

// Color returns the badge color used when listing orders.
func (s Status) Color() string {
	switch s {
	case StatusNew:
		return "green"
	case StatusShipped:
		return "blue"
	}
	return "grey"
}

var (
	ErrNumberRequired   = errors.New("order number is required")
	ErrEmailRequired    = errors.New("order email is required")
	ErrCurrencyRequired = errors.New("order currency is required")
	ErrInvalidQuantity  = errors.New("order quantity must be positive")
)

// Address is a snapshot of the shipping address captured at order creation.
// It is never updated afterwards.
type Address struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Order is the central entity: one payment (or subscription) made against a
// payment form. Monetary amounts are in the smallest currency unit.
type Order struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	FormID int64  `json:"form_id"`

	TestMode    bool   `json:"test_mode"`
	PaymentType string `json:"payment_type,omitempty"`

	// StripeTransactionID is the charge, subscription or payment intent id
	// this order is bound to. Set once a transaction exists, then immutable.
	StripeTransactionID string `json:"stripe_transaction_id,omitempty"`

	Currency   string `json:"currency"`
	TotalPrice int64  `json:"total_price"`
	Shipping   int64  `json:"shipping"`
	Tax        int64  `json:"tax"`
	Discount   int64  `json:"discount"`
	Quantity   int    `json:"quantity"`

	StatusID    Status `json:"status_id"`
	IsCompleted bool   `json:"is_completed"`

	Refunded     bool       `json:"refunded"`
	DateRefunded *time.Time `json:"date_refunded,omitempty"`

	// IsSubscription is set by whichever component created the transaction;
	// it is stored explicitly rather than re-derived from the id's shape.
	IsSubscription     bool   `json:"is_subscription"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`

	Email     string  `json:"email"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Address   Address `json:"address"`

	// Variants holds the form-defined key/value metadata posted with the
	// payment, persisted as an opaque JSON blob.
	Variants map[string]string `json:"variants,omitempty"`
	Message  string            `json:"message,omitempty"`

	DateOrdered time.Time `json:"date_ordered"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
}

// MarkCompleted flips the order to payment-completed. It reports whether the
// call changed anything: completion is one-way and reprocessing the same
// success event must be a no-op.
func (o *Order) MarkCompleted() bool {
	if o.IsCompleted {
		return false
	}
	o.IsCompleted = true
	return true
}

func (o *Order) Validate() error {
	if o.Number == "" {
		return ErrNumberRequired
	}
	if o.Email == "" {
		return ErrEmailRequired
	}
	if o.Currency == "" {
		return ErrCurrencyRequired
	}
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

const numberKeyspace = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewNumber generates the human-readable order reference: 12 characters from
// a cryptographically secure source.
func NewNumber() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // the platform CSPRNG is unavailable, nothing sane to do
	}
	for i, b := range buf {
		buf[i] = numberKeyspace[int(b)%len(numberKeyspace)]
	}
	return string(buf)
}
