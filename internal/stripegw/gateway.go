// Package stripegw fronts the Stripe SDK with a narrow interface so the
// payment engine and webhook dispatcher can be exercised against fakes.
package stripegw

import "context"

// FailureCategory classifies a failed provider call. Callers log the
// category and treat the call as "no transaction produced"; raw provider
// errors are never shown to end users.
type FailureCategory string

const (
	FailureCardDeclined   FailureCategory = "card_declined"
	FailureRateLimited    FailureCategory = "rate_limited"
	FailureInvalidRequest FailureCategory = "invalid_request"
	FailureAuthentication FailureCategory = "authentication"
	FailureConnection     FailureCategory = "network"
	FailureGeneric        FailureCategory = "generic"
)

type Customer struct {
	ID    string
	Email string
}

type Charge struct {
	ID       string
	Status   string
	Captured bool
}

type Plan struct {
	ID       string
	Amount   int64
	Currency string
	Interval string
}

type Subscription struct {
	ID         string
	Status     string
	CustomerID string
	PlanID     string
	Metadata   map[string]string
}

type PaymentIntent struct {
	ID           string
	Amount       int64
	Currency     string
	Status       string
	ReceiptEmail string
	Metadata     map[string]string
}

// CheckoutSession is the slice of a checkout.session webhook object the
// dispatcher needs. A completed session carries a PaymentIntent or a
// Subscription; the payment intent takes precedence if both appear.
type CheckoutSession struct {
	ID             string            `json:"id"`
	PaymentIntent  string            `json:"payment_intent"`
	Subscription   string            `json:"subscription"`
	CustomerEmail  string            `json:"customer_email"`
	AmountTotal    int64             `json:"amount_total"`
	Currency       string            `json:"currency"`
	Metadata       map[string]string `json:"metadata"`
	CustomerDetail struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
}

// Email returns the best available customer email on the session.
func (cs CheckoutSession) Email() string {
	if cs.CustomerEmail != "" {
		return cs.CustomerEmail
	}
	return cs.CustomerDetail.Email
}

type ShippingDetails struct {
	Name       string
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type ChargeParams struct {
	Amount      int64
	Currency    string
	CustomerID  string
	Source      string
	Description string
	Metadata    map[string]string
	Shipping    *ShippingDetails
}

type PlanParams struct {
	ID              string
	Amount          int64
	Currency        string
	Interval        string
	IntervalCount   int64
	TrialPeriodDays int64
	ProductName     string
}

type SubscriptionParams struct {
	CustomerID string
	PlanID     string
	Source     string
	Metadata   map[string]string
}

// Gateway is the provider capability the core depends on: create charge,
// retrieve plan, create subscription and friends. The production
// implementation is Client; tests substitute a recording fake.
type Gateway interface {
	CreateCharge(ctx context.Context, p ChargeParams) (*Charge, error)
	CreateCustomer(ctx context.Context, email, token string) (*Customer, error)
	RetrieveCustomer(ctx context.Context, id string) (*Customer, error)
	AttachSource(ctx context.Context, customerID, token string) error
	RetrievePlan(ctx context.Context, id string) (*Plan, error)
	CreatePlan(ctx context.Context, p PlanParams) (*Plan, error)
	CreateSubscription(ctx context.Context, p SubscriptionParams) (*Subscription, error)
	CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) error
	PaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	Subscription(ctx context.Context, id string) (*Subscription, error)
}
