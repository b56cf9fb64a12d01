package stripegw

import (
	"context"
	"errors"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Client implements Gateway on top of the official Stripe SDK.
type Client struct {
	api *client.API
}

// NewClient builds a Gateway bound to the given secret API key. The key is
// environment-specific (test or live) and selected by the caller.
func NewClient(apiKey string) *Client {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Client{api: api}
}

func (c *Client) CreateCharge(ctx context.Context, p ChargeParams) (*Charge, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
	}
	params.Context = ctx
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	if p.Description != "" {
		params.Description = stripe.String(p.Description)
	}
	if p.Source != "" {
		if err := params.SetSource(p.Source); err != nil {
			return nil, err
		}
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.Shipping != nil {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name: stripe.String(p.Shipping.Name),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(p.Shipping.Line1),
				City:       stripe.String(p.Shipping.City),
				State:      stripe.String(p.Shipping.State),
				PostalCode: stripe.String(p.Shipping.PostalCode),
				Country:    stripe.String(p.Shipping.Country),
			},
		}
	}

	ch, err := c.api.Charges.New(params)
	if err != nil {
		return nil, err
	}
	return &Charge{ID: ch.ID, Status: string(ch.Status), Captured: ch.Captured}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, email, token string) (*Customer, error) {
	params := customerParams(email, token)
	params.Context = ctx
	cus, err := c.api.Customers.New(params)
	if err != nil {
		return nil, err
	}
	return &Customer{ID: cus.ID, Email: cus.Email}, nil
}

func customerParams(email, token string) *stripe.CustomerParams {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	if token != "" {
		params.Source = stripe.String(token)
	}
	return params
}

func (c *Client) RetrieveCustomer(ctx context.Context, id string) (*Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cus, err := c.api.Customers.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &Customer{ID: cus.ID, Email: cus.Email}, nil
}

func (c *Client) AttachSource(ctx context.Context, customerID, token string) error {
	params := attachSourceParams(customerID, token)
	params.Context = ctx
	_, err := c.api.PaymentSources.New(params)
	return err
}

func attachSourceParams(customerID, token string) *stripe.PaymentSourceParams {
	return &stripe.PaymentSourceParams{
		Customer: stripe.String(customerID),
		Source:   &stripe.PaymentSourceSourceParams{Token: stripe.String(token)},
	}
}

func (c *Client) RetrievePlan(ctx context.Context, id string) (*Plan, error) {
	params := &stripe.PlanParams{}
	params.Context = ctx
	pl, err := c.api.Plans.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ID:       pl.ID,
		Amount:   pl.Amount,
		Currency: string(pl.Currency),
		Interval: string(pl.Interval),
	}, nil
}

func (c *Client) CreatePlan(ctx context.Context, p PlanParams) (*Plan, error) {
	params := &stripe.PlanParams{
		ID:       stripe.String(p.ID),
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		Interval: stripe.String(p.Interval),
		Product: &stripe.PlanProductParams{
			Name: stripe.String(p.ProductName),
		},
	}
	params.Context = ctx
	if p.IntervalCount > 0 {
		params.IntervalCount = stripe.Int64(p.IntervalCount)
	}
	if p.TrialPeriodDays > 0 {
		params.TrialPeriodDays = stripe.Int64(p.TrialPeriodDays)
	}
	pl, err := c.api.Plans.New(params)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ID:       pl.ID,
		Amount:   pl.Amount,
		Currency: string(pl.Currency),
		Interval: string(pl.Interval),
	}, nil
}

func (c *Client) CreateSubscription(ctx context.Context, p SubscriptionParams) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(p.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Plan: stripe.String(p.PlanID)},
		},
	}
	params.Context = ctx
	if p.Source != "" {
		params.DefaultSource = stripe.String(p.Source)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, err
	}
	return newSubscription(sub), nil
}

func (c *Client) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) error {
	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	params.Context = ctx
	_, err := c.api.InvoiceItems.New(params)
	return err
}

func (c *Client) PaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		ReceiptEmail: pi.ReceiptEmail,
		Metadata:     pi.Metadata,
	}, nil
}

func (c *Client) Subscription(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return newSubscription(sub), nil
}

func newSubscription(sub *stripe.Subscription) *Subscription {
	s := &Subscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}
	if sub.Customer != nil {
		s.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Plan != nil {
		s.PlanID = sub.Items.Data[0].Plan.ID
	}
	return s
}

// Categorize maps a provider error onto a FailureCategory. Errors that are
// not stripe.Error values are transport-level failures.
func Categorize(err error) FailureCategory {
	if err == nil {
		return ""
	}
	var sErr *stripe.Error
	if !errors.As(err, &sErr) {
		return FailureConnection
	}
	switch {
	case sErr.Type == stripe.ErrorTypeCard:
		return FailureCardDeclined
	case sErr.Code == stripe.ErrorCodeRateLimit || sErr.HTTPStatusCode == http.StatusTooManyRequests:
		return FailureRateLimited
	case sErr.HTTPStatusCode == http.StatusUnauthorized:
		return FailureAuthentication
	case sErr.Type == stripe.ErrorTypeInvalidRequest:
		return FailureInvalidRequest
	}
	return FailureGeneric
}
