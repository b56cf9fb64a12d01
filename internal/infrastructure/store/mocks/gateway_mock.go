package mocks

import (
	"context"
	"sync"

	"github.com/example/stripe-payments/internal/stripegw"
)

// MockGateway is a recording fake for the Stripe gateway. Return values and
// errors are injectable per call; every call is recorded.
type MockGateway struct {
	mu sync.Mutex

	ChargeCalls       []stripegw.ChargeParams
	CustomerCalls     []string // emails passed to CreateCustomer
	RetrieveCalls     []string // ids passed to RetrieveCustomer
	AttachCalls       []string // customer ids passed to AttachSource
	PlanRetrieveCalls []string
	PlanCreateCalls   []stripegw.PlanParams
	SubscribeCalls    []stripegw.SubscriptionParams
	InvoiceItemCalls  []InvoiceItemCall
	IntentCalls       []string
	SubLookupCalls    []string

	ChargeResult   *stripegw.Charge
	ChargeErr      error
	CustomerResult *stripegw.Customer
	CustomerErr    error
	RetrieveResult *stripegw.Customer
	RetrieveErr    error
	AttachErr      error
	PlanResult     *stripegw.Plan
	PlanErr        error
	SubResult      *stripegw.Subscription
	SubErr         error
	InvoiceItemErr error
	IntentResult   *stripegw.PaymentIntent
	IntentErr      error
	SubLookup      *stripegw.Subscription
	SubLookupErr   error
}

type InvoiceItemCall struct {
	CustomerID  string
	Amount      int64
	Currency    string
	Description string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateCharge(ctx context.Context, p stripegw.ChargeParams) (*stripegw.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChargeCalls = append(m.ChargeCalls, p)
	if m.ChargeErr != nil {
		return nil, m.ChargeErr
	}
	if m.ChargeResult != nil {
		return m.ChargeResult, nil
	}
	return &stripegw.Charge{ID: "ch_mock", Status: "succeeded"}, nil
}

func (m *MockGateway) CreateCustomer(ctx context.Context, email, token string) (*stripegw.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CustomerCalls = append(m.CustomerCalls, email)
	if m.CustomerErr != nil {
		return nil, m.CustomerErr
	}
	if m.CustomerResult != nil {
		return m.CustomerResult, nil
	}
	return &stripegw.Customer{ID: "cus_mock", Email: email}, nil
}

func (m *MockGateway) RetrieveCustomer(ctx context.Context, id string) (*stripegw.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieveCalls = append(m.RetrieveCalls, id)
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}
	if m.RetrieveResult != nil {
		return m.RetrieveResult, nil
	}
	return &stripegw.Customer{ID: id}, nil
}

func (m *MockGateway) AttachSource(ctx context.Context, customerID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttachCalls = append(m.AttachCalls, customerID)
	return m.AttachErr
}

func (m *MockGateway) RetrievePlan(ctx context.Context, id string) (*stripegw.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlanRetrieveCalls = append(m.PlanRetrieveCalls, id)
	if m.PlanErr != nil {
		return nil, m.PlanErr
	}
	if m.PlanResult != nil {
		return m.PlanResult, nil
	}
	return &stripegw.Plan{ID: id}, nil
}

func (m *MockGateway) CreatePlan(ctx context.Context, p stripegw.PlanParams) (*stripegw.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlanCreateCalls = append(m.PlanCreateCalls, p)
	if m.PlanErr != nil {
		return nil, m.PlanErr
	}
	return &stripegw.Plan{ID: p.ID, Amount: p.Amount, Currency: p.Currency, Interval: p.Interval}, nil
}

func (m *MockGateway) CreateSubscription(ctx context.Context, p stripegw.SubscriptionParams) (*stripegw.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubscribeCalls = append(m.SubscribeCalls, p)
	if m.SubErr != nil {
		return nil, m.SubErr
	}
	if m.SubResult != nil {
		return m.SubResult, nil
	}
	return &stripegw.Subscription{ID: "sub_mock", Status: "active", CustomerID: p.CustomerID, PlanID: p.PlanID}, nil
}

func (m *MockGateway) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, currency, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvoiceItemCalls = append(m.InvoiceItemCalls, InvoiceItemCall{
		CustomerID:  customerID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	})
	return m.InvoiceItemErr
}

func (m *MockGateway) PaymentIntent(ctx context.Context, id string) (*stripegw.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntentCalls = append(m.IntentCalls, id)
	if m.IntentErr != nil {
		return nil, m.IntentErr
	}
	if m.IntentResult != nil {
		return m.IntentResult, nil
	}
	return nil, nil
}

func (m *MockGateway) Subscription(ctx context.Context, id string) (*stripegw.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubLookupCalls = append(m.SubLookupCalls, id)
	if m.SubLookupErr != nil {
		return nil, m.SubLookupErr
	}
	if m.SubLookup != nil {
		return m.SubLookup, nil
	}
	return nil, nil
}
