package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/stripe-payments/internal/domain/form"
	"github.com/example/stripe-payments/internal/infrastructure/store"
)

// MockCustomerStore is an in-memory CustomerStore.
type MockCustomerStore struct {
	mu      sync.Mutex
	nextID  int64
	records []store.CustomerRecord

	SaveCalls []store.CustomerRecord
	FindErr   error
	SaveErr   error
}

func NewMockCustomerStore() *MockCustomerStore {
	return &MockCustomerStore{}
}

func (m *MockCustomerStore) Seed(rec store.CustomerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
}

func (m *MockCustomerStore) Find(ctx context.Context, email string, testMode bool) (*store.CustomerRecord, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.Email == email && rec.TestMode == testMode {
			cp := rec
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockCustomerStore) Save(ctx context.Context, rec *store.CustomerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, *rec)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now()
	m.records = append(m.records, *rec)
	return nil
}

// MockFormStore is an in-memory FormStore.
type MockFormStore struct {
	mu    sync.Mutex
	forms map[int64]*form.PaymentForm

	UpdateCalls []*form.PaymentForm
	FindErr     error
	UpdateErr   error
}

func NewMockFormStore() *MockFormStore {
	return &MockFormStore{forms: make(map[int64]*form.PaymentForm)}
}

func (m *MockFormStore) Seed(f *form.PaymentForm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.forms[f.ID] = &cp
}

func (m *MockFormStore) Get(id int64) (*form.PaymentForm, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	if !ok {
		return nil, false
	}
	cp := *f
	return &cp, true
}

func (m *MockFormStore) FindByID(ctx context.Context, id int64) (*form.PaymentForm, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	f, ok := m.Get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return f, nil
}

func (m *MockFormStore) Update(ctx context.Context, f *form.PaymentForm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, f)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.forms[f.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *f
	m.forms[f.ID] = &cp
	return nil
}

// AppendedMessage records one MessageStore.Append call.
type AppendedMessage struct {
	OrderID int64
	Kind    string
	Details json.RawMessage
}

// MockMessageStore records the audit trail in memory.
type MockMessageStore struct {
	mu       sync.Mutex
	Appended []AppendedMessage

	AppendErr error
}

func NewMockMessageStore() *MockMessageStore {
	return &MockMessageStore{}
}

func (m *MockMessageStore) Append(ctx context.Context, orderID int64, kind string, details json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, AppendedMessage{OrderID: orderID, Kind: kind, Details: details})
	return nil
}

func (m *MockMessageStore) ListByOrder(ctx context.Context, orderID int64) ([]store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Message
	for _, a := range m.Appended {
		if a.OrderID == orderID {
			out = append(out, store.Message{OrderID: a.OrderID, Kind: a.Kind, Details: a.Details})
		}
	}
	return out, nil
}
