package mocks

import (
	"context"
	"sync"

	"github.com/example/stripe-payments/internal/domain/order"
	"github.com/example/stripe-payments/internal/infrastructure/store"
)

// MockOrderStore is an in-memory OrderStore for testing. It records lookup
// and mutation calls so tests can assert, for example, that no lookup
// happened before signature verification.
type MockOrderStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]*order.Order

	FindByTransactionIDCalls int
	FindByNumberCalls        int
	CreateCalls              []*order.Order
	UpdateCalls              []*order.Order

	FindErr   error
	CreateErr error
	UpdateErr error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[int64]*order.Order)}
}

// Seed inserts an order without recording a Create call.
func (m *MockOrderStore) Seed(o *order.Order) *order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		m.nextID++
		o.ID = m.nextID
	} else if o.ID > m.nextID {
		m.nextID = o.ID
	}
	cp := *o
	m.orders[o.ID] = &cp
	return o
}

// Get returns the stored copy of an order by id.
func (m *MockOrderStore) Get(id int64) (*order.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, false
	}
	cp := *o
	return &cp, true
}

func (m *MockOrderStore) FindByTransactionID(ctx context.Context, stripeID string) (*order.Order, error) {
	m.mu.Lock()
	m.FindByTransactionIDCalls++
	m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if stripeID == "" {
		return nil, store.ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.StripeTransactionID == stripeID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockOrderStore) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	m.mu.Lock()
	m.FindByNumberCalls++
	m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockOrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	o, ok := m.Get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return o, nil
}

func (m *MockOrderStore) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, o)
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := o.Validate(); err != nil {
		return err
	}
	m.nextID++
	o.ID = m.nextID
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) Update(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, o)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) List(ctx context.Context) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, o := range m.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockOrderStore) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, o := range m.orders {
		if o.StatusID == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}
