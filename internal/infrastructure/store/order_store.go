package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/example/stripe-payments/internal/domain/order"
)

// PostgresOrderStore persists orders in PostgreSQL.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const orderColumns = `id, number, form_id, test_mode, payment_type,
	stripe_transaction_id, currency, total_price, shipping, tax, discount,
	quantity, status_id, is_completed, refunded, date_refunded,
	is_subscription, subscription_status, email, first_name, last_name,
	address, variants, message, date_ordered, date_created, date_updated`

func (s *PostgresOrderStore) FindByTransactionID(ctx context.Context, stripeID string) (*order.Order, error) {
	if stripeID == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE stripe_transaction_id = $1`,
		stripeID,
	)
	return scanOrder(row)
}

func (s *PostgresOrderStore) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number = $1`,
		number,
	)
	return scanOrder(row)
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		id,
	)
	return scanOrder(row)
}

func (s *PostgresOrderStore) Create(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	now := time.Now()
	o.DateCreated = now
	o.DateUpdated = now
	if o.DateOrdered.IsZero() {
		o.DateOrdered = now
	}
	address, variants, err := encodeBlobs(o)
	if err != nil {
		return err
	}

	return s.db.QueryRowContext(ctx,
		`INSERT INTO orders (number, form_id, test_mode, payment_type,
			stripe_transaction_id, currency, total_price, shipping, tax,
			discount, quantity, status_id, is_completed, refunded,
			date_refunded, is_subscription, subscription_status, email,
			first_name, last_name, address, variants, message, date_ordered,
			date_created, date_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		 RETURNING id`,
		o.Number, o.FormID, o.TestMode, o.PaymentType,
		o.StripeTransactionID, o.Currency, o.TotalPrice, o.Shipping, o.Tax,
		o.Discount, o.Quantity, int(o.StatusID), o.IsCompleted, o.Refunded,
		o.DateRefunded, o.IsSubscription, o.SubscriptionStatus, o.Email,
		o.FirstName, o.LastName, address, variants, o.Message, o.DateOrdered,
		o.DateCreated, o.DateUpdated,
	).Scan(&o.ID)
}

func (s *PostgresOrderStore) Update(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.DateUpdated = time.Now()
	address, variants, err := encodeBlobs(o)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_type = $1, stripe_transaction_id = $2,
			total_price = $3, shipping = $4, tax = $5, discount = $6,
			quantity = $7, status_id = $8, is_completed = $9, refunded = $10,
			date_refunded = $11, is_subscription = $12,
			subscription_status = $13, address = $14, variants = $15,
			message = $16, date_updated = $17
		 WHERE id = $18`,
		o.PaymentType, o.StripeTransactionID,
		o.TotalPrice, o.Shipping, o.Tax, o.Discount,
		o.Quantity, int(o.StatusID), o.IsCompleted, o.Refunded,
		o.DateRefunded, o.IsSubscription,
		o.SubscriptionStatus, address, variants,
		o.Message, o.DateUpdated,
		o.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresOrderStore) List(ctx context.Context) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY date_created DESC`)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func (s *PostgresOrderStore) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status_id = $1
		 ORDER BY date_created DESC`,
		int(status),
	)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func encodeBlobs(o *order.Order) ([]byte, []byte, error) {
	address, err := json.Marshal(o.Address)
	if err != nil {
		return nil, nil, err
	}
	variants := o.Variants
	if variants == nil {
		variants = map[string]string{}
	}
	blob, err := json.Marshal(variants)
	if err != nil {
		return nil, nil, err
	}
	return address, blob, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var statusID int
	var address, variants []byte
	err := row.Scan(
		&o.ID, &o.Number, &o.FormID, &o.TestMode, &o.PaymentType,
		&o.StripeTransactionID, &o.Currency, &o.TotalPrice, &o.Shipping,
		&o.Tax, &o.Discount, &o.Quantity, &statusID, &o.IsCompleted,
		&o.Refunded, &o.DateRefunded, &o.IsSubscription,
		&o.SubscriptionStatus, &o.Email, &o.FirstName, &o.LastName,
		&address, &variants, &o.Message, &o.DateOrdered, &o.DateCreated,
		&o.DateUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.StatusID = order.Status(statusID)
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variants, &o.Variants); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]*order.Order, error) {
	defer rows.Close()
	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
