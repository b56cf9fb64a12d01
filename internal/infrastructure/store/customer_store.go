package store

import (
	"context"
	"database/sql"
	"time"
)

// PostgresCustomerStore caches provider customer ids per (email, test_mode).
//
// There is no uniqueness constraint: two concurrent first payments for the
// same email can both miss the cache and create separate provider customers.
// That costs a duplicate customer on the provider side, not order
// correctness, and a local constraint would not undo the provider-side
// duplicate anyway.
type PostgresCustomerStore struct {
	db *sql.DB
}

func NewPostgresCustomerStore(db *sql.DB) *PostgresCustomerStore {
	return &PostgresCustomerStore{db: db}
}

func (s *PostgresCustomerStore) Find(ctx context.Context, email string, testMode bool) (*CustomerRecord, error) {
	var rec CustomerRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, stripe_id, test_mode, created_at FROM customers
		 WHERE email = $1 AND test_mode = $2
		 ORDER BY created_at ASC LIMIT 1`,
		email, testMode,
	).Scan(&rec.ID, &rec.Email, &rec.StripeID, &rec.TestMode, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresCustomerStore) Save(ctx context.Context, rec *CustomerRecord) error {
	rec.CreatedAt = time.Now()
	return s.db.QueryRowContext(ctx,
		`INSERT INTO customers (email, stripe_id, test_mode, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		rec.Email, rec.StripeID, rec.TestMode, rec.CreatedAt,
	).Scan(&rec.ID)
}
