package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens and pings a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables this service owns if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			number VARCHAR(32) NOT NULL UNIQUE,
			form_id BIGINT NOT NULL DEFAULT 0,
			test_mode BOOLEAN NOT NULL DEFAULT FALSE,
			payment_type VARCHAR(32) NOT NULL DEFAULT '',
			stripe_transaction_id VARCHAR(191) NOT NULL DEFAULT '',
			currency VARCHAR(8) NOT NULL,
			total_price BIGINT NOT NULL DEFAULT 0,
			shipping BIGINT NOT NULL DEFAULT 0,
			tax BIGINT NOT NULL DEFAULT 0,
			discount BIGINT NOT NULL DEFAULT 0,
			quantity INT NOT NULL DEFAULT 1,
			status_id INT NOT NULL DEFAULT 1,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			refunded BOOLEAN NOT NULL DEFAULT FALSE,
			date_refunded TIMESTAMPTZ,
			is_subscription BOOLEAN NOT NULL DEFAULT FALSE,
			subscription_status VARCHAR(32) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL,
			first_name VARCHAR(255) NOT NULL DEFAULT '',
			last_name VARCHAR(255) NOT NULL DEFAULT '',
			address JSONB NOT NULL DEFAULT '{}',
			variants JSONB NOT NULL DEFAULT '{}',
			message TEXT NOT NULL DEFAULT '',
			date_ordered TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_stripe_transaction_id
			ON orders (stripe_transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_id ON orders (status_id)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			stripe_id VARCHAR(191) NOT NULL,
			test_mode BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_email_mode
			ON customers (email, test_mode)`,
		`CREATE TABLE IF NOT EXISTS payment_forms (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			handle VARCHAR(255) NOT NULL UNIQUE,
			currency VARCHAR(8) NOT NULL,
			amount BIGINT NOT NULL DEFAULT 0,
			enable_subscriptions BOOLEAN NOT NULL DEFAULT FALSE,
			subscription_type INT NOT NULL DEFAULT 0,
			single_plan_id VARCHAR(191) NOT NULL DEFAULT '',
			single_plan_setup_fee BIGINT NOT NULL DEFAULT 0,
			single_plan_trial_days BIGINT NOT NULL DEFAULT 0,
			enable_custom_plan_amount BOOLEAN NOT NULL DEFAULT FALSE,
			custom_plan_frequency VARCHAR(16) NOT NULL DEFAULT '',
			custom_plan_interval BIGINT NOT NULL DEFAULT 0,
			recurring_payment_type VARCHAR(16) NOT NULL DEFAULT '',
			plans JSONB NOT NULL DEFAULT '[]',
			has_unlimited_stock BOOLEAN NOT NULL DEFAULT TRUE,
			quantity INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS order_messages (
			id UUID PRIMARY KEY,
			order_id BIGINT NOT NULL,
			kind VARCHAR(64) NOT NULL,
			details JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_messages_order_id
			ON order_messages (order_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
