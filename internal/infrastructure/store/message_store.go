package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PostgresMessageStore is the append-only audit trail. An entry is written
// for every webhook event that resolves to an order, even when no order
// field changed.
type PostgresMessageStore struct {
	db *sql.DB
}

func NewPostgresMessageStore(db *sql.DB) *PostgresMessageStore {
	return &PostgresMessageStore{db: db}
}

func (s *PostgresMessageStore) Append(ctx context.Context, orderID int64, kind string, details json.RawMessage) error {
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_messages (id, order_id, kind, details, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), orderID, kind, []byte(details), time.Now(),
	)
	return err
}

func (s *PostgresMessageStore) ListByOrder(ctx context.Context, orderID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, kind, details, created_at FROM order_messages
		 WHERE order_id = $1 ORDER BY created_at ASC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var details []byte
		if err := rows.Scan(&m.ID, &m.OrderID, &m.Kind, &details, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Details = json.RawMessage(details)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
