package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/stripe-payments/internal/domain/form"
)

// PostgresFormStore persists payment form configuration, including the
// remaining stock the engine decrements after a successful transaction.
type PostgresFormStore struct {
	db *sql.DB
}

func NewPostgresFormStore(db *sql.DB) *PostgresFormStore {
	return &PostgresFormStore{db: db}
}

func (s *PostgresFormStore) FindByID(ctx context.Context, id int64) (*form.PaymentForm, error) {
	var f form.PaymentForm
	var subscriptionType int
	var plans []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, handle, currency, amount, enable_subscriptions,
			subscription_type, single_plan_id, single_plan_setup_fee,
			single_plan_trial_days, enable_custom_plan_amount,
			custom_plan_frequency, custom_plan_interval,
			recurring_payment_type, plans, has_unlimited_stock, quantity
		 FROM payment_forms WHERE id = $1`,
		id,
	).Scan(
		&f.ID, &f.Name, &f.Handle, &f.Currency, &f.Amount,
		&f.EnableSubscriptions, &subscriptionType, &f.SinglePlanID,
		&f.SinglePlanSetupFee, &f.SinglePlanTrialDays,
		&f.EnableCustomPlanAmount, &f.CustomPlanFrequency,
		&f.CustomPlanInterval, &f.RecurringPaymentType, &plans,
		&f.HasUnlimitedStock, &f.Quantity,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.SubscriptionType = form.SubscriptionType(subscriptionType)
	if err := json.Unmarshal(plans, &f.Plans); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresFormStore) Update(ctx context.Context, f *form.PaymentForm) error {
	plans, err := json.Marshal(f.Plans)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_forms SET name = $1, currency = $2, amount = $3,
			enable_subscriptions = $4, subscription_type = $5,
			single_plan_id = $6, single_plan_setup_fee = $7,
			single_plan_trial_days = $8, enable_custom_plan_amount = $9,
			custom_plan_frequency = $10, custom_plan_interval = $11,
			recurring_payment_type = $12, plans = $13,
			has_unlimited_stock = $14, quantity = $15
		 WHERE id = $16`,
		f.Name, f.Currency, f.Amount,
		f.EnableSubscriptions, int(f.SubscriptionType),
		f.SinglePlanID, f.SinglePlanSetupFee,
		f.SinglePlanTrialDays, f.EnableCustomPlanAmount,
		f.CustomPlanFrequency, f.CustomPlanInterval,
		f.RecurringPaymentType, plans,
		f.HasUnlimitedStock, f.Quantity,
		f.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
