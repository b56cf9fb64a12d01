package form

// SubscriptionType selects how a form that has subscriptions enabled picks
// the plan for a new subscriber.
type SubscriptionType int

const (
	SingleSubscriptionPlan SubscriptionType = iota
	MultipleSubscriptionPlans
)

// Plan is one row of a multi-plan form configuration.
type Plan struct {
	PlanID   string `json:"plan_id"`
	SetupFee int64  `json:"setup_fee"`
}

// PaymentForm is the configuration behind an embedded payment button. Orders
// reference the form that produced them; subscription branching and stock
// accounting are driven from here.
type PaymentForm struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`

	EnableSubscriptions bool             `json:"enable_subscriptions"`
	SubscriptionType    SubscriptionType `json:"subscription_type"`

	SinglePlanID        string `json:"single_plan_id,omitempty"`
	SinglePlanSetupFee  int64  `json:"single_plan_setup_fee,omitempty"`
	SinglePlanTrialDays int64  `json:"single_plan_trial_days,omitempty"`

	EnableCustomPlanAmount bool   `json:"enable_custom_plan_amount"`
	CustomPlanFrequency    string `json:"custom_plan_frequency,omitempty"`
	CustomPlanInterval     int64  `json:"custom_plan_interval,omitempty"`

	// RecurringPaymentType is the billing interval used when a one-time form
	// is submitted with the recurring toggle on.
	RecurringPaymentType string `json:"recurring_payment_type,omitempty"`

	Plans []Plan `json:"plans,omitempty"`

	HasUnlimitedStock bool `json:"has_unlimited_stock"`
	Quantity          int  `json:"quantity"`
}

// HasPlan reports whether planID is one of the form's configured plans.
func (f *PaymentForm) HasPlan(planID string) bool {
	for _, p := range f.Plans {
		if p.PlanID == planID {
			return true
		}
	}
	return false
}

// SetupFeeForPlan returns the one-time setup fee configured for planID, or 0.
func (f *PaymentForm) SetupFeeForPlan(planID string) int64 {
	for _, p := range f.Plans {
		if p.PlanID == planID {
			return p.SetupFee
		}
	}
	return 0
}
