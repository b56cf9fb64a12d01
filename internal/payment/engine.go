package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/stripe-payments/internal/domain/form"
	"github.com/example/stripe-payments/internal/domain/order"
	"github.com/example/stripe-payments/internal/infrastructure/store"
	"github.com/example/stripe-payments/internal/notification"
	"github.com/example/stripe-payments/internal/stripegw"
)

var (
	ErrMissingPaymentDetails = errors.New("email and token are required")
	ErrUnknownForm           = errors.New("payment form not found")
	ErrPlanRequired          = errors.New("a plan id is required for this form")
	ErrUnknownPlan           = errors.New("plan is not configured on this form")
	// ErrPaymentFailed means the provider rejected the payment. The concrete
	// provider error is logged, never surfaced to the caller.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrSessionUnusable means a completed checkout session carries neither a
	// payment intent nor a subscription. Such a session can never produce an
	// order, no matter how often the event is redelivered.
	ErrSessionUnusable = errors.New("checkout session carries no transaction")
)

// SubmitRequest is the payload of a payment form submission.
type SubmitRequest struct {
	Token            string            `json:"token"`
	FormID           int64             `json:"formId"`
	Email            string            `json:"email"`
	FirstName        string            `json:"firstName,omitempty"`
	LastName         string            `json:"lastName,omitempty"`
	Amount           int64             `json:"amount"`
	Quantity         int               `json:"quantity"`
	Shipping         int64             `json:"shippingAmount,omitempty"`
	Tax              int64             `json:"taxAmount,omitempty"`
	Discount         int64             `json:"discountAmount,omitempty"`
	Address          order.Address     `json:"address,omitempty"`
	Variants         map[string]string `json:"metadata,omitempty"`
	Message          string            `json:"message,omitempty"`
	CustomAmount     int64             `json:"customAmount,omitempty"`
	CustomPlanAmount int64             `json:"customPlanAmount,omitempty"`
	PlanID           string            `json:"planId,omitempty"`
	RecurringToggle  bool              `json:"recurringToggle,omitempty"`
}

// Engine runs the payment submission flow: build the order, resolve the
// Stripe customer, create the charge or subscription, persist, notify.
type Engine struct {
	gateway   stripegw.Gateway
	orders    store.OrderStore
	customers store.CustomerStore
	forms     store.FormStore
	hub       *notification.Hub
	testMode  bool
}

func NewEngine(gw stripegw.Gateway, orders store.OrderStore, customers store.CustomerStore, forms store.FormStore, hub *notification.Hub, testMode bool) *Engine {
	return &Engine{
		gateway:   gw,
		orders:    orders,
		customers: customers,
		forms:     forms,
		hub:       hub,
		testMode:  testMode,
	}
}

// ProcessPayment handles one form submission end to end and returns the
// persisted order.
func (e *Engine) ProcessPayment(ctx context.Context, req SubmitRequest) (*order.Order, error) {
	if req.Email == "" || req.Token == "" {
		return nil, ErrMissingPaymentDetails
	}

	f, err := e.forms.FindByID(ctx, req.FormID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownForm
		}
		return nil, fmt.Errorf("load form %d: %w", req.FormID, err)
	}

	o := e.populateOrder(req, f)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	cust, isNew, err := e.resolveCustomer(ctx, req.Email, req.Token)
	if err != nil {
		log.Printf("[Payment] Customer resolution failed for %s: %v (category %s)",
			req.Email, err, stripegw.Categorize(err))
		return nil, ErrPaymentFailed
	}

	if f.EnableSubscriptions {
		err = e.subscribe(ctx, o, f, req, cust)
	} else if req.RecurringToggle && req.CustomAmount > 0 {
		err = e.recurringCharge(ctx, o, f, req, cust)
	} else {
		err = e.singleCharge(ctx, o, req, cust, isNew)
	}
	if err != nil {
		if errors.Is(err, ErrPlanRequired) || errors.Is(err, ErrUnknownPlan) {
			return nil, err
		}
		log.Printf("[Payment] Transaction failed for order %s: %v (category %s)",
			o.Number, err, stripegw.Categorize(err))
		return nil, ErrPaymentFailed
	}

	e.decrementStock(ctx, f, o)

	if err := e.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order %s: %w", o.Number, err)
	}
	log.Printf("[Payment] Order %s created, transaction %s", o.Number, o.StripeTransactionID)

	e.hub.Publish(ctx, notification.NewEvent(notification.EventOrderCreated, o, nil))
	return o, nil
}

func (e *Engine) populateOrder(req SubmitRequest, f *form.PaymentForm) *order.Order {
	now := time.Now()
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	total := req.Amount
	if req.CustomAmount > 0 {
		total = req.CustomAmount
	}
	return &order.Order{
		Number:      order.NewNumber(),
		FormID:      f.ID,
		TestMode:    e.testMode,
		Currency:    f.Currency,
		TotalPrice:  total,
		Shipping:    req.Shipping,
		Tax:         req.Tax,
		Discount:    req.Discount,
		Quantity:    quantity,
		StatusID:    order.StatusNew,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		Variants:    req.Variants,
		Message:     req.Message,
		DateOrdered: now,
		DateCreated: now,
	}
}

// resolveCustomer returns the Stripe customer for the email, creating one if
// the cache misses or the cached id no longer resolves. isNew reports whether
// the returned customer already carries the submitted card token.
func (e *Engine) resolveCustomer(ctx context.Context, email, token string) (cust *stripegw.Customer, isNew bool, err error) {
	rec, err := e.customers.Find(ctx, email, e.testMode)
	if err == nil {
		cust, rerr := e.gateway.RetrieveCustomer(ctx, rec.StripeID)
		if rerr == nil {
			return cust, false, nil
		}
		log.Printf("[Payment] Cached customer %s is stale, recreating: %v", rec.StripeID, rerr)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	cust, err = e.gateway.CreateCustomer(ctx, email, token)
	if err != nil {
		return nil, false, err
	}
	if serr := e.customers.Save(ctx, &store.CustomerRecord{
		Email:    email,
		StripeID: cust.ID,
		TestMode: e.testMode,
	}); serr != nil {
		// The charge can still proceed; the next submission just recreates
		// the provider customer.
		log.Printf("[Payment] Failed to cache customer %s: %v", cust.ID, serr)
	}
	return cust, true, nil
}

func (e *Engine) singleCharge(ctx context.Context, o *order.Order, req SubmitRequest, cust *stripegw.Customer, isNew bool) error {
	source := ""
	if !isNew {
		// A returning customer pays with the freshly submitted token, not
		// whatever default source they had before.
		if err := e.gateway.AttachSource(ctx, cust.ID, req.Token); err != nil {
			return err
		}
	}

	params := stripegw.ChargeParams{
		Amount:      o.TotalPrice,
		Currency:    o.Currency,
		CustomerID:  cust.ID,
		Source:      source,
		Description: fmt.Sprintf("Order from %s", o.Email),
		Metadata:    o.Variants,
	}
	if o.Address.Street != "" {
		params.Shipping = &stripegw.ShippingDetails{
			Name:       o.Address.Name,
			Line1:      o.Address.Street,
			City:       o.Address.City,
			State:      o.Address.State,
			PostalCode: o.Address.Zip,
			Country:    o.Address.Country,
		}
	}

	ch, err := e.gateway.CreateCharge(ctx, params)
	if err != nil {
		return err
	}
	o.StripeTransactionID = ch.ID
	// Asynchronous sources stay pending until the charge.succeeded webhook.
	o.IsCompleted = ch.Status == "succeeded" && ch.Captured
	return nil
}

func (e *Engine) subscribe(ctx context.Context, o *order.Order, f *form.PaymentForm, req SubmitRequest, cust *stripegw.Customer) error {
	switch {
	case f.SubscriptionType == form.SingleSubscriptionPlan && f.EnableCustomPlanAmount && req.CustomPlanAmount > 0:
		plan, err := e.createPlan(ctx, stripegw.PlanParams{
			Amount:          req.CustomPlanAmount,
			Currency:        f.Currency,
			Interval:        f.CustomPlanFrequency,
			IntervalCount:   f.CustomPlanInterval,
			TrialPeriodDays: f.SinglePlanTrialDays,
			ProductName:     "Custom plan from: " + o.Email,
		})
		if err != nil {
			return err
		}
		o.TotalPrice = req.CustomPlanAmount
		return e.startSubscription(ctx, o, cust, plan.ID, req.Token, f.SinglePlanSetupFee)

	case f.SubscriptionType == form.SingleSubscriptionPlan:
		plan, err := e.gateway.RetrievePlan(ctx, f.SinglePlanID)
		if err != nil {
			return err
		}
		o.TotalPrice = plan.Amount
		return e.startSubscription(ctx, o, cust, plan.ID, req.Token, f.SinglePlanSetupFee)

	default: // MultipleSubscriptionPlans
		if req.PlanID == "" {
			return ErrPlanRequired
		}
		if !f.HasPlan(req.PlanID) {
			return ErrUnknownPlan
		}
		plan, err := e.gateway.RetrievePlan(ctx, req.PlanID)
		if err != nil {
			return err
		}
		o.TotalPrice = plan.Amount
		return e.startSubscription(ctx, o, cust, plan.ID, req.Token, f.SetupFeeForPlan(req.PlanID))
	}
}

// recurringCharge turns a one-time form submission with the recurring toggle
// on into a subscription on a plan created for this customer.
func (e *Engine) recurringCharge(ctx context.Context, o *order.Order, f *form.PaymentForm, req SubmitRequest, cust *stripegw.Customer) error {
	interval := f.RecurringPaymentType
	if interval == "" {
		interval = "month"
	}
	plan, err := e.createPlan(ctx, stripegw.PlanParams{
		Amount:      req.CustomAmount,
		Currency:    f.Currency,
		Interval:    interval,
		ProductName: "Plan for recurring payment from: " + o.Email,
	})
	if err != nil {
		return err
	}
	o.TotalPrice = req.CustomAmount
	return e.startSubscription(ctx, o, cust, plan.ID, req.Token, 0)
}

func (e *Engine) createPlan(ctx context.Context, p stripegw.PlanParams) (*stripegw.Plan, error) {
	if p.ID == "" {
		p.ID = fmt.Sprintf("plan_%d", time.Now().UnixNano())
	}
	if p.IntervalCount == 0 {
		p.IntervalCount = 1
	}
	return e.gateway.CreatePlan(ctx, p)
}

func (e *Engine) startSubscription(ctx context.Context, o *order.Order, cust *stripegw.Customer, planID, token string, setupFee int64) error {
	if setupFee > 0 {
		desc := "One time setup fee"
		if err := e.gateway.CreateInvoiceItem(ctx, cust.ID, setupFee, o.Currency, desc); err != nil {
			return err
		}
		o.TotalPrice += setupFee
	}

	sub, err := e.gateway.CreateSubscription(ctx, stripegw.SubscriptionParams{
		CustomerID: cust.ID,
		PlanID:     planID,
		Source:     token,
		Metadata:   o.Variants,
	})
	if err != nil {
		return err
	}
	o.StripeTransactionID = sub.ID
	o.IsSubscription = true
	o.SubscriptionStatus = sub.Status
	o.IsCompleted = sub.Status == "active" || sub.Status == "trialing"
	return nil
}

// decrementStock reduces the form's remaining stock once a transaction
// exists. A failed form update is logged, never rolled into the payment
// result: the customer was already charged.
func (e *Engine) decrementStock(ctx context.Context, f *form.PaymentForm, o *order.Order) {
	if f.HasUnlimitedStock {
		return
	}
	f.Quantity -= o.Quantity
	if f.Quantity < 0 {
		f.Quantity = 0
	}
	if err := e.forms.Update(ctx, f); err != nil {
		log.Printf("[Payment] Failed to update stock for form %d: %v", f.ID, err)
	}
}

// ChargeSource charges a chargeable source that arrived via webhook. Used by
// the dispatcher for asynchronous payment methods (iDEAL, SOFORT and the
// like) where the charge can only be created once the source is ready.
func (e *Engine) ChargeSource(ctx context.Context, o *order.Order, sourceID, sourceType string) error {
	ch, err := e.gateway.CreateCharge(ctx, stripegw.ChargeParams{
		Amount:      o.TotalPrice,
		Currency:    o.Currency,
		Source:      sourceID,
		Description: fmt.Sprintf("Order from %s", o.Email),
		Metadata:    o.Variants,
	})
	if err != nil {
		log.Printf("[Payment] Source charge failed for order %s: %v (category %s)",
			o.Number, err, stripegw.Categorize(err))
		return ErrPaymentFailed
	}

	o.StripeTransactionID = ch.ID
	o.PaymentType = sourceType
	if err := e.orders.Update(ctx, o); err != nil {
		return fmt.Errorf("rebind order %s to charge %s: %w", o.Number, ch.ID, err)
	}
	log.Printf("[Payment] Order %s re-bound to charge %s", o.Number, ch.ID)
	return nil
}

// CompleteCheckout materializes an order from a completed checkout session.
// The payment intent drives the order when present, the subscription
// otherwise; a session with neither is unusable.
func (e *Engine) CompleteCheckout(ctx context.Context, cs stripegw.CheckoutSession) (*order.Order, error) {
	switch {
	case cs.PaymentIntent != "":
		return e.checkoutFromIntent(ctx, cs)
	case cs.Subscription != "":
		return e.checkoutFromSubscription(ctx, cs)
	default:
		return nil, fmt.Errorf("checkout session %s: %w", cs.ID, ErrSessionUnusable)
	}
}

func (e *Engine) checkoutFromIntent(ctx context.Context, cs stripegw.CheckoutSession) (*order.Order, error) {
	pi, err := e.gateway.PaymentIntent(ctx, cs.PaymentIntent)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", cs.PaymentIntent, err)
	}

	o := e.checkoutOrder(cs)
	o.StripeTransactionID = pi.ID
	o.TotalPrice = pi.Amount
	if pi.Currency != "" {
		o.Currency = pi.Currency
	}
	if o.Email == "" {
		o.Email = pi.ReceiptEmail
	}
	return e.persistCheckoutOrder(ctx, o)
}

func (e *Engine) checkoutFromSubscription(ctx context.Context, cs stripegw.CheckoutSession) (*order.Order, error) {
	sub, err := e.gateway.Subscription(ctx, cs.Subscription)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", cs.Subscription, err)
	}

	o := e.checkoutOrder(cs)
	o.StripeTransactionID = sub.ID
	o.IsSubscription = true
	o.SubscriptionStatus = sub.Status
	return e.persistCheckoutOrder(ctx, o)
}

func (e *Engine) checkoutOrder(cs stripegw.CheckoutSession) *order.Order {
	now := time.Now()
	return &order.Order{
		Number:      order.NewNumber(),
		TestMode:    e.testMode,
		PaymentType: "checkout",
		Currency:    cs.Currency,
		TotalPrice:  cs.AmountTotal,
		Quantity:    1,
		StatusID:    order.StatusNew,
		IsCompleted: true,
		Email:       cs.Email(),
		FirstName:   cs.CustomerDetail.Name,
		Variants:    cs.Metadata,
		DateOrdered: now,
		DateCreated: now,
	}
}

func (e *Engine) persistCheckoutOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	if err := e.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("persist checkout order %s: %w", o.Number, err)
	}
	log.Printf("[Payment] Checkout order %s created, transaction %s", o.Number, o.StripeTransactionID)
	e.hub.Publish(ctx, notification.NewEvent(notification.EventOrderCompleted, o, nil))
	return o, nil
}
