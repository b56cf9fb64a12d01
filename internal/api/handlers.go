package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/stripe-payments/internal/domain/order"
	"github.com/example/stripe-payments/internal/infrastructure/store"
	"github.com/example/stripe-payments/internal/payment"
)

type Handlers struct {
	engine   *payment.Engine
	orders   store.OrderStore
	messages store.MessageStore
}

func NewHandlers(engine *payment.Engine, orders store.OrderStore, messages store.MessageStore) *Handlers {
	return &Handlers{
		engine:   engine,
		orders:   orders,
		messages: messages,
	}
}

// SubmitPayment handles a payment form submission.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req payment.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.engine.ProcessPayment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPaymentFailed):
			// The card holder can act on this; respond 200 with the failure
			// so the embedded form shows it inline.
			respondJSON(w, http.StatusOK, map[string]any{
				"success": false,
				"errors":  []string{"The payment could not be processed"},
			})
		case errors.Is(err, payment.ErrMissingPaymentDetails),
			errors.Is(err, payment.ErrUnknownForm),
			errors.Is(err, payment.ErrPlanRequired),
			errors.Is(err, payment.ErrUnknownPlan),
			errors.Is(err, order.ErrEmailRequired),
			errors.Is(err, order.ErrCurrencyRequired),
			errors.Is(err, order.ErrInvalidQuantity):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			respondJSONError(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   o,
	})
}

// GetOrders lists orders, optionally filtered by ?status=new|shipped.
func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*order.Order
		err    error
	)

	switch r.URL.Query().Get("status") {
	case "":
		orders, err = h.orders.List(r.Context())
	case order.StatusNew.String():
		orders, err = h.orders.ListByStatus(r.Context(), order.StatusNew)
	case order.StatusShipped.String():
		orders, err = h.orders.ListByStatus(r.Context(), order.StatusShipped)
	default:
		respondJSONError(w, "Unknown status", http.StatusBadRequest)
		return
	}
	if err != nil {
		respondJSONError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// GetOrderSummary returns order counts and the completed revenue per
// currency.
func (h *Handlers) GetOrderSummary(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondJSONError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	var completed int
	totals := map[string]int64{}
	for _, o := range orders {
		if !o.IsCompleted {
			continue
		}
		completed++
		totals[o.Currency] += o.TotalPrice
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_orders":     len(orders),
		"completed_orders": completed,
		"total_amount":     totals,
	})
}

// GetOrder returns one order by number, with its audit trail.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	number := extractPathParam(r.URL.Path, "/orders/")
	if number == "" {
		respondJSONError(w, "Order number required", http.StatusBadRequest)
		return
	}

	o, err := h.orders.FindByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondJSONError(w, "Order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	msgs, err := h.messages.ListByOrder(r.Context(), o.ID)
	if err != nil {
		respondJSONError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"order":    o,
		"messages": msgs,
	})
}

// Health is the liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	return strings.TrimSuffix(param, "/")
}
