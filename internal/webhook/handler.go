package webhook

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
)

// Handler is the HTTP endpoint Stripe delivers webhooks to.
//
// Response contract: 400 with an empty body when the signature does not
// verify, 200 with {"success":true} for a handled event, 200 with
// {"success":false} for deliveries that are not recognized Stripe events.
type Handler struct {
	verifier   *Verifier
	dispatcher *Dispatcher
}

func NewHandler(verifier *Verifier, dispatcher *Dispatcher) *Handler {
	return &Handler{verifier: verifier, dispatcher: dispatcher}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Reject forgeries before touching any store.
	if !h.verifier.Verify(body, r.Header.Get("Stripe-Signature")) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ev, err := ParseEvent(body)
	if err != nil {
		log.Printf("[Webhook] Unparseable delivery: %v", err)
		respondSuccess(w, false)
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), ev)
	if err != nil {
		// Non-2xx makes Stripe redeliver; every rule is idempotent, so a
		// retry after a transient store failure is safe.
		log.Printf("[Webhook] Dispatch of %s failed: %v", ev.Type, err)
		w.WriteHeader(http.StatusInternalServerError)
		respondBody(w, false)
		return
	}

	respondSuccess(w, res.Handled)
}

func respondSuccess(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	respondBody(w, ok)
}

func respondBody(w http.ResponseWriter, ok bool) {
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": ok})
}
