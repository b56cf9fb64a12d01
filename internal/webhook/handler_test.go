package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stripe-payments/internal/notification"
	"github.com/example/stripe-payments/internal/payment"
)

const handlerSecret = "whsec_handler"

type handlerFixture struct {
	*dispatcherFixture
	handler *Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	dfx := newDispatcherFixture(t)
	return &handlerFixture{
		dispatcherFixture: dfx,
		handler:           NewHandler(NewVerifier(handlerSecret), dfx.d),
	}
}

func (fx *handlerFixture) deliver(t *testing.T, body, sigHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func (fx *handlerFixture) deliverSigned(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return fx.deliver(t, body, signPayload(t, handlerSecret, time.Now(), []byte(body)))
}

func TestHandler_ChargeSucceededCompletesOrder(t *testing.T) {
	fx := newHandlerFixture(t)
	seeded := fx.seedOrder("ch_1", false)

	rec := fx.deliverSigned(t, `{"id":"evt_1","type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	stored, ok := fx.orders.Get(seeded.ID)
	require.True(t, ok)
	assert.True(t, stored.IsCompleted)
	assert.Len(t, fx.messages.Appended, 1)
}

func TestHandler_ReplayedDeliveryIsIdempotent(t *testing.T) {
	fx := newHandlerFixture(t)
	seeded := fx.seedOrder("ch_1", false)
	body := `{"id":"evt_1","type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`

	first := fx.deliverSigned(t, body)
	second := fx.deliverSigned(t, body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"success":true}`, second.Body.String())

	stored, _ := fx.orders.Get(seeded.ID)
	assert.True(t, stored.IsCompleted)
	// One completion, one completion notification, two audit entries.
	assert.Len(t, fx.orders.UpdateCalls, 1)
	assert.Len(t, fx.messages.Appended, 2)

	var completions int
	for _, ev := range fx.events {
		if ev.Type == notification.EventOrderCompleted {
			completions++
		}
	}
	assert.Equal(t, 1, completions)
}

func TestHandler_UnrecognizedEventType(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.deliverSigned(t, `{"id":"evt_1","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())
}

func TestHandler_NonStripeBody(t *testing.T) {
	fx := newHandlerFixture(t)
	body := `{"hello":"world"}`

	rec := fx.deliverSigned(t, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false}`, rec.Body.String())
	assert.Zero(t, fx.orders.FindByTransactionIDCalls)
}

func TestHandler_BadSignatureRejectedBeforeAnyLookup(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.seedOrder("ch_1", false)
	body := `{"id":"evt_1","type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`

	rec := fx.deliver(t, body, signPayload(t, "whsec_wrong", time.Now(), []byte(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, fx.orders.FindByTransactionIDCalls)
	assert.Empty(t, fx.messages.Appended)
	assert.Empty(t, fx.events)
}

func TestHandler_MissingSignatureHeader(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.deliver(t, `{"id":"evt_1","type":"charge.succeeded"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandler_CheckoutWithoutTransactionReturns200(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.payments.checkoutErr = payment.ErrSessionUnusable

	rec := fx.deliverSigned(t, `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_empty"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, fx.orders.CreateCalls)
}

func TestHandler_StoreFailureReturns500(t *testing.T) {
	fx := newHandlerFixture(t)
	fx.orders.FindErr = context.DeadlineExceeded

	rec := fx.deliverSigned(t, `{"id":"evt_1","type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
