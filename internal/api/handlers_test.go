package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stripe-payments/internal/auth"
	"github.com/example/stripe-payments/internal/domain/form"
	"github.com/example/stripe-payments/internal/domain/order"
	"github.com/example/stripe-payments/internal/infrastructure/store/mocks"
	"github.com/example/stripe-payments/internal/notification"
	"github.com/example/stripe-payments/internal/payment"
	"github.com/example/stripe-payments/internal/stripegw"
)

type apiFixture struct {
	gateway  *mocks.MockGateway
	orders   *mocks.MockOrderStore
	messages *mocks.MockMessageStore
	forms    *mocks.MockFormStore
	jwt      *auth.JWTService
	router   http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	fx := &apiFixture{
		gateway:  mocks.NewMockGateway(),
		orders:   mocks.NewMockOrderStore(),
		messages: mocks.NewMockMessageStore(),
		forms:    mocks.NewMockFormStore(),
		jwt:      auth.NewJWTService("test-secret", time.Hour),
	}

	engine := payment.NewEngine(fx.gateway, fx.orders, mocks.NewMockCustomerStore(), fx.forms, notification.NewHub(), true)

	hash, err := auth.HashPassword("admin-password")
	require.NoError(t, err)

	fx.router = NewRouter(RouterConfig{
		Handlers:     NewHandlers(engine, fx.orders, fx.messages),
		AuthHandlers: NewAuthHandlers(fx.jwt, "admin@example.com", hash),
		JWTService:   fx.jwt,
		Webhook: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
	return fx
}

func (fx *apiFixture) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func (fx *apiFixture) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := fx.jwt.GenerateToken("admin@example.com", "admin")
	require.NoError(t, err)
	return token
}

func TestSubmitPayment_Success(t *testing.T) {
	fx := newAPIFixture(t)
	fx.forms.Seed(&form.PaymentForm{ID: 1, Currency: "usd", HasUnlimitedStock: true})
	fx.gateway.ChargeResult = &stripegw.Charge{ID: "ch_1", Status: "succeeded", Captured: true}

	rec := fx.request(t, http.MethodPost, "/payments",
		`{"token":"tok_visa","formId":1,"email":"buyer@example.com","amount":2500,"quantity":1}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool        `json:"success"`
		Order   order.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ch_1", resp.Order.StripeTransactionID)
	assert.Len(t, resp.Order.Number, 12)
}

func TestSubmitPayment_CardDeclined(t *testing.T) {
	fx := newAPIFixture(t)
	fx.forms.Seed(&form.PaymentForm{ID: 1, Currency: "usd", HasUnlimitedStock: true})
	fx.gateway.ChargeErr = assert.AnError

	rec := fx.request(t, http.MethodPost, "/payments",
		`{"token":"tok_visa","formId":1,"email":"buyer@example.com","amount":2500,"quantity":1}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool     `json:"success"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Errors)
}

func TestSubmitPayment_MalformedBody(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodPost, "/payments", `{not json`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitPayment_MissingDetails(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodPost, "/payments", `{"formId":1}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodPost, "/auth/login",
		`{"email":"admin@example.com","password":"admin-password"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	claims, err := fx.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodPost, "/auth/login",
		`{"email":"admin@example.com","password":"nope"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrders_RequiresAuth(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodGet, "/orders", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetOrders_ListsAndFilters(t *testing.T) {
	fx := newAPIFixture(t)
	fx.orders.Seed(&order.Order{Number: "aaa", Email: "a@e.com", Currency: "usd", Quantity: 1, StatusID: order.StatusNew})
	fx.orders.Seed(&order.Order{Number: "bbb", Email: "b@e.com", Currency: "usd", Quantity: 1, StatusID: order.StatusShipped})
	token := fx.adminToken(t)

	rec := fx.request(t, http.MethodGet, "/orders", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Orders []order.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 2)

	rec = fx.request(t, http.MethodGet, "/orders?status=shipped", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	resp.Orders = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "bbb", resp.Orders[0].Number)
}

func TestGetOrders_UnknownStatus(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodGet, "/orders?status=bogus", "", fx.adminToken(t))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_WithAuditTrail(t *testing.T) {
	fx := newAPIFixture(t)
	seeded := fx.orders.Seed(&order.Order{Number: "abc123def456", Email: "a@e.com", Currency: "usd", Quantity: 1})
	require.NoError(t, fx.messages.Append(context.Background(), seeded.ID, "charge.succeeded", []byte(`{}`)))

	rec := fx.request(t, http.MethodGet, "/orders/abc123def456", "", fx.adminToken(t))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Order    order.Order `json:"order"`
		Messages []struct {
			Kind string `json:"Kind"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc123def456", resp.Order.Number)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "charge.succeeded", resp.Messages[0].Kind)
}

func TestGetOrderSummary(t *testing.T) {
	fx := newAPIFixture(t)
	fx.orders.Seed(&order.Order{Number: "aaa", Email: "a@e.com", Currency: "usd", Quantity: 1, TotalPrice: 1000, IsCompleted: true})
	fx.orders.Seed(&order.Order{Number: "bbb", Email: "b@e.com", Currency: "usd", Quantity: 1, TotalPrice: 500, IsCompleted: true})
	fx.orders.Seed(&order.Order{Number: "ccc", Email: "c@e.com", Currency: "usd", Quantity: 1, TotalPrice: 900})

	rec := fx.request(t, http.MethodGet, "/orders/summary", "", fx.adminToken(t))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		TotalOrders     int              `json:"total_orders"`
		CompletedOrders int              `json:"completed_orders"`
		TotalAmount     map[string]int64 `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalOrders)
	assert.Equal(t, 2, resp.CompletedOrders)
	assert.Equal(t, int64(1500), resp.TotalAmount["usd"])
}

func TestGetOrder_NotFound(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodGet, "/orders/nope", "", fx.adminToken(t))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.request(t, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
