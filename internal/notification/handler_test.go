package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stripe-payments/internal/domain/order"
)

type fakeSender struct {
	receipts []string
	alerts   []string
	err      error
}

func (f *fakeSender) SendReceipt(to string, o *order.Order) error {
	f.receipts = append(f.receipts, to)
	return f.err
}

func (f *fakeSender) SendAdminAlert(o *order.Order) error {
	f.alerts = append(f.alerts, o.Number)
	return f.err
}

func completedEvent(t *testing.T) []byte {
	t.Helper()
	ev := NewEvent(EventOrderCompleted, &order.Order{
		Number:   "abc123def456",
		Email:    "buyer@example.com",
		Currency: "usd",
		Quantity: 1,
	}, nil)
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func TestHandler_SendsReceiptAndAlert(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, true, true)

	err := h.HandleEvent(context.Background(), nil, completedEvent(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"buyer@example.com"}, sender.receipts)
	assert.Equal(t, []string{"abc123def456"}, sender.alerts)
}

func TestHandler_TogglesDisabled(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, false, false)

	err := h.HandleEvent(context.Background(), nil, completedEvent(t))

	require.NoError(t, err)
	assert.Empty(t, sender.receipts)
	assert.Empty(t, sender.alerts)
}

func TestHandler_IgnoresOtherEventTypes(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, true, true)

	ev := NewEvent(EventWebhookReceived, nil, json.RawMessage(`{"type":"charge.failed"}`))
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), nil, data))
	assert.Empty(t, sender.receipts)
	assert.Empty(t, sender.alerts)
}

func TestHandler_CompletedWithoutOrder(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, true, true)

	ev := NewEvent(EventOrderCompleted, nil, nil)
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), nil, data))
	assert.Empty(t, sender.receipts)
}

func TestHandler_MalformedPayload(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, true, true)

	err := h.HandleEvent(context.Background(), nil, []byte("not json"))

	assert.Error(t, err)
}
