package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		Number:   NewNumber(),
		Email:    "buyer@example.com",
		Currency: "usd",
		Quantity: 1,
		StatusID: StatusNew,
	}
}

func TestMarkCompleted_FirstTime(t *testing.T) {
	o := validOrder()

	changed := o.MarkCompleted()

	assert.True(t, changed)
	assert.True(t, o.IsCompleted)
}

func TestMarkCompleted_Idempotent(t *testing.T) {
	o := validOrder()
	require.True(t, o.MarkCompleted())

	changed := o.MarkCompleted()

	assert.False(t, changed)
	assert.True(t, o.IsCompleted, "completion is one-way")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr error
	}{
		{"valid", func(o *Order) {}, nil},
		{"missing number", func(o *Order) { o.Number = "" }, ErrNumberRequired},
		{"missing email", func(o *Order) { o.Email = "" }, ErrEmailRequired},
		{"missing currency", func(o *Order) { o.Currency = "" }, ErrCurrencyRequired},
		{"zero quantity", func(o *Order) { o.Quantity = 0 }, ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNewNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewNumber()
		assert.Len(t, n, 12)
		for _, r := range n {
			assert.True(t, strings.ContainsRune(numberKeyspace, r))
		}
		assert.False(t, seen[n], "numbers should not repeat")
		seen[n] = true
	}
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "green", StatusNew.Color())
	assert.Equal(t, "blue", StatusShipped.Color())
	assert.Equal(t, "grey", Status(99).Color())
}
