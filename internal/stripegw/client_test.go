package stripegw

import (
	"errors"
	"net/http"
	"testing"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureCategory
	}{
		{"nil", nil, ""},
		{"card declined", &stripe.Error{Type: stripe.ErrorTypeCard}, FailureCardDeclined},
		{"rate limited", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusTooManyRequests}, FailureRateLimited},
		{"auth", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusUnauthorized}, FailureAuthentication},
		{"invalid request", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, FailureInvalidRequest},
		{"api error", &stripe.Error{Type: stripe.ErrorTypeAPI}, FailureGeneric},
		{"transport", errors.New("dial tcp: connection refused"), FailureConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

func TestCustomerParams(t *testing.T) {
	p := customerParams("buyer@example.com", "tok_visa")
	assert.Equal(t, "buyer@example.com", *p.Email)
	require.NotNil(t, p.Source)
	assert.Equal(t, "tok_visa", *p.Source)

	assert.Nil(t, customerParams("buyer@example.com", "").Source)
}

func TestAttachSourceParams(t *testing.T) {
	p := attachSourceParams("cus_1", "tok_visa")
	assert.Equal(t, "cus_1", *p.Customer)
	require.NotNil(t, p.Source)
	assert.Equal(t, "tok_visa", *p.Source.Token)
}

func TestCheckoutSessionEmail(t *testing.T) {
	cs := CheckoutSession{CustomerEmail: "direct@example.com"}
	cs.CustomerDetail.Email = "detail@example.com"
	assert.Equal(t, "direct@example.com", cs.Email())

	cs.CustomerEmail = ""
	assert.Equal(t, "detail@example.com", cs.Email())
}
