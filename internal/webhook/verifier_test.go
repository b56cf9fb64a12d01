package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signPayload(t *testing.T, secret string, ts time.Time, payload []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerify_ValidSignature(t *testing.T) {
	v := NewVerifier("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	header := signPayload(t, "whsec_test", time.Now(), payload)

	assert.True(t, v.Verify(payload, header))
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewVerifier("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	header := signPayload(t, "whsec_other", time.Now(), payload)

	assert.False(t, v.Verify(payload, header))
}

func TestVerify_TamperedPayload(t *testing.T) {
	v := NewVerifier("whsec_test")
	header := signPayload(t, "whsec_test", time.Now(), []byte(`{"amount":100}`))

	assert.False(t, v.Verify([]byte(`{"amount":99999}`), header))
}

func TestVerify_MissingHeader(t *testing.T) {
	v := NewVerifier("whsec_test")

	assert.False(t, v.Verify([]byte(`{}`), ""))
}

func TestVerify_StaleTimestamp(t *testing.T) {
	v := NewVerifier("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	header := signPayload(t, "whsec_test", time.Now().Add(-time.Hour), payload)

	assert.False(t, v.Verify(payload, header))
}

func TestVerify_NoSecretAcceptsEverything(t *testing.T) {
	v := NewVerifier("")

	assert.True(t, v.Verify([]byte(`{"id":"evt_1"}`), ""))
	assert.True(t, v.Verify([]byte(`anything`), "t=1,v1=bogus"))
}
