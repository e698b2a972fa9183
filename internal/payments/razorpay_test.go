package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	sig := Signature("order_123", "pay_456", "secret")

	assert.True(t, VerifySignature("order_123", "pay_456", sig, "secret"))
	assert.False(t, VerifySignature("order_123", "pay_456", sig+"0", "secret"))
	assert.False(t, VerifySignature("order_123", "pay_999", sig, "secret"))
	assert.False(t, VerifySignature("order_123", "pay_456", sig, "other"))
	assert.False(t, VerifySignature("order_123", "pay_456", "", "secret"))
	assert.False(t, VerifySignature("order_123", "pay_456", sig, ""))
}

func TestSignatureKnownVector(t *testing.T) {
	// echo -n "order_1|pay_1" | openssl dgst -sha256 -hmac key
	assert.Equal(t, "65219a93f3f6ab8a5f6962209ec83d04e29cd18b30fffd7e1a2aade3a72c199e", Signature("order_1", "pay_1", "key"))
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var in map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.EqualValues(t, 50000, in["amount"])
		assert.Equal(t, "INR", in["currency"])

		_ = json.NewEncoder(w).Encode(Order{
			ID: "order_abc", Entity: "order", Amount: 50000, Currency: "INR",
			Receipt: in["receipt"].(string), Status: "created",
		})
	}))
	defer srv.Close()

	rp := NewRazorpay("rzp_key", "rzp_secret")
	rp.BaseURL = srv.URL

	order, err := rp.CreateOrder(context.Background(), 50000, "INR", "appt-1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, "appt-1", order.Receipt)
}

func TestRazorpayCreateOrderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpay("k", "s")
	rp.BaseURL = srv.URL

	_, err := rp.CreateOrder(context.Background(), 1, "INR", "r")
	assert.ErrorContains(t, err, "amount too small")
}

func TestRazorpayNotConfigured(t *testing.T) {
	_, err := NewRazorpay("", "").CreateOrder(context.Background(), 100, "INR", "r")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
