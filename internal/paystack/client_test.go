package paystack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verifySuccessBody = `{
  "status": true,
  "message": "Verification successful",
  "data": {
    "id": 4099260516,
    "status": "success",
    "reference": "FEE-1700000000-abc123def456",
    "amount": 15000000,
    "currency": "NGN",
    "gateway_response": "Successful",
    "channel": "card",
    "paid_at": "2024-01-15T10:30:00.000Z",
    "authorization": {
      "authorization_code": "AUTH_8dfhjjdt",
      "card_type": "visa",
      "last4": "4081",
      "bank": "TEST BANK",
      "channel": "card"
    }
  }
}`

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/FEE-1700000000-abc123def456", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, verifySuccessBody)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	tx, err := client.Verify(context.Background(), "FEE-1700000000-abc123def456")
	require.NoError(t, err)

	assert.True(t, tx.Succeeded())
	assert.Equal(t, "4099260516", tx.ID)
	assert.Equal(t, int64(15000000), tx.AmountMinor)
	assert.Equal(t, "NGN", tx.Currency)
	assert.Empty(t, tx.ReceiptURL)
	require.NotNil(t, tx.Authorization)
	assert.Equal(t, "4081", tx.Authorization.Last4)
	assert.False(t, tx.PaidAt.IsZero())
}

func TestVerify_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":false,"message":"Transaction reference not found"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	_, err := client.Verify(context.Background(), "FEE-missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerify_ServerErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	_, err := client.Verify(context.Background(), "FEE-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerify_TimeoutIsUnavailable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "sk_test_secret", 50*time.Millisecond)

	_, err := client.Verify(context.Background(), "FEE-slow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVerify_UnauthorizedIsRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":false,"message":"Invalid key"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_bad", time.Second)

	_, err := client.Verify(context.Background(), "FEE-1")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestVerify_GarbageBodyIsMalformed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	_, err := client.Verify(context.Background(), "FEE-1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestInitialize_SendsAmountAndMetadata(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(15000000), body["amount"])
		assert.Equal(t, "ada@school.test", body["email"])
		assert.Equal(t, "FEE-1-aaa", body["reference"])

		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/x","access_code":"x","reference":"FEE-1-aaa"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	res, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "ada@school.test",
		AmountMinor: 15000000,
		Currency:    "NGN",
		Reference:   "FEE-1-aaa",
		Metadata: Metadata{CustomFields: []CustomField{
			{DisplayName: "Fee Type", VariableName: "fee_type", Value: "Term 1 Tuition"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/x", res.AuthorizationURL)
	assert.Equal(t, "FEE-1-aaa", res.Reference)
}

func TestVerify_StringTransactionID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"id":"TXN1","status":"success","reference":"FEE-1","amount":5000000,"currency":"NGN"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_secret", time.Second)

	tx, err := client.Verify(context.Background(), "FEE-1")
	require.NoError(t, err)

	assert.Equal(t, "TXN1", tx.ID)
	assert.Equal(t, int64(5000000), tx.AmountMinor)
}
