package paystack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"event":"charge.success","data":{"id":1,"reference":"FEE-1"}}`)
	sig := Sign("sk_test_secret", body)

	assert.True(t, ValidSignature("sk_test_secret", body, sig))
	assert.False(t, ValidSignature("sk_other", body, sig))
	assert.False(t, ValidSignature("sk_test_secret", append(body, ' '), sig))
	assert.False(t, ValidSignature("sk_test_secret", body, "not-hex"))
	assert.False(t, ValidSignature("sk_test_secret", body, ""))
	assert.False(t, ValidSignature("", body, sig))
}

func TestParseEvent_ChargeSuccess(t *testing.T) {
	t.Parallel()

	event, err := ParseEvent([]byte(`{"event":"charge.success","data":{"id":42,"status":"success","reference":"FEE-1","amount":5000,"currency":"NGN","receipt_url":"https://r.test/1"}}`))
	require.NoError(t, err)

	assert.Equal(t, EventChargeSuccess, event.Type)
	require.NotNil(t, event.Transaction)
	assert.Equal(t, "FEE-1", event.Transaction.Reference)
	assert.Equal(t, "https://r.test/1", event.Transaction.ReceiptURL)
	assert.Equal(t, "charge.success:42", event.EventID())
}

func TestParseEvent_OtherEventHasNoTransaction(t *testing.T) {
	t.Parallel()

	event, err := ParseEvent([]byte(`{"event":"transfer.success","data":{"id":7}}`))
	require.NoError(t, err)

	assert.Nil(t, event.Transaction)
	assert.Equal(t, "transfer.success:7", event.EventID())
}

func TestParseEvent_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseEvent_StringTransactionID(t *testing.T) {
	t.Parallel()

	event, err := ParseEvent([]byte(`{"event":"charge.success","data":{"id":"TXN1","status":"success","reference":"FEE-1","amount":5000,"currency":"NGN"}}`))
	require.NoError(t, err)

	require.NotNil(t, event.Transaction)
	assert.Equal(t, "TXN1", event.Transaction.ID)
	assert.Equal(t, "charge.success:TXN1", event.EventID())
}

func TestParseEvent_NullTransactionIDFallsBackToReference(t *testing.T) {
	t.Parallel()

	event, err := ParseEvent([]byte(`{"event":"charge.success","data":{"id":null,"status":"success","reference":"FEE-1"}}`))
	require.NoError(t, err)

	assert.Equal(t, "charge.success:FEE-1", event.EventID())
}
