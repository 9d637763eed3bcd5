package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw request body.
const SignatureHeader = "X-Paystack-Signature"

// EventChargeSuccess is sent when a charge completes.
const EventChargeSuccess = "charge.success"

// Event is a webhook notification.
type Event struct {
	Type        string
	DataID      string
	Transaction *Transaction
}

// EventID derives a stable identifier for deduplication. Paystack does not
// send one, so the event type and transaction id are combined.
func (e *Event) EventID() string {
	id := e.DataID
	if id == "" && e.Transaction != nil {
		id = e.Transaction.Reference
	}
	if id == "" {
		return e.Type
	}
	return e.Type + ":" + id
}

// ValidSignature reports whether signature is the HMAC-SHA512 of body keyed
// with secret. The comparison is constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(mac.Sum(nil), given)
}

// Sign returns the signature Paystack would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent decodes a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var raw struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrMalformedResponse)
	}

	event := &Event{Type: raw.Event}

	var ident struct {
		ID transactionID `json:"id"`
	}
	if len(raw.Data) > 0 && json.Unmarshal(raw.Data, &ident) == nil {
		event.DataID = string(ident.ID)
	}

	if strings.HasPrefix(raw.Event, "charge.") && len(raw.Data) > 0 {
		var data transactionData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		event.Transaction = data.toTransaction()
	}

	return event, nil
}
