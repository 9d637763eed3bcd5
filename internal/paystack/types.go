package paystack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Provider is the name stored alongside provider-originated records.
const Provider = "paystack"

// StatusSuccess is the transaction status of a completed charge.
const StatusSuccess = "success"

var (
	// ErrTransactionNotFound is returned when Paystack has no transaction for a reference.
	ErrTransactionNotFound = errors.New("paystack: transaction not found")

	// ErrUnavailable is returned on network failure, timeout or a 5xx answer.
	// The caller may try again later.
	ErrUnavailable = errors.New("paystack: unavailable")

	// ErrRejected is returned when Paystack refuses the request (bad key, bad input).
	ErrRejected = errors.New("paystack: request rejected")

	// ErrMalformedResponse is returned when a response cannot be decoded.
	ErrMalformedResponse = errors.New("paystack: malformed response")
)

// Transaction is Paystack's authoritative view of a charge.
type Transaction struct {
	ID              string
	Status          string
	Reference       string
	AmountMinor     int64
	Currency        string
	GatewayResponse string
	Channel         string
	PaidAt          time.Time
	ReceiptURL      string
	Authorization   *Authorization
}

// Succeeded reports whether Paystack considers the charge successful.
func (t *Transaction) Succeeded() bool {
	return t.Status == StatusSuccess
}

// Authorization holds the reusable authorization Paystack returns for a charge.
type Authorization struct {
	AuthorizationCode string
	CardType          string
	Last4             string
	Bank              string
	Channel           string
}

// CustomField is a receipt display field in transaction metadata.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// Metadata is attached to a transaction and echoed back on verify.
type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// InitializeRequest starts a hosted checkout.
type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    Metadata
}

// InitializeResult is the hosted checkout Paystack created.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// envelope is the wrapper every Paystack API response uses.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// transactionID accepts an id sent either as a JSON number or a string.
type transactionID string

func (id *transactionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = transactionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	*id = transactionID(n.String())
	return nil
}

type transactionData struct {
	ID              transactionID      `json:"id"`
	Status          string             `json:"status"`
	Reference       string             `json:"reference"`
	Amount          int64              `json:"amount"`
	Currency        string             `json:"currency"`
	GatewayResponse string             `json:"gateway_response"`
	Channel         string             `json:"channel"`
	PaidAt          *time.Time         `json:"paid_at"`
	ReceiptURL      *string            `json:"receipt_url"`
	Authorization   *authorizationData `json:"authorization"`
}

type authorizationData struct {
	AuthorizationCode string `json:"authorization_code"`
	CardType          string `json:"card_type"`
	Last4             string `json:"last4"`
	Bank              string `json:"bank"`
	Channel           string `json:"channel"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

func (d *transactionData) toTransaction() *Transaction {
	tx := &Transaction{
		ID:              string(d.ID),
		Status:          d.Status,
		Reference:       d.Reference,
		AmountMinor:     d.Amount,
		Currency:        d.Currency,
		GatewayResponse: d.GatewayResponse,
		Channel:         d.Channel,
	}
	if d.PaidAt != nil {
		tx.PaidAt = *d.PaidAt
	}
	if d.ReceiptURL != nil {
		tx.ReceiptURL = *d.ReceiptURL
	}
	if a := d.Authorization; a != nil {
		auth := Authorization{
			AuthorizationCode: a.AuthorizationCode,
			CardType:          a.CardType,
			Last4:             a.Last4,
			Bank:              a.Bank,
			Channel:           a.Channel,
		}
		if auth != (Authorization{}) {
			tx.Authorization = &auth
		}
	}
	return tx
}
