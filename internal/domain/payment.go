package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethodPaystack is the only payment method in use.
const PaymentMethodPaystack = "paystack"

// Authorization holds the card/channel details the provider reports.
type Authorization struct {
	AuthorizationCode string
	CardType          string
	Last4             string
	Bank              string
	Channel           string
}

// IsZero reports whether no authorization detail is present.
func (a Authorization) IsZero() bool {
	return a == Authorization{}
}

// PaymentRecord is the durable result of one verified payment.
type PaymentRecord struct {
	ID            string
	PayerID       string
	PayerName     string
	FeeID         string
	FeeName       string
	Amount        decimal.Decimal
	Currency      string
	Reference     string
	Status        PaymentStatus
	TransactionID string
	PaymentMethod string
	ReceiptURL    *string
	Authorization *Authorization
	PaidAt        time.Time
	CreatedAt     time.Time
}

// AttemptState represents the lifecycle of a payment attempt.
type AttemptState string

const (
	AttemptOpen      AttemptState = "open"
	AttemptSettled   AttemptState = "settled"
	AttemptAbandoned AttemptState = "abandoned"
	AttemptFailed    AttemptState = "failed"
	AttemptDuplicate AttemptState = "duplicate"
)

// PaymentAttempt is a reference handed out to a payer for one (payer, fee) pair.
type PaymentAttempt struct {
	Reference   string
	PayerID     string
	FeeID       string
	AmountMinor int64
	Currency    string
	State       AttemptState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal reports whether the attempt can no longer be settled.
func (a *PaymentAttempt) IsTerminal() bool {
	return a.State != AttemptOpen
}

// IssueKind classifies a settlement issue that needs an operator.
type IssueKind string

const (
	IssueDuplicatePayment IssueKind = "duplicate_payment"
	IssueMalformedData    IssueKind = "malformed_provider_data"
)

// SettlementIssue records a verified payment that did not settle normally.
type SettlementIssue struct {
	ID            string
	Kind          IssueKind
	Reference     string
	PayerID       string
	FeeID         string
	TransactionID string
	Detail        string
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// WebhookEvent is a provider notification as received.
type WebhookEvent struct {
	ID              string
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
	SignatureValid  bool
	ProcessedAt     *time.Time
	ProcessingError string
	CreatedAt       time.Time
}
