package repository

import (
	"context"
	"time"

	"schoolfees/internal/domain"
)

// PaymentRepository defines the read operations for payment records.
// Records are only ever written through SettlementStore.
type PaymentRepository interface {
	// GetByID retrieves a payment record by ID.
	GetByID(ctx context.Context, id string) (*domain.PaymentRecord, error)

	// GetByReference retrieves a payment record by provider reference.
	// Returns nil if no record exists with the given reference.
	GetByReference(ctx context.Context, reference string) (*domain.PaymentRecord, error)

	// ListByPayer retrieves a payer's records, newest first.
	ListByPayer(ctx context.Context, payerID string) ([]*domain.PaymentRecord, error)

	// GetAll retrieves all records, newest first.
	GetAll(ctx context.Context) ([]*domain.PaymentRecord, error)

	// ListUnapplied retrieves success records whose fee status entry is not paid.
	ListUnapplied(ctx context.Context, limit int) ([]*domain.PaymentRecord, error)
}

// AttemptRepository defines the persistence operations for payment attempts.
type AttemptRepository interface {
	// Create persists a new attempt.
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error

	// GetByReference retrieves an attempt by reference.
	GetByReference(ctx context.Context, reference string) (*domain.PaymentAttempt, error)

	// Transition moves an attempt from one state to another.
	// Returns ErrStateConflict if the attempt is not in the from state.
	Transition(ctx context.Context, reference string, from, to domain.AttemptState) error

	// ListOpen retrieves open attempts created before the cutoff, oldest first.
	ListOpen(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.PaymentAttempt, error)
}

// SettlementStore writes the outcome of a verified payment.
type SettlementStore interface {
	// Settle atomically creates the record, marks the fee status entry paid
	// and closes the attempt. Returns ErrAlreadyPaid, leaving nothing written,
	// when the entry is already paid, and ErrDuplicate when the reference
	// has already been recorded.
	Settle(ctx context.Context, record *domain.PaymentRecord) error

	// ApplyStatus marks the fee status entry paid for an existing record.
	// Returns ErrAlreadyPaid if the entry is paid under a different reference.
	ApplyStatus(ctx context.Context, record *domain.PaymentRecord) error
}

// IssueRepository persists settlement issues for operators.
type IssueRepository interface {
	// Create persists a new issue.
	Create(ctx context.Context, issue *domain.SettlementIssue) error

	// ListOpen retrieves unresolved issues, oldest first.
	ListOpen(ctx context.Context) ([]*domain.SettlementIssue, error)
}

// WebhookEventRepository persists provider webhook events.
type WebhookEventRepository interface {
	// Create persists the event. Returns false if an event with the same
	// provider and provider event ID was already stored.
	Create(ctx context.Context, event *domain.WebhookEvent) (bool, error)

	// MarkProcessed records the processing outcome of an event.
	MarkProcessed(ctx context.Context, id string, processingError string) error
}
