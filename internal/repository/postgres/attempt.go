package postgres

import (
	"context"
	"database/sql"
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// AttemptRepository implements repository.AttemptRepository.
type AttemptRepository struct {
	q Querier
}

// NewAttemptRepository creates a new attempt repository.
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{q: db}
}

// NewAttemptRepositoryWithTx creates an attempt repository using a transaction.
func NewAttemptRepositoryWithTx(tx *sql.Tx) *AttemptRepository {
	return &AttemptRepository{q: tx}
}

const attemptColumns = `reference, payer_id, fee_id, amount_minor, currency, state, created_at, updated_at`

// Create persists a new attempt.
func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (reference, payer_id, fee_id, amount_minor, currency, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		attempt.Reference,
		attempt.PayerID,
		attempt.FeeID,
		attempt.AmountMinor,
		attempt.Currency,
		attempt.State,
	).Scan(&attempt.CreatedAt, &attempt.UpdatedAt)

	return mapError(err)
}

// GetByReference retrieves an attempt by reference.
func (r *AttemptRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE reference = $1`

	attempt, err := scanAttempt(r.q.QueryRowContext(ctx, query, reference))
	if err != nil {
		return nil, mapError(err)
	}
	return attempt, nil
}

// Transition moves an attempt from one state to another.
func (r *AttemptRepository) Transition(ctx context.Context, reference string, from, to domain.AttemptState) error {
	query := `
		UPDATE payment_attempts SET state = $3, updated_at = now()
		WHERE reference = $1 AND state = $2
	`

	result, err := r.q.ExecContext(ctx, query, reference, from, to)
	if err != nil {
		return mapError(err)
	}

	if err := requireRow(result); err != nil {
		if _, getErr := r.GetByReference(ctx, reference); getErr != nil {
			return getErr
		}
		return repository.ErrStateConflict
	}
	return nil
}

// close sets the final state of an attempt whatever its current state,
// unless it is already settled.
func (r *AttemptRepository) close(ctx context.Context, reference string, to domain.AttemptState) error {
	query := `
		UPDATE payment_attempts SET state = $2, updated_at = now()
		WHERE reference = $1 AND state <> 'settled'
	`
	_, err := r.q.ExecContext(ctx, query, reference, to)
	return mapError(err)
}

// ListOpen retrieves open attempts created before the cutoff, oldest first.
func (r *AttemptRepository) ListOpen(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.PaymentAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE state = 'open' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, createdBefore, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var attempts []*domain.PaymentAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, mapError(rows.Err())
}

func scanAttempt(row rowScanner) (*domain.PaymentAttempt, error) {
	var attempt domain.PaymentAttempt
	err := row.Scan(
		&attempt.Reference,
		&attempt.PayerID,
		&attempt.FeeID,
		&attempt.AmountMinor,
		&attempt.Currency,
		&attempt.State,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
