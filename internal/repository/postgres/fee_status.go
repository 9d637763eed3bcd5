package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/volatiletech/null/v8"

	"schoolfees/internal/domain"
)

// FeeStatusRepository implements repository.FeeStatusRepository.
type FeeStatusRepository struct {
	q Querier
}

// NewFeeStatusRepository creates a new fee status repository.
func NewFeeStatusRepository(db *sql.DB) *FeeStatusRepository {
	return &FeeStatusRepository{q: db}
}

// NewFeeStatusRepositoryWithTx creates a fee status repository using a transaction.
func NewFeeStatusRepositoryWithTx(tx *sql.Tx) *FeeStatusRepository {
	return &FeeStatusRepository{q: tx}
}

const feeStatusColumns = `payer_id, fee_id, status, payment_date, reference, transaction_id, receipt_url, last_updated`

// Get returns the entry for (payerID, feeID), or nil if none exists.
func (r *FeeStatusRepository) Get(ctx context.Context, payerID, feeID string) (*domain.FeeStatusEntry, error) {
	query := `SELECT ` + feeStatusColumns + ` FROM fee_statuses WHERE payer_id = $1 AND fee_id = $2`

	entry, err := scanFeeStatus(r.q.QueryRowContext(ctx, query, payerID, feeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return entry, nil
}

// ListByPayer returns the payer's entries keyed by fee ID.
func (r *FeeStatusRepository) ListByPayer(ctx context.Context, payerID string) (map[string]*domain.FeeStatusEntry, error) {
	query := `SELECT ` + feeStatusColumns + ` FROM fee_statuses WHERE payer_id = $1`

	rows, err := r.q.QueryContext(ctx, query, payerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := make(map[string]*domain.FeeStatusEntry)
	for rows.Next() {
		entry, err := scanFeeStatus(rows)
		if err != nil {
			return nil, err
		}
		entries[entry.FeeID] = entry
	}
	return entries, mapError(rows.Err())
}

// lockEntry makes sure an entry exists for (payerID, feeID) and locks it
// for the rest of the transaction.
func (r *FeeStatusRepository) lockEntry(ctx context.Context, payerID, feeID string) (*domain.FeeStatusEntry, error) {
	ensure := `
		INSERT INTO fee_statuses (payer_id, fee_id, status)
		VALUES ($1, $2, 'unpaid')
		ON CONFLICT (payer_id, fee_id) DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, ensure, payerID, feeID); err != nil {
		return nil, mapError(err)
	}

	query := `SELECT ` + feeStatusColumns + ` FROM fee_statuses WHERE payer_id = $1 AND fee_id = $2 FOR UPDATE`
	entry, err := scanFeeStatus(r.q.QueryRowContext(ctx, query, payerID, feeID))
	if err != nil {
		return nil, mapError(err)
	}
	return entry, nil
}

// markPaid flips a locked entry to paid for the given record.
func (r *FeeStatusRepository) markPaid(ctx context.Context, record *domain.PaymentRecord) error {
	query := `
		UPDATE fee_statuses
		SET status = 'paid', payment_date = $3, reference = $4, transaction_id = $5,
		    receipt_url = $6, last_updated = now()
		WHERE payer_id = $1 AND fee_id = $2 AND status = 'unpaid'
	`

	result, err := r.q.ExecContext(ctx, query,
		record.PayerID,
		record.FeeID,
		record.PaidAt,
		record.Reference,
		optionalString(record.TransactionID),
		null.StringFromPtr(record.ReceiptURL),
	)
	if err != nil {
		return mapError(err)
	}

	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeeStatus(row rowScanner) (*domain.FeeStatusEntry, error) {
	var (
		entry         domain.FeeStatusEntry
		paymentDate   null.Time
		reference     null.String
		transactionID null.String
		receiptURL    null.String
	)

	err := row.Scan(
		&entry.PayerID,
		&entry.FeeID,
		&entry.Status,
		&paymentDate,
		&reference,
		&transactionID,
		&receiptURL,
		&entry.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	entry.PaymentDate = paymentDate.Ptr()
	entry.Reference = reference.Ptr()
	entry.TransactionID = transactionID.Ptr()
	entry.ReceiptURL = receiptURL.Ptr()
	return &entry, nil
}
