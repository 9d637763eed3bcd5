package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// SettlementStore implements repository.SettlementStore on a single
// PostgreSQL transaction per settlement.
type SettlementStore struct {
	db *sql.DB
}

// NewSettlementStore creates a new SettlementStore.
func NewSettlementStore(db *sql.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

// Settle creates the payment record, flips the payer's fee status to paid
// and closes the attempt. The fee status row is locked before anything is
// written, so two settlements for the same (payer, fee) serialize here and
// the second one finds the entry paid.
func (s *SettlementStore) Settle(ctx context.Context, record *domain.PaymentRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	txStatusRepo := NewFeeStatusRepositoryWithTx(tx)
	txPaymentRepo := NewPaymentRepositoryWithTx(tx)
	txAttemptRepo := NewAttemptRepositoryWithTx(tx)

	entry, err := txStatusRepo.lockEntry(ctx, record.PayerID, record.FeeID)
	if err != nil {
		return err
	}

	if entry.IsPaid() {
		if entry.Reference != nil && *entry.Reference == record.Reference {
			err = fmt.Errorf("%w: reference %s already settled", repository.ErrDuplicate, record.Reference)
			return err
		}
		err = repository.ErrAlreadyPaid
		return err
	}

	if err = txPaymentRepo.Create(ctx, record); err != nil {
		return err
	}

	if err = txStatusRepo.markPaid(ctx, record); err != nil {
		return err
	}

	if err = txAttemptRepo.close(ctx, record.Reference, domain.AttemptSettled); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return mapError(err)
	}

	return nil
}

// ApplyStatus marks the fee status entry paid for an already recorded payment.
func (s *SettlementStore) ApplyStatus(ctx context.Context, record *domain.PaymentRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txStatusRepo := NewFeeStatusRepositoryWithTx(tx)

	entry, err := txStatusRepo.lockEntry(ctx, record.PayerID, record.FeeID)
	if err != nil {
		return err
	}

	if entry.IsPaid() {
		_ = tx.Rollback()
		if entry.Reference != nil && *entry.Reference == record.Reference {
			return nil
		}
		return repository.ErrAlreadyPaid
	}

	if err = txStatusRepo.markPaid(ctx, record); err != nil {
		return err
	}

	if err = NewAttemptRepositoryWithTx(tx).close(ctx, record.Reference, domain.AttemptSettled); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return mapError(err)
	}

	return nil
}
