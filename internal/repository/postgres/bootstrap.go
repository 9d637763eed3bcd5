package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// BootstrapRepository implements repository.BootstrapRepository.
// The bootstrap_marker table holds at most one row.
type BootstrapRepository struct {
	db *sql.DB
}

// NewBootstrapRepository creates a new BootstrapRepository.
func NewBootstrapRepository(db *sql.DB) *BootstrapRepository {
	return &BootstrapRepository{db: db}
}

// Get returns the bootstrap marker, or nil if bootstrap has not happened.
func (r *BootstrapRepository) Get(ctx context.Context) (*domain.BootstrapMarker, error) {
	query := `SELECT admin_id, completed_at FROM bootstrap_marker`

	var marker domain.BootstrapMarker
	err := r.db.QueryRowContext(ctx, query).Scan(&marker.AdminID, &marker.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &marker, nil
}

// Complete creates the admin user and the marker in one transaction.
func (r *BootstrapRepository) Complete(ctx context.Context, admin *domain.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Inserting the marker first serializes concurrent bootstrap attempts
	// on its primary key before any user row is written.
	_, err = tx.ExecContext(ctx, `INSERT INTO bootstrap_marker (admin_id) VALUES ($1)`, admin.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: bootstrap already completed", repository.ErrDuplicate)
		}
		return mapError(err)
	}

	if err = NewUserRepositoryWithTx(tx).Create(ctx, admin); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}
