package postgres

import (
	"context"
	"database/sql"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// FeeRepository is a PostgreSQL implementation of repository.FeeRepository.
type FeeRepository struct {
	q Querier
}

// NewFeeRepository creates a new PostgreSQL fee repository.
func NewFeeRepository(db *sql.DB) *FeeRepository {
	return &FeeRepository{q: db}
}

const feeColumns = `id, name, description, amount, currency, due_date, category, status, created_at`

// Create persists a new fee definition.
func (r *FeeRepository) Create(ctx context.Context, fee *domain.FeeDefinition) error {
	query := `
		INSERT INTO fees (id, name, description, amount, currency, due_date, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		fee.ID,
		fee.Name,
		fee.Description,
		fee.Amount,
		fee.Currency,
		fee.DueDate,
		fee.Category,
		fee.Status,
	).Scan(&fee.CreatedAt)

	return mapError(err)
}

// GetByID retrieves a fee definition by ID.
func (r *FeeRepository) GetByID(ctx context.Context, id string) (*domain.FeeDefinition, error) {
	query := `SELECT ` + feeColumns + ` FROM fees WHERE id = $1`

	var fee domain.FeeDefinition
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&fee.ID,
		&fee.Name,
		&fee.Description,
		&fee.Amount,
		&fee.Currency,
		&fee.DueDate,
		&fee.Category,
		&fee.Status,
		&fee.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &fee, nil
}

// GetAll retrieves every fee definition, soonest due first.
func (r *FeeRepository) GetAll(ctx context.Context) ([]*domain.FeeDefinition, error) {
	query := `SELECT ` + feeColumns + ` FROM fees ORDER BY due_date ASC, name ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var fees []*domain.FeeDefinition
	for rows.Next() {
		var fee domain.FeeDefinition
		if err := rows.Scan(
			&fee.ID,
			&fee.Name,
			&fee.Description,
			&fee.Amount,
			&fee.Currency,
			&fee.DueDate,
			&fee.Category,
			&fee.Status,
			&fee.CreatedAt,
		); err != nil {
			return nil, err
		}
		fees = append(fees, &fee)
	}

	return fees, mapError(rows.Err())
}

// UpdateStatus toggles a fee between active and inactive.
func (r *FeeRepository) UpdateStatus(ctx context.Context, id string, status domain.FeeStatus) error {
	query := `UPDATE fees SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return mapError(err)
	}

	return requireRow(result)
}

// Delete removes a fee definition. Payment records keep their copy of the
// fee name, so history survives deletion.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM fees WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return requireRow(result)
}

// requireRow returns ErrNotFound when a statement touched no rows.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
