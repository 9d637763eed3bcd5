package repository

import (
	"context"

	"schoolfees/internal/domain"
)

// FeeRepository defines the persistence operations for fee definitions.
type FeeRepository interface {
	// Create persists a new fee definition.
	Create(ctx context.Context, fee *domain.FeeDefinition) error

	// GetByID retrieves a fee definition by ID.
	GetByID(ctx context.Context, id string) (*domain.FeeDefinition, error)

	// GetAll retrieves every fee definition.
	GetAll(ctx context.Context) ([]*domain.FeeDefinition, error)

	// UpdateStatus toggles a fee between active and inactive.
	UpdateStatus(ctx context.Context, id string, status domain.FeeStatus) error

	// Delete removes a fee definition.
	Delete(ctx context.Context, id string) error
}

// FeeStatusRepository reads payer fee status entries.
type FeeStatusRepository interface {
	// Get returns the entry for (payerID, feeID).
	// Returns nil if the payer has no entry for that fee yet.
	Get(ctx context.Context, payerID, feeID string) (*domain.FeeStatusEntry, error)

	// ListByPayer returns the payer's entries keyed by fee ID.
	ListByPayer(ctx context.Context, payerID string) (map[string]*domain.FeeStatusEntry, error)
}
