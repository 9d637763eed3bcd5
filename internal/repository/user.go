package repository

import (
	"context"

	"schoolfees/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)
}

// BootstrapRepository guards initial administrator registration.
type BootstrapRepository interface {
	// Get returns the bootstrap marker, or nil if bootstrap has not happened.
	Get(ctx context.Context) (*domain.BootstrapMarker, error)

	// Complete creates the admin user and the marker in one transaction.
	// Returns ErrDuplicate if the marker already exists.
	Complete(ctx context.Context, admin *domain.User) error
}
