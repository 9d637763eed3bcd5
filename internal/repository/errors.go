package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("entity already exists")

	// ErrAlreadyPaid is returned when a fee status entry is already paid.
	ErrAlreadyPaid = errors.New("fee already paid")

	// ErrStateConflict is returned when a conditional update finds an unexpected state.
	ErrStateConflict = errors.New("entity not in expected state")

	// ErrInvalidInput is returned when the store rejects a value as malformed,
	// such as an id that is not a UUID.
	ErrInvalidInput = errors.New("invalid input value")

	// ErrUnavailable is returned when the store cannot be reached. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
