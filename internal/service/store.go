package service

import (
	"errors"
	"fmt"

	"schoolfees/internal/repository"
)

// storeError maps a repository failure onto the service taxonomy.
func storeError(err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if errors.Is(err, repository.ErrInvalidInput) {
		return fmt.Errorf("%w: malformed value", ErrValidation)
	}
	return err
}

// isNotFound reports whether a lookup found nothing. A malformed id cannot
// match any row, so it counts as missing.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput)
}
