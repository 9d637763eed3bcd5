package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"schoolfees/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// constraintOneSuccessPerFee is the partial unique index allowing one
// success record per (payer, fee). Kept in sync with migrations.
const constraintOneSuccessPerFee = "payments_one_success_per_fee"

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505" && pqErr.Constraint == constraintOneSuccessPerFee:
			return fmt.Errorf("%w: %w", repository.ErrAlreadyPaid, err)
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %w", repository.ErrDuplicate, err)
		// data_exception: invalid uuid text, numeric overflow and the like.
		case pqErr.Code.Class() == "22":
			return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
		// connection_exception, insufficient_resources, operator intervention,
		// serialization_failure and deadlock_detected are all worth a retry.
		case pqErr.Code.Class() == "08",
			pqErr.Code.Class() == "53",
			pqErr.Code.Class() == "57",
			pqErr.Code == "40001",
			pqErr.Code == "40P01":
			return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", repository.ErrUnavailable, err)
	}

	return err
}
