package postgres

import (
	"context"
	"database/sql"

	"github.com/volatiletech/null/v8"

	"schoolfees/internal/domain"
)

// IssueRepository implements repository.IssueRepository.
type IssueRepository struct {
	q Querier
}

// NewIssueRepository creates a new settlement issue repository.
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{q: db}
}

// Create persists a new issue.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.SettlementIssue) error {
	query := `
		INSERT INTO settlement_issues (id, kind, reference, payer_id, fee_id, transaction_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		issue.ID,
		issue.Kind,
		issue.Reference,
		issue.PayerID,
		issue.FeeID,
		issue.TransactionID,
		issue.Detail,
	).Scan(&issue.CreatedAt)

	return mapError(err)
}

// ListOpen retrieves unresolved issues, oldest first.
func (r *IssueRepository) ListOpen(ctx context.Context) ([]*domain.SettlementIssue, error) {
	query := `
		SELECT id, kind, reference, payer_id, fee_id, transaction_id, detail, created_at, resolved_at
		FROM settlement_issues
		WHERE resolved_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var issues []*domain.SettlementIssue
	for rows.Next() {
		var (
			issue      domain.SettlementIssue
			resolvedAt null.Time
		)
		if err := rows.Scan(
			&issue.ID,
			&issue.Kind,
			&issue.Reference,
			&issue.PayerID,
			&issue.FeeID,
			&issue.TransactionID,
			&issue.Detail,
			&issue.CreatedAt,
			&resolvedAt,
		); err != nil {
			return nil, err
		}
		issue.ResolvedAt = resolvedAt.Ptr()
		issues = append(issues, &issue)
	}
	return issues, mapError(rows.Err())
}
