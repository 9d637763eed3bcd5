package postgres

import (
	"context"
	"database/sql"

	"schoolfees/internal/domain"
)

// WebhookEventRepository implements repository.WebhookEventRepository.
type WebhookEventRepository struct {
	q Querier
}

// NewWebhookEventRepository creates a new webhook event repository.
func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{q: db}
}

// Create persists the event, deduplicating on (provider, provider_event_id).
func (r *WebhookEventRepository) Create(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (id, provider, provider_event_id, event_type, payload, signature_valid)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
		RETURNING created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.EventType,
		string(event.Payload),
		event.SignatureValid,
	).Scan(&event.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// MarkProcessed records the processing outcome of an event.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id string, processingError string) error {
	query := `UPDATE webhook_events SET processed_at = now(), processing_error = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, processingError)
	if err != nil {
		return mapError(err)
	}
	return requireRow(result)
}
