package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
	"schoolfees/internal/repository"
	"schoolfees/internal/telemetry"
)

// RejectedPayloadLimit caps how much of an unsigned webhook body is stored.
const RejectedPayloadLimit = 512

// ErrInvalidSignature is returned when a webhook signature does not match.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookResult describes what happened to a delivered webhook.
type WebhookResult struct {
	EventID   string
	EventType string
	Duplicate bool
	Record    *domain.PaymentRecord
	Err       error
}

// WebhookService accepts provider notifications.
type WebhookService struct {
	eventRepo    repository.WebhookEventRepository
	confirmation *ConfirmationService
	telemetry    Telemetry
	secret       string
}

// NewWebhookService creates a new WebhookService. secret is the provider
// secret key used to sign webhook bodies.
func NewWebhookService(eventRepo repository.WebhookEventRepository, confirmation *ConfirmationService, tel Telemetry, secret string) *WebhookService {
	return &WebhookService{
		eventRepo:    eventRepo,
		confirmation: confirmation,
		telemetry:    tel,
		secret:       secret,
	}
}

// Handle validates, stores and processes a raw webhook body. A returned
// error means the delivery was not accepted; processing failures after the
// event is stored are reported on the result instead.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	valid := paystack.ValidSignature(s.secret, body, signature)

	stored := &domain.WebhookEvent{
		ID:             uuid.New().String(),
		Provider:       paystack.Provider,
		SignatureValid: valid,
	}

	var event *paystack.Event
	var parseErr error
	if valid {
		stored.Payload = body
		event, parseErr = paystack.ParseEvent(body)
		if parseErr == nil {
			stored.EventType = event.Type
			stored.ProviderEventID = event.EventID()
		}
	} else {
		// Unsigned bodies are kept only as a short prefix.
		stored.Payload = rejectedPayload(body)
	}
	if !valid || parseErr != nil {
		// Rejected deliveries never occupy the dedup key of a real event.
		stored.ProviderEventID = "rejected:" + stored.ID
	}

	created, err := s.eventRepo.Create(ctx, stored)
	if err != nil {
		return nil, storeError(err)
	}

	if !valid {
		if s.telemetry != nil {
			s.telemetry.Event(telemetry.EventWebhookRejected, map[string]interface{}{"eventId": stored.ID, "bodyBytes": len(body)})
		}
		log.Printf("[WEBHOOK] rejected EventID=%s, BodyBytes=%d: invalid signature", stored.ID, len(body))
		return nil, ErrInvalidSignature
	}

	if parseErr != nil {
		s.markProcessed(ctx, stored.ID, parseErr)
		return nil, ErrValidation
	}

	result := &WebhookResult{EventID: stored.ID, EventType: event.Type}

	if !created {
		result.Duplicate = true
		log.Printf("[WEBHOOK] duplicate Event=%s, ProviderEventID=%s", event.Type, stored.ProviderEventID)
		return result, nil
	}

	if event.Type != paystack.EventChargeSuccess || event.Transaction == nil {
		s.markProcessed(ctx, stored.ID, nil)
		return result, nil
	}

	reference := event.Transaction.Reference
	record, err := s.confirmation.ConfirmFromWebhook(ctx, reference)
	result.Record = record
	result.Err = err

	s.markProcessed(ctx, stored.ID, err)
	log.Printf("[WEBHOOK] processed Event=%s, Reference=%s, Err=%v", event.Type, reference, err)

	return result, nil
}

func (s *WebhookService) markProcessed(ctx context.Context, id string, procErr error) {
	msg := ""
	if procErr != nil {
		msg = procErr.Error()
	}
	if err := s.eventRepo.MarkProcessed(ctx, id, msg); err != nil {
		log.Printf("[WEBHOOK] could not mark event processed ID=%s: %v", id, err)
	}
}

func rejectedPayload(body []byte) []byte {
	if len(body) > RejectedPayloadLimit {
		body = body[:RejectedPayloadLimit]
	}
	return []byte(strings.ToValidUTF8(string(body), ""))
}
