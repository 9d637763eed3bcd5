package service

import (
	"context"
	"errors"
	"log"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// ConfirmationService runs verify-then-settle for a reference. The client
// callback and the provider webhook share it, so either may arrive first
// and both may arrive more than once.
type ConfirmationService struct {
	attemptRepo repository.AttemptRepository
	paymentRepo repository.PaymentRepository
	verifier    *Verifier
	settlement  *SettlementService
}

// NewConfirmationService creates a new ConfirmationService.
func NewConfirmationService(
	attemptRepo repository.AttemptRepository,
	paymentRepo repository.PaymentRepository,
	verifier *Verifier,
	settlement *SettlementService,
) *ConfirmationService {
	return &ConfirmationService{
		attemptRepo: attemptRepo,
		paymentRepo: paymentRepo,
		verifier:    verifier,
		settlement:  settlement,
	}
}

// Confirm verifies and settles the caller's payment.
func (s *ConfirmationService) Confirm(ctx context.Context, payer domain.Identity, reference string) (*domain.PaymentRecord, error) {
	if payer.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if reference == "" {
		return nil, ErrInvalidReference
	}

	attempt, err := s.attemptRepo.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, storeError(err)
	}

	if attempt.PayerID != payer.UserID && !payer.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.confirm(ctx, reference)
}

// ConfirmFromWebhook verifies and settles a reference reported by the provider.
func (s *ConfirmationService) ConfirmFromWebhook(ctx context.Context, reference string) (*domain.PaymentRecord, error) {
	if reference == "" {
		return nil, ErrInvalidReference
	}
	return s.confirm(ctx, reference)
}

func (s *ConfirmationService) confirm(ctx context.Context, reference string) (*domain.PaymentRecord, error) {
	payment, err := s.verifier.Verify(ctx, reference)
	if err != nil {
		var unsuccessful *UnsuccessfulPaymentError
		if errors.As(err, &unsuccessful) && providerFailed(unsuccessful.Status) {
			s.closeAttempt(ctx, reference, domain.AttemptFailed)
		}
		return nil, err
	}

	return s.settlement.Settle(ctx, payment)
}

func (s *ConfirmationService) closeAttempt(ctx context.Context, reference string, to domain.AttemptState) {
	err := s.attemptRepo.Transition(ctx, reference, domain.AttemptOpen, to)
	if err != nil && !errors.Is(err, repository.ErrStateConflict) && !isNotFound(err) {
		log.Printf("[CONFIRM] could not close attempt Reference=%s, State=%s: %v", reference, to, err)
	}
}

// providerFailed reports whether a provider status is final and unsuccessful.
func providerFailed(status string) bool {
	switch status {
	case "failed", "reversed":
		return true
	}
	return false
}
