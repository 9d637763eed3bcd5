package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
	"schoolfees/internal/repository"
)

// PaymentConfig holds provider settings the initiator needs.
type PaymentConfig struct {
	PublicKey   string
	Currency    string
	CallbackURL string
}

// PaymentService starts payments and serves payment records.
type PaymentService struct {
	feeRepo     repository.FeeRepository
	statusRepo  repository.FeeStatusRepository
	attemptRepo repository.AttemptRepository
	paymentRepo repository.PaymentRepository
	provider    PaymentProvider
	cfg         PaymentConfig
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	feeRepo repository.FeeRepository,
	statusRepo repository.FeeStatusRepository,
	attemptRepo repository.AttemptRepository,
	paymentRepo repository.PaymentRepository,
	provider PaymentProvider,
	cfg PaymentConfig,
) *PaymentService {
	return &PaymentService{
		feeRepo:     feeRepo,
		statusRepo:  statusRepo,
		attemptRepo: attemptRepo,
		paymentRepo: paymentRepo,
		provider:    provider,
		cfg:         cfg,
		now:         time.Now,
	}
}

// InitiatePaymentRequest contains the parameters for starting a payment.
type InitiatePaymentRequest struct {
	FeeID  string
	Hosted bool
}

// PaymentParams are the inline widget parameters for one payment.
type PaymentParams struct {
	PublicKey        string
	Email            string
	AmountMinor      int64
	Currency         string
	Reference        string
	Metadata         paystack.Metadata
	AuthorizationURL string
	AccessCode       string
}

// NewReference returns a fresh payment reference: FEE-<unix seconds>-<12 hex>.
// The random part comes from a version 4 UUID.
func NewReference(now time.Time) string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "FEE-" + strconv.FormatInt(now.Unix(), 10) + "-" + random[:12]
}

// InitiatePayment validates the fee, hands out a reference and records an
// open attempt. With Hosted set the provider checkout URL is returned too.
func (s *PaymentService) InitiatePayment(ctx context.Context, payer domain.Identity, req InitiatePaymentRequest) (*PaymentParams, error) {
	if payer.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if req.FeeID == "" {
		return nil, ErrInvalidFeeID
	}

	fee, err := s.feeRepo.GetByID(ctx, req.FeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrFeeNotFound, req.FeeID)
		}
		return nil, storeError(err)
	}

	if !fee.IsPayable() {
		return nil, ErrFeeNotPayable
	}

	entry, err := s.statusRepo.Get(ctx, payer.UserID, fee.ID)
	if err != nil {
		return nil, storeError(err)
	}
	if entry.IsPaid() {
		return nil, ErrFeeAlreadyPaid
	}

	if s.cfg.PublicKey == "" {
		return nil, fmt.Errorf("%w: public key not configured", ErrProviderInit)
	}

	currency := fee.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	params := &PaymentParams{
		PublicKey:   s.cfg.PublicKey,
		Email:       payer.Email,
		AmountMinor: domain.ToMinorUnits(fee.Amount),
		Currency:    currency,
		Reference:   NewReference(s.now()),
		Metadata: paystack.Metadata{CustomFields: []paystack.CustomField{
			{DisplayName: "Student Name", VariableName: "student_name", Value: payer.Name},
			{DisplayName: "Fee Type", VariableName: "fee_type", Value: fee.Name},
			{DisplayName: "Student ID", VariableName: "student_id", Value: payer.UserID},
		}},
	}

	if req.Hosted {
		res, err := s.provider.Initialize(ctx, paystack.InitializeRequest{
			Email:       params.Email,
			AmountMinor: params.AmountMinor,
			Currency:    params.Currency,
			Reference:   params.Reference,
			CallbackURL: s.cfg.CallbackURL,
			Metadata:    params.Metadata,
		})
		if err != nil {
			log.Printf("[PAYMENT] initialize failed Reference=%s: %v", params.Reference, err)
			return nil, fmt.Errorf("%w: %v", ErrProviderInit, err)
		}
		params.AuthorizationURL = res.AuthorizationURL
		params.AccessCode = res.AccessCode
	}

	attempt := &domain.PaymentAttempt{
		Reference:   params.Reference,
		PayerID:     payer.UserID,
		FeeID:       fee.ID,
		AmountMinor: params.AmountMinor,
		Currency:    params.Currency,
		State:       domain.AttemptOpen,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, storeError(err)
	}

	log.Printf("[PAYMENT] Initiated Reference=%s, PayerID=%s, FeeID=%s, Amount=%d %s",
		params.Reference, payer.UserID, fee.ID, params.AmountMinor, params.Currency)

	return params, nil
}

// Abandon marks the caller's open attempt abandoned. No payment record is
// written. Abandoning an already abandoned attempt is a no-op.
func (s *PaymentService) Abandon(ctx context.Context, payer domain.Identity, reference string) error {
	if payer.UserID == "" {
		return ErrUnauthenticated
	}
	if reference == "" {
		return ErrInvalidReference
	}

	attempt, err := s.attemptRepo.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return ErrAttemptNotFound
		}
		return storeError(err)
	}

	if attempt.PayerID != payer.UserID {
		return ErrForbidden
	}

	switch attempt.State {
	case domain.AttemptAbandoned:
		return nil
	case domain.AttemptOpen:
	default:
		return ErrAttemptClosed
	}

	err = s.attemptRepo.Transition(ctx, reference, domain.AttemptOpen, domain.AttemptAbandoned)
	if errors.Is(err, repository.ErrStateConflict) {
		return ErrAttemptClosed
	}
	if err != nil {
		return storeError(err)
	}

	log.Printf("[PAYMENT] Abandoned Reference=%s, PayerID=%s", reference, payer.UserID)
	return nil
}

// GetPayment retrieves a payment record. Payers see only their own records.
func (s *PaymentService) GetPayment(ctx context.Context, caller domain.Identity, paymentID string) (*domain.PaymentRecord, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if paymentID == "" {
		return nil, ErrPaymentNotFound
	}

	record, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, storeError(err)
	}

	if record.PayerID != caller.UserID && !caller.IsAdmin() {
		// Another payer's record is reported as missing.
		return nil, ErrPaymentNotFound
	}

	return record, nil
}

// ListMyPayments returns the caller's payment records, newest first.
func (s *PaymentService) ListMyPayments(ctx context.Context, caller domain.Identity) ([]*domain.PaymentRecord, error) {
	if caller.UserID == "" {
		return nil, ErrUnauthenticated
	}

	records, err := s.paymentRepo.ListByPayer(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return records, nil
}

// ListAllPayments returns every payment record. Administrators only.
func (s *PaymentService) ListAllPayments(ctx context.Context, caller domain.Identity) ([]*domain.PaymentRecord, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	records, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return records, nil
}
