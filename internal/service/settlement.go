package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolfees/internal/domain"
	internalRedis "schoolfees/internal/redis"
	"schoolfees/internal/repository"
	"schoolfees/internal/telemetry"
)

// SettlementService turns verified payments into payment records and paid
// fee status entries.
type SettlementService struct {
	store        repository.SettlementStore
	paymentRepo  repository.PaymentRepository
	attemptRepo  repository.AttemptRepository
	statusRepo   repository.FeeStatusRepository
	feeRepo      repository.FeeRepository
	userRepo     repository.UserRepository
	issueRepo    repository.IssueRepository
	lockStore    internalRedis.LockStoreInterface
	notification *NotificationService
	telemetry    Telemetry
	lockTTL      time.Duration
}

// SettlementDeps contains the dependencies of a SettlementService.
type SettlementDeps struct {
	Store        repository.SettlementStore
	PaymentRepo  repository.PaymentRepository
	AttemptRepo  repository.AttemptRepository
	StatusRepo   repository.FeeStatusRepository
	FeeRepo      repository.FeeRepository
	UserRepo     repository.UserRepository
	IssueRepo    repository.IssueRepository
	LockStore    internalRedis.LockStoreInterface
	Notification *NotificationService
	Telemetry    Telemetry
	LockTTL      time.Duration
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(deps SettlementDeps) *SettlementService {
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SettlementService{
		store:        deps.Store,
		paymentRepo:  deps.PaymentRepo,
		attemptRepo:  deps.AttemptRepo,
		statusRepo:   deps.StatusRepo,
		feeRepo:      deps.FeeRepo,
		userRepo:     deps.UserRepo,
		issueRepo:    deps.IssueRepo,
		lockStore:    deps.LockStore,
		notification: deps.Notification,
		telemetry:    deps.Telemetry,
		lockTTL:      ttl,
	}
}

// Settle records a verified payment. It is idempotent per reference: a
// reference that already has a record returns that record.
//
// Errors: ErrStoreUnavailable (retry later), ErrMalformedProviderData and
// ErrFeeAlreadyPaid (recorded as settlement issues, operators alerted),
// ErrSettlementInProgress (another settlement holds the lock) and
// ErrStatusPending, returned together with the record when the record
// exists but the fee status could not be applied yet.
func (s *SettlementService) Settle(ctx context.Context, payment *VerifiedPayment) (*domain.PaymentRecord, error) {
	if !payment.valid() {
		return nil, ErrUnverified
	}
	reference := payment.Reference()

	existing, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, s.fail(reference, storeError(err))
	}
	if existing != nil {
		return s.replay(ctx, existing)
	}

	attempt, err := s.attemptRepo.GetByReference(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return nil, s.malformed(ctx, payment, nil, "no attempt was issued for this reference")
		}
		return nil, s.fail(reference, storeError(err))
	}

	if detail := mismatch(attempt, payment); detail != "" {
		return nil, s.malformed(ctx, payment, attempt, detail)
	}

	release, err := s.lock(ctx, attempt)
	if err != nil {
		return nil, s.fail(reference, err)
	}
	defer release()

	record := s.buildRecord(ctx, attempt, payment)

	err = s.store.Settle(ctx, record)
	switch {
	case err == nil:
		log.Printf("[SETTLEMENT] Settled Reference=%s, PaymentID=%s, PayerID=%s, FeeID=%s",
			reference, record.ID, record.PayerID, record.FeeID)
		s.event(telemetry.EventPaymentSettled, record.Reference, map[string]interface{}{
			"payerId": record.PayerID,
			"feeId":   record.FeeID,
			"amount":  payment.AmountMinor(),
		})
		s.notify(ctx, record)
		return record, nil

	case errors.Is(err, repository.ErrDuplicate):
		// Same reference settled concurrently.
		return s.reread(ctx, reference, err)

	case errors.Is(err, repository.ErrAlreadyPaid):
		return nil, s.duplicatePayment(ctx, attempt, payment)

	case errors.Is(err, repository.ErrUnavailable):
		// The commit may or may not have happened.
		return s.reread(ctx, reference, err)
	}

	return nil, s.fail(reference, err)
}

// Repair applies the fee status for a record whose status update was lost.
func (s *SettlementService) Repair(ctx context.Context, record *domain.PaymentRecord) error {
	err := s.store.ApplyStatus(ctx, record)
	switch {
	case err == nil:
		log.Printf("[SETTLEMENT] Repaired Reference=%s, PayerID=%s, FeeID=%s", record.Reference, record.PayerID, record.FeeID)
		return nil
	case errors.Is(err, repository.ErrAlreadyPaid):
		s.recordIssue(ctx, &domain.SettlementIssue{
			Kind:          domain.IssueDuplicatePayment,
			Reference:     record.Reference,
			PayerID:       record.PayerID,
			FeeID:         record.FeeID,
			TransactionID: record.TransactionID,
			Detail:        "record exists but fee is paid under another reference",
		})
		return ErrFeeAlreadyPaid
	}
	return storeError(err)
}

func (s *SettlementService) replay(ctx context.Context, record *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	entry, err := s.statusRepo.Get(ctx, record.PayerID, record.FeeID)
	if err == nil && entry.IsPaid() {
		return record, nil
	}

	if err := s.Repair(ctx, record); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			s.event(telemetry.EventSettlementFailed, record.Reference, map[string]interface{}{"cause": "status_pending"})
			return record, ErrStatusPending
		}
		return nil, err
	}

	return record, nil
}

func (s *SettlementService) reread(ctx context.Context, reference string, cause error) (*domain.PaymentRecord, error) {
	record, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, s.fail(reference, storeError(err))
	}
	if record == nil {
		return nil, s.fail(reference, storeError(cause))
	}
	return s.replay(ctx, record)
}

func (s *SettlementService) lock(ctx context.Context, attempt *domain.PaymentAttempt) (func(), error) {
	noop := func() {}
	if s.lockStore == nil {
		return noop, nil
	}

	token, ok, err := s.lockStore.AcquireSettlementLock(ctx, attempt.PayerID, attempt.FeeID, s.lockTTL)
	if err != nil {
		// The row lock in the store still serializes settlements.
		log.Printf("[SETTLEMENT] lock unavailable, continuing without it PayerID=%s, FeeID=%s: %v",
			attempt.PayerID, attempt.FeeID, err)
		return noop, nil
	}
	if !ok {
		return noop, ErrSettlementInProgress
	}

	return func() {
		if err := s.lockStore.ReleaseSettlementLock(context.WithoutCancel(ctx), attempt.PayerID, attempt.FeeID, token); err != nil {
			log.Printf("[SETTLEMENT] lock release failed PayerID=%s, FeeID=%s: %v", attempt.PayerID, attempt.FeeID, err)
		}
	}, nil
}

func (s *SettlementService) buildRecord(ctx context.Context, attempt *domain.PaymentAttempt, payment *VerifiedPayment) *domain.PaymentRecord {
	record := &domain.PaymentRecord{
		ID:            uuid.New().String(),
		PayerID:       attempt.PayerID,
		FeeID:         attempt.FeeID,
		FeeName:       attempt.FeeID,
		Amount:        domain.FromMinorUnits(payment.AmountMinor()),
		Currency:      strings.ToUpper(payment.Currency()),
		Reference:     payment.Reference(),
		Status:        domain.PaymentStatusSuccess,
		TransactionID: payment.TransactionID(),
		PaymentMethod: domain.PaymentMethodPaystack,
		ReceiptURL:    payment.ReceiptURL(),
		Authorization: payment.Authorization(),
		PaidAt:        payment.PaidAt(),
	}

	if fee, err := s.feeRepo.GetByID(ctx, attempt.FeeID); err == nil {
		record.FeeName = fee.Name
	} else {
		log.Printf("[SETTLEMENT] fee lookup failed FeeID=%s: %v", attempt.FeeID, err)
	}

	if user, err := s.userRepo.GetByID(ctx, attempt.PayerID); err == nil {
		record.PayerName = user.Name
	} else {
		log.Printf("[SETTLEMENT] payer lookup failed PayerID=%s: %v", attempt.PayerID, err)
	}

	return record
}

// mismatch reports how the verified payment differs from the attempt, or "".
func mismatch(attempt *domain.PaymentAttempt, payment *VerifiedPayment) string {
	if attempt.Reference != payment.Reference() {
		return fmt.Sprintf("reference %q does not match attempt %q", payment.Reference(), attempt.Reference)
	}
	if attempt.AmountMinor != payment.AmountMinor() {
		return fmt.Sprintf("amount %d does not match attempt amount %d", payment.AmountMinor(), attempt.AmountMinor)
	}
	if !strings.EqualFold(attempt.Currency, payment.Currency()) {
		return fmt.Sprintf("currency %q does not match attempt currency %q", payment.Currency(), attempt.Currency)
	}
	return ""
}

func (s *SettlementService) malformed(ctx context.Context, payment *VerifiedPayment, attempt *domain.PaymentAttempt, detail string) error {
	issue := &domain.SettlementIssue{
		Kind:          domain.IssueMalformedData,
		Reference:     payment.Reference(),
		TransactionID: payment.TransactionID(),
		Detail:        detail,
	}
	if attempt != nil {
		issue.PayerID = attempt.PayerID
		issue.FeeID = attempt.FeeID
	}
	s.recordIssue(ctx, issue)

	err := fmt.Errorf("%w: %s", ErrMalformedProviderData, detail)
	s.alert("malformed provider data", err, payment.Reference())
	return err
}

func (s *SettlementService) duplicatePayment(ctx context.Context, attempt *domain.PaymentAttempt, payment *VerifiedPayment) error {
	// Only the caller that moves the attempt to duplicate records the issue.
	if attempt.State == domain.AttemptDuplicate {
		log.Printf("[SETTLEMENT] duplicate already recorded Reference=%s", attempt.Reference)
		return ErrFeeAlreadyPaid
	}

	err := s.attemptRepo.Transition(ctx, attempt.Reference, attempt.State, domain.AttemptDuplicate)
	if errors.Is(err, repository.ErrStateConflict) {
		current, getErr := s.attemptRepo.GetByReference(ctx, attempt.Reference)
		if getErr == nil && current.State == domain.AttemptDuplicate {
			log.Printf("[SETTLEMENT] duplicate already recorded Reference=%s", attempt.Reference)
			return ErrFeeAlreadyPaid
		}
	}
	if err != nil {
		log.Printf("[SETTLEMENT] could not mark attempt duplicate Reference=%s: %v", attempt.Reference, err)
	}

	s.recordIssue(ctx, &domain.SettlementIssue{
		Kind:          domain.IssueDuplicatePayment,
		Reference:     payment.Reference(),
		PayerID:       attempt.PayerID,
		FeeID:         attempt.FeeID,
		TransactionID: payment.TransactionID(),
		Detail:        fmt.Sprintf("verified payment of %d %s for a fee already paid", payment.AmountMinor(), payment.Currency()),
	})

	s.alert("duplicate payment captured for an already paid fee", ErrFeeAlreadyPaid, payment.Reference())
	return ErrFeeAlreadyPaid
}

func (s *SettlementService) recordIssue(ctx context.Context, issue *domain.SettlementIssue) {
	issue.ID = uuid.New().String()
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		log.Printf("[SETTLEMENT] could not record issue Kind=%s, Reference=%s: %v", issue.Kind, issue.Reference, err)
	}
}

func (s *SettlementService) notify(ctx context.Context, record *domain.PaymentRecord) {
	if s.notification == nil {
		return
	}
	_ = s.notification.NotifyPaymentReceived(ctx, record)
}

func (s *SettlementService) fail(reference string, err error) error {
	s.event(telemetry.EventSettlementFailed, reference, map[string]interface{}{"error": err.Error()})
	return err
}

func (s *SettlementService) event(name, reference string, attrs map[string]interface{}) {
	if s.telemetry == nil {
		return
	}
	attrs["reference"] = reference
	s.telemetry.Event(name, attrs)
}

func (s *SettlementService) alert(msg string, err error, reference string) {
	s.event(telemetry.EventSettlementFailed, reference, map[string]interface{}{"error": err.Error()})
	if s.telemetry == nil {
		log.Printf("[SETTLEMENT] ALERT %s Reference=%s: %v", msg, reference, err)
		return
	}
	s.telemetry.Alert(msg, err, map[string]interface{}{"reference": reference})
}

// OpenIssues returns unresolved settlement issues, oldest first.
func (s *SettlementService) OpenIssues(ctx context.Context) ([]*domain.SettlementIssue, error) {
	issues, err := s.issueRepo.ListOpen(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return issues, nil
}
