package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
	"schoolfees/internal/telemetry"
)

// VerifiedPayment is a provider transaction confirmed successful for a
// reference. Only Verifier produces one, and settlement accepts nothing else.
type VerifiedPayment struct {
	tx         paystack.Transaction
	verifiedAt time.Time
}

func (v *VerifiedPayment) Reference() string     { return v.tx.Reference }
func (v *VerifiedPayment) TransactionID() string { return v.tx.ID }
func (v *VerifiedPayment) AmountMinor() int64    { return v.tx.AmountMinor }
func (v *VerifiedPayment) Currency() string      { return v.tx.Currency }

// PaidAt returns the provider's payment time, or the verification time when
// the provider did not report one.
func (v *VerifiedPayment) PaidAt() time.Time {
	if v.tx.PaidAt.IsZero() {
		return v.verifiedAt
	}
	return v.tx.PaidAt
}

// ReceiptURL returns the provider receipt URL, or nil when absent.
func (v *VerifiedPayment) ReceiptURL() *string {
	if v.tx.ReceiptURL == "" {
		return nil
	}
	url := v.tx.ReceiptURL
	return &url
}

// Authorization returns the card/channel details, or nil when absent.
func (v *VerifiedPayment) Authorization() *domain.Authorization {
	a := v.tx.Authorization
	if a == nil {
		return nil
	}
	auth := domain.Authorization{
		AuthorizationCode: a.AuthorizationCode,
		CardType:          a.CardType,
		Last4:             a.Last4,
		Bank:              a.Bank,
		Channel:           a.Channel,
	}
	if auth.IsZero() {
		return nil
	}
	return &auth
}

func (v *VerifiedPayment) valid() bool {
	return v != nil && v.tx.Status == paystack.StatusSuccess && v.tx.Reference != ""
}

// Verifier asks the provider for the authoritative status of a reference.
type Verifier struct {
	provider  PaymentProvider
	telemetry Telemetry
	timeout   time.Duration
	now       func() time.Time
}

// NewVerifier creates a new Verifier. Each call is bounded by timeout.
func NewVerifier(provider PaymentProvider, tel Telemetry, timeout time.Duration) *Verifier {
	return &Verifier{
		provider:  provider,
		telemetry: tel,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Verify returns the verified payment for reference. Every failure satisfies
// errors.Is(err, ErrUnverified); the wrapped kind tells the causes apart.
// Verifying the same reference again asks the provider again and yields the
// same outcome for a settled transaction.
func (v *Verifier) Verify(ctx context.Context, reference string) (*VerifiedPayment, error) {
	if reference == "" {
		return nil, ErrInvalidReference
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	tx, err := v.provider.Verify(ctx, reference)
	if err != nil {
		verr := classifyVerifyError(err)
		v.recordFailure(reference, verr, err)
		return nil, verr
	}

	if !tx.Succeeded() {
		verr := &UnsuccessfulPaymentError{Reference: reference, Status: tx.Status}
		v.recordFailure(reference, verr, nil)
		return nil, verr
	}

	if tx.Reference != reference {
		verr := fmt.Errorf("%w: provider returned reference %q", ErrVerificationUnavailable, tx.Reference)
		v.recordFailure(reference, verr, nil)
		return nil, verr
	}

	log.Printf("[VERIFY] Reference=%s, TransactionID=%s, Amount=%d, Currency=%s", reference, tx.ID, tx.AmountMinor, tx.Currency)

	return &VerifiedPayment{tx: *tx, verifiedAt: v.now()}, nil
}

func classifyVerifyError(err error) error {
	switch {
	case errors.Is(err, paystack.ErrTransactionNotFound):
		return fmt.Errorf("%w: %v", ErrTransactionNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
}

func verifyCause(err error) string {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, ErrPaymentNotSuccessful):
		return "not_successful"
	case errors.Is(err, ErrVerificationUnavailable):
		return "unavailable"
	}
	return "unknown"
}

func (v *Verifier) recordFailure(reference string, verr, cause error) {
	attrs := map[string]interface{}{
		"reference": reference,
		"cause":     verifyCause(verr),
	}
	var unsuccessful *UnsuccessfulPaymentError
	if errors.As(verr, &unsuccessful) {
		attrs["providerStatus"] = unsuccessful.Status
	}
	if cause != nil {
		attrs["detail"] = cause.Error()
	}

	if v.telemetry != nil {
		v.telemetry.Event(telemetry.EventPaymentVerificationFailed, attrs)
	} else {
		log.Printf("[VERIFY] failed Reference=%s, Cause=%s: %v", reference, attrs["cause"], verr)
	}
}
