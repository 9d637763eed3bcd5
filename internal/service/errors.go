package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFeeID is returned when fee ID is empty.
	ErrInvalidFeeID = fmt.Errorf("%w: invalid fee id", ErrValidation)

	// ErrInvalidReference is returned when a payment reference is empty.
	ErrInvalidReference = fmt.Errorf("%w: invalid reference", ErrValidation)

	// ErrInvalidFeeStatus is returned for a status other than active or inactive.
	ErrInvalidFeeStatus = fmt.Errorf("%w: invalid fee status", ErrValidation)

	// ErrInvalidFeeAmount is returned when a fee amount is not positive or has
	// more than two decimal places.
	ErrInvalidFeeAmount = fmt.Errorf("%w: fee amount must be positive with at most two decimal places", ErrValidation)

	// ErrFeeNotPayable is returned when a fee is inactive or has no positive amount.
	ErrFeeNotPayable = fmt.Errorf("%w: fee is not payable", ErrValidation)

	// ErrFeeNotFound is returned when a fee does not exist.
	ErrFeeNotFound = errors.New("fee not found")

	// ErrPaymentNotFound is returned when a payment record does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAttemptNotFound is returned when no attempt was issued for a reference.
	ErrAttemptNotFound = errors.New("payment attempt not found")

	// ErrAttemptClosed is returned when abandoning an attempt that already settled or failed.
	ErrAttemptClosed = errors.New("payment attempt already closed")

	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller may not act on a resource.
	ErrForbidden = errors.New("forbidden")

	// ErrProviderInit is returned when a payment cannot be started with the provider.
	ErrProviderInit = errors.New("payment provider initialization failed")

	// ErrUnverified is returned whenever a payment could not be confirmed
	// with the provider. Its message is safe to show to payers.
	ErrUnverified = errors.New("could not confirm payment, contact support")

	// ErrTransactionNotFound is returned when the provider does not know the reference.
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrUnverified)

	// ErrPaymentNotSuccessful is returned when the provider reports a status other than success.
	ErrPaymentNotSuccessful = fmt.Errorf("%w: payment not successful", ErrUnverified)

	// ErrVerificationUnavailable is returned on provider network failure or timeout.
	ErrVerificationUnavailable = fmt.Errorf("%w: verification unavailable", ErrUnverified)

	// ErrStoreUnavailable is returned when the store cannot be reached. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable, try again")

	// ErrMalformedProviderData is returned when verified data does not match
	// the issued attempt. Not retryable; an operator is alerted.
	ErrMalformedProviderData = errors.New("malformed provider data")

	// ErrFeeAlreadyPaid is returned when the payer's fee is already paid.
	ErrFeeAlreadyPaid = errors.New("fee already paid")

	// ErrStatusPending is returned when the payment record exists but the fee
	// status could not be updated yet.
	ErrStatusPending = errors.New("payment recorded, status pending")

	// ErrSettlementInProgress is returned when another settlement holds the
	// lock for the same payer and fee.
	ErrSettlementInProgress = errors.New("settlement in progress")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrBootstrapCompleted is returned once the initial administrator exists.
	ErrBootstrapCompleted = errors.New("initial administrator already registered")

	// ErrEmailTaken is returned when an email address is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// UnsuccessfulPaymentError carries the provider status of a payment that
// did not succeed.
type UnsuccessfulPaymentError struct {
	Reference string
	Status    string
}

func (e *UnsuccessfulPaymentError) Error() string {
	return fmt.Sprintf("%v: reference %s has status %q", ErrPaymentNotSuccessful, e.Reference, e.Status)
}

func (e *UnsuccessfulPaymentError) Unwrap() error {
	return ErrPaymentNotSuccessful
}
