package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"schoolfees/internal/repository"
	"schoolfees/internal/service"
)

// malformedID is what the postgres layer returns for an id that is not a UUID.
var malformedID = fmt.Errorf("%w: pq: invalid input syntax for type uuid: \"abc\"", repository.ErrInvalidInput)

func TestInitiatePayment_MalformedFeeIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	h.fees.GetByIDError = malformedID

	_, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: "abc"})

	if !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound, got %v", err)
	}
	if n := h.ledger.CountAttempts(); n != 0 {
		t.Errorf("expected no attempt, got %d", n)
	}
}

func TestGetPayment_MalformedIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	h.ledger.Payments.GetByIDError = malformedID

	if _, err := h.payments.GetPayment(context.Background(), student, "abc"); !errors.Is(err, service.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestFeeAdmin_MalformedID(t *testing.T) {
	h := newHarness(t)
	h.fees.GetByIDError = malformedID
	h.fees.DeleteError = malformedID

	if _, err := h.feeSvc.GetFee(context.Background(), "abc"); !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound from GetFee, got %v", err)
	}
	if err := h.feeSvc.DeleteFee(context.Background(), admin, "abc"); !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound from DeleteFee, got %v", err)
	}
}

func TestCreateFee_RejectedValueIsValidationError(t *testing.T) {
	h := newHarness(t)
	h.fees.CreateError = fmt.Errorf("%w: pq: numeric field overflow", repository.ErrInvalidInput)

	_, err := h.feeSvc.CreateFee(context.Background(), admin, service.CreateFeeRequest{
		Name:    "Bus Levy",
		Amount:  decimal.NewFromInt(1000),
		DueDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})

	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if errors.Is(err, service.ErrStoreUnavailable) {
		t.Errorf("rejected value must not look like an outage: %v", err)
	}
}
