package tests

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
	"schoolfees/internal/service"
)

var referencePattern = regexp.MustCompile(`^FEE-\d+-[0-9a-f]{12}$`)

func TestInitiatePayment_ReturnsWidgetParameters(t *testing.T) {
	h := newHarness(t)

	params, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if !referencePattern.MatchString(params.Reference) {
		t.Errorf("reference %q does not match FEE-<seconds>-<12 hex>", params.Reference)
	}
	if params.AmountMinor != 5000000 {
		t.Errorf("expected 5000000 minor units, got %d", params.AmountMinor)
	}
	if params.Currency != "NGN" || params.PublicKey != "pk_test_123" || params.Email != student.Email {
		t.Errorf("unexpected params: %+v", params)
	}
	if params.AuthorizationURL != "" {
		t.Errorf("inline payment should not carry a checkout url, got %q", params.AuthorizationURL)
	}

	fields := map[string]string{}
	for _, f := range params.Metadata.CustomFields {
		fields[f.VariableName] = f.Value
	}
	if fields["student_name"] != "Ada Obi" || fields["fee_type"] != "Term 1 Tuition" || fields["student_id"] != student.UserID {
		t.Errorf("unexpected metadata: %+v", fields)
	}

	if state := h.ledger.AttemptState(params.Reference); state != domain.AttemptOpen {
		t.Errorf("expected open attempt, got %q", state)
	}
	if n := h.provider.InitializeCallCount; n != 0 {
		t.Errorf("expected no initialize call, got %d", n)
	}
}

func TestInitiatePayment_FreshReferenceEachTime(t *testing.T) {
	h := newHarness(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		params, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID})
		if err != nil {
			t.Fatalf("initiate %d failed: %v", i, err)
		}
		if seen[params.Reference] {
			t.Fatalf("reference %s handed out twice", params.Reference)
		}
		seen[params.Reference] = true
	}
}

func TestInitiatePayment_Hosted(t *testing.T) {
	h := newHarness(t)

	params, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID, Hosted: true})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if params.AuthorizationURL == "" || params.AccessCode == "" {
		t.Errorf("expected checkout url and access code, got %+v", params)
	}
	if n := h.provider.InitializeCallCount; n != 1 {
		t.Errorf("expected 1 initialize call, got %d", n)
	}
}

func TestInitiatePayment_HostedInitFailureRecordsNothing(t *testing.T) {
	h := newHarness(t)
	h.provider.InitializeError = errors.New("paystack: unavailable")

	_, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID, Hosted: true})

	if !errors.Is(err, service.ErrProviderInit) {
		t.Errorf("expected ErrProviderInit, got %v", err)
	}
	if n := h.ledger.CountAttempts(); n != 0 {
		t.Errorf("expected no attempts, got %d", n)
	}
}

func TestInitiatePayment_MissingPublicKey(t *testing.T) {
	h := newHarness(t)
	payments := service.NewPaymentService(h.fees, h.ledger.Statuses, h.ledger.Attempts, h.ledger.Payments, h.provider,
		service.PaymentConfig{Currency: "NGN"})

	_, err := payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID})

	if !errors.Is(err, service.ErrProviderInit) {
		t.Errorf("expected ErrProviderInit, got %v", err)
	}
	if n := h.ledger.CountAttempts(); n != 0 {
		t.Errorf("expected no attempts, got %d", n)
	}
}

func TestInitiatePayment_Rejections(t *testing.T) {
	testCases := []struct {
		name     string
		payer    domain.Identity
		feeID    string
		setup    func(h *harness)
		expected error
	}{
		{"unauthenticated", domain.Identity{}, termFeeID, nil, service.ErrUnauthenticated},
		{"empty fee id", student, "", nil, service.ErrInvalidFeeID},
		{"unknown fee", student, "fee-missing", nil, service.ErrFeeNotFound},
		{
			name: "inactive fee", payer: student, feeID: termFeeID,
			setup: func(h *harness) {
				h.fees.GetFee(termFeeID).Status = domain.FeeStatusInactive
			},
			expected: service.ErrFeeNotPayable,
		},
		{
			name: "zero amount", payer: student, feeID: "fee-free",
			setup: func(h *harness) {
				fee := termFee()
				fee.ID = "fee-free"
				fee.Amount = decimal.Zero
				h.fees.AddFee(fee)
			},
			expected: service.ErrFeeNotPayable,
		},
		{
			name: "already paid", payer: student, feeID: termFeeID,
			setup: func(h *harness) {
				h.ledger.MarkPaid(student.UserID, termFeeID, "FEE-1-000000000000")
			},
			expected: service.ErrFeeAlreadyPaid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			if tc.setup != nil {
				tc.setup(h)
			}

			params, err := h.payments.InitiatePayment(context.Background(), tc.payer, service.InitiatePaymentRequest{FeeID: tc.feeID})

			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
			if params != nil {
				t.Errorf("expected no params, got %+v", params)
			}
			if n := h.ledger.CountAttempts(); n != 0 {
				t.Errorf("expected no attempts, got %d", n)
			}
		})
	}
}

func TestInitiatePayment_InactiveFeeIsValidationError(t *testing.T) {
	h := newHarness(t)
	h.fees.GetFee(termFeeID).Status = domain.FeeStatusInactive

	_, err := h.payments.InitiatePayment(context.Background(), student, service.InitiatePaymentRequest{FeeID: termFeeID})

	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAbandon(t *testing.T) {
	h := newHarness(t)
	ref := "FEE-1700000000-cancel00001"
	h.openAttempt(ref, 0)

	if err := h.payments.Abandon(context.Background(), student, ref); err != nil {
		t.Fatalf("abandon failed: %v", err)
	}
	if state := h.ledger.AttemptState(ref); state != domain.AttemptAbandoned {
		t.Errorf("expected abandoned, got %s", state)
	}
	if n := h.ledger.CountPayments(); n != 0 {
		t.Errorf("abandon must not write a record, got %d", n)
	}
	if err := h.payments.Abandon(context.Background(), student, ref); err != nil {
		t.Errorf("second abandon should be a no-op, got %v", err)
	}
}

func TestAbandon_Rejections(t *testing.T) {
	h := newHarness(t)
	open := "FEE-1700000000-cancel00002"
	settled := "FEE-1700000000-cancel00003"
	h.openAttempt(open, 0)
	h.openAttempt(settled, 0)
	h.paid(settled, "TXN-S")
	if _, err := h.confirmation.Confirm(context.Background(), student, settled); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	other := domain.Identity{UserID: "student-2", Role: domain.RoleStudent}

	if err := h.payments.Abandon(context.Background(), other, open); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := h.payments.Abandon(context.Background(), student, settled); !errors.Is(err, service.ErrAttemptClosed) {
		t.Errorf("expected ErrAttemptClosed, got %v", err)
	}
	if err := h.payments.Abandon(context.Background(), student, "FEE-0-unknown"); !errors.Is(err, service.ErrAttemptNotFound) {
		t.Errorf("expected ErrAttemptNotFound, got %v", err)
	}
	if err := h.payments.Abandon(context.Background(), student, ""); !errors.Is(err, service.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestPaymentRecords_Visibility(t *testing.T) {
	h := newHarness(t)
	ref := "FEE-1700000000-visible0001"
	h.openAttempt(ref, 0)
	h.paid(ref, "TXN-V")
	record, err := h.confirmation.Confirm(context.Background(), student, ref)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	other := domain.Identity{UserID: "student-2", Role: domain.RoleStudent}

	if _, err := h.payments.GetPayment(context.Background(), other, record.ID); !errors.Is(err, service.ErrPaymentNotFound) {
		t.Errorf("expected another payer's record to be not found, got %v", err)
	}
	if got, err := h.payments.GetPayment(context.Background(), student, record.ID); err != nil || got.ID != record.ID {
		t.Errorf("expected owner to read record, got %v", err)
	}
	if _, err := h.payments.GetPayment(context.Background(), admin, record.ID); err != nil {
		t.Errorf("expected admin to read record, got %v", err)
	}

	mine, err := h.payments.ListMyPayments(context.Background(), student)
	if err != nil || len(mine) != 1 {
		t.Errorf("expected 1 own record, got %d (%v)", len(mine), err)
	}
	theirs, err := h.payments.ListMyPayments(context.Background(), other)
	if err != nil || len(theirs) != 0 {
		t.Errorf("expected 0 records for other payer, got %d (%v)", len(theirs), err)
	}

	if _, err := h.payments.ListAllPayments(context.Background(), student); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	all, err := h.payments.ListAllPayments(context.Background(), admin)
	if err != nil || len(all) != 1 {
		t.Errorf("expected 1 record for admin, got %d (%v)", len(all), err)
	}
}
