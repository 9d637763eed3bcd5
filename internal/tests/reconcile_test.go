package tests

import (
	"context"
	"testing"
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
)

func TestReconcile_SettlesMissedCallback(t *testing.T) {
	h := newHarness(t)
	ref := "FEE-1700000000-recon00001"
	h.openAttempt(ref, 10*time.Minute)
	h.paid(ref, "TXN-R1")

	report, err := h.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if report.Checked != 1 || report.Settled != 1 {
		t.Errorf("expected 1 checked and settled, got %+v", report)
	}
	if !h.ledger.Entry(student.UserID, termFeeID).IsPaid() {
		t.Error("expected fee paid")
	}
	if state := h.ledger.AttemptState(ref); state != domain.AttemptSettled {
		t.Errorf("expected settled attempt, got %s", state)
	}
}

func TestReconcile_ClosesAttempts(t *testing.T) {
	testCases := []struct {
		name     string
		age      time.Duration
		setup    func(h *harness, ref string)
		expected domain.AttemptState
	}{
		{
			name:     "provider failed",
			age:      10 * time.Minute,
			setup:    func(h *harness, ref string) { h.status(ref, "failed") },
			expected: domain.AttemptFailed,
		},
		{
			name:     "provider reversed",
			age:      10 * time.Minute,
			setup:    func(h *harness, ref string) { h.status(ref, "reversed") },
			expected: domain.AttemptFailed,
		},
		{
			name:     "never paid and expired",
			age:      2 * time.Hour,
			setup:    func(h *harness, ref string) {},
			expected: domain.AttemptAbandoned,
		},
		{
			name:     "provider abandoned and expired",
			age:      2 * time.Hour,
			setup:    func(h *harness, ref string) { h.status(ref, "abandoned") },
			expected: domain.AttemptAbandoned,
		},
		{
			name:     "never paid within window",
			age:      10 * time.Minute,
			setup:    func(h *harness, ref string) {},
			expected: domain.AttemptOpen,
		},
		{
			name:     "provider unreachable",
			age:      2 * time.Hour,
			setup:    func(h *harness, ref string) { h.provider.SetError(ref, paystack.ErrUnavailable) },
			expected: domain.AttemptOpen,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			ref := "FEE-1700000000-recon00002"
			h.openAttempt(ref, tc.age)
			tc.setup(h, ref)

			report, err := h.reconciler.RunOnce(context.Background())
			if err != nil {
				t.Fatalf("reconcile failed: %v", err)
			}

			if state := h.ledger.AttemptState(ref); state != tc.expected {
				t.Errorf("expected %s, got %s (report %+v)", tc.expected, state, report)
			}
			if report.Settled != 0 || h.ledger.CountPayments() != 0 {
				t.Errorf("expected nothing settled, got %+v", report)
			}
		})
	}
}

func TestReconcile_IgnoresAttemptsWithinGrace(t *testing.T) {
	h := newHarness(t)
	ref := "FEE-1700000000-recon00003"
	h.openAttempt(ref, 0)
	h.paid(ref, "TXN-R3")

	report, err := h.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if report.Checked != 0 {
		t.Errorf("expected fresh attempt left to the client, got %+v", report)
	}
	if n := h.provider.VerifyCallCount; n != 0 {
		t.Errorf("expected no verify calls, got %d", n)
	}
}

func TestReconcile_DuplicatePayment(t *testing.T) {
	h := newHarness(t)
	h.ledger.MarkPaid(student.UserID, termFeeID, "FEE-1700000000-first00001")
	ref := "FEE-1700000000-recon00004"
	h.openAttempt(ref, 10*time.Minute)
	h.paid(ref, "TXN-R4")

	report, err := h.reconciler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if report.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %+v", report)
	}
	if state := h.ledger.AttemptState(ref); state != domain.AttemptDuplicate {
		t.Errorf("expected duplicate attempt, got %s", state)
	}
	kinds := h.issues.Kinds()
	if len(kinds) != 1 || kinds[0] != domain.IssueDuplicatePayment {
		t.Errorf("expected duplicate payment issue, got %v", kinds)
	}
}
