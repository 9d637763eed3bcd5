package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
	"schoolfees/internal/service"
)

func TestPayableFees_EmptyCatalogBlocks(t *testing.T) {
	h := newHarness(t)
	feeSvc := service.NewFeeService(NewMockFeeRepository(), h.ledger.Statuses, nil, "NGN")

	catalog, err := feeSvc.PayableFees(context.Background(), student)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if !catalog.Blocking {
		t.Error("expected blocking catalog")
	}
	if catalog.Notice != service.NoPayableFeesNotice {
		t.Errorf("unexpected notice %q", catalog.Notice)
	}
	if len(catalog.Options) != 0 {
		t.Errorf("expected no options, got %d", len(catalog.Options))
	}
}

func TestPayableFees_OnlyInactiveBlocks(t *testing.T) {
	h := newHarness(t)
	h.fees.GetFee(termFeeID).Status = domain.FeeStatusInactive

	catalog, err := h.feeSvc.PayableFees(context.Background(), student)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !catalog.Blocking {
		t.Error("expected blocking catalog when every fee is inactive")
	}
}

func TestPayableFees_JoinsPayerStatus(t *testing.T) {
	h := newHarness(t)
	second := termFee()
	second.ID = "fee-sports"
	second.Name = "Sports Levy"
	second.Amount = decimal.RequireFromString("2500.50")
	h.fees.AddFee(second)
	h.ledger.MarkPaid(student.UserID, termFeeID, "FEE-1700000000-000000000000")

	catalog, err := h.feeSvc.PayableFees(context.Background(), student)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if catalog.Blocking || len(catalog.Options) != 2 {
		t.Fatalf("expected 2 options, got %+v", catalog)
	}

	statuses := map[string]domain.FeePaymentStatus{}
	for _, opt := range catalog.Options {
		statuses[opt.Fee.ID] = opt.Status
	}
	if statuses[termFeeID] != domain.FeePaid {
		t.Errorf("expected term fee paid, got %s", statuses[termFeeID])
	}
	if statuses["fee-sports"] != domain.FeeUnpaid {
		t.Errorf("expected sports levy unpaid, got %s", statuses["fee-sports"])
	}
}

func TestPayableFees_RequiresIdentity(t *testing.T) {
	h := newHarness(t)

	if _, err := h.feeSvc.PayableFees(context.Background(), domain.Identity{}); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestListFees_CacheReadThrough(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 3; i++ {
		fees, err := h.feeSvc.ListFees(context.Background())
		if err != nil || len(fees) != 1 {
			t.Fatalf("expected 1 fee, got %d (%v)", len(fees), err)
		}
	}
	if n := h.fees.GetAllCallCount; n != 1 {
		t.Errorf("expected store read once, got %d", n)
	}

	_, err := h.feeSvc.CreateFee(context.Background(), admin, service.CreateFeeRequest{
		Name:    "Library Fee",
		Amount:  decimal.NewFromInt(1500),
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	fees, err := h.feeSvc.ListFees(context.Background())
	if err != nil || len(fees) != 2 {
		t.Fatalf("expected 2 fees after create, got %d (%v)", len(fees), err)
	}
	if n := h.fees.GetAllCallCount; n != 2 {
		t.Errorf("expected cache invalidation to force a store read, got %d reads", n)
	}
}

func TestCreateFee(t *testing.T) {
	h := newHarness(t)

	fee, err := h.feeSvc.CreateFee(context.Background(), admin, service.CreateFeeRequest{
		Name:        "  Exam Fee ",
		Description: "WAEC registration",
		Amount:      decimal.RequireFromString("12000.75"),
		DueDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if fee.Name != "Exam Fee" {
		t.Errorf("expected trimmed name, got %q", fee.Name)
	}
	if fee.Status != domain.FeeStatusActive {
		t.Errorf("expected new fee active, got %s", fee.Status)
	}
	if fee.Category != service.DefaultFeeCategory {
		t.Errorf("expected default category, got %q", fee.Category)
	}
	if fee.Currency != "NGN" {
		t.Errorf("expected NGN, got %s", fee.Currency)
	}
	if h.fees.GetFee(fee.ID) == nil {
		t.Error("expected fee stored")
	}
}

func TestCreateFee_Rejections(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		caller   domain.Identity
		req      service.CreateFeeRequest
		expected error
	}{
		{"not admin", student, service.CreateFeeRequest{Name: "X", Amount: decimal.NewFromInt(1), DueDate: due}, service.ErrForbidden},
		{"missing name", admin, service.CreateFeeRequest{Name: "  ", Amount: decimal.NewFromInt(1), DueDate: due}, service.ErrValidation},
		{"zero amount", admin, service.CreateFeeRequest{Name: "X", Amount: decimal.Zero, DueDate: due}, service.ErrInvalidFeeAmount},
		{"negative amount", admin, service.CreateFeeRequest{Name: "X", Amount: decimal.NewFromInt(-5), DueDate: due}, service.ErrInvalidFeeAmount},
		{"three decimals", admin, service.CreateFeeRequest{Name: "X", Amount: decimal.RequireFromString("10.005"), DueDate: due}, service.ErrInvalidFeeAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.feeSvc.CreateFee(context.Background(), tc.caller, tc.req)

			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
			if n := h.fees.CreateCallCount; n != 0 {
				t.Errorf("expected nothing stored, got %d creates", n)
			}
		})
	}
}

func TestUpdateFeeStatus(t *testing.T) {
	h := newHarness(t)

	if err := h.feeSvc.UpdateFeeStatus(context.Background(), admin, termFeeID, domain.FeeStatusInactive); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got := h.fees.GetFee(termFeeID).Status; got != domain.FeeStatusInactive {
		t.Errorf("expected inactive, got %s", got)
	}
	if n := h.cache.InvalidateCallCount; n != 1 {
		t.Errorf("expected cache invalidated once, got %d", n)
	}

	if err := h.feeSvc.UpdateFeeStatus(context.Background(), admin, termFeeID, "archived"); !errors.Is(err, service.ErrInvalidFeeStatus) {
		t.Errorf("expected ErrInvalidFeeStatus, got %v", err)
	}
	if err := h.feeSvc.UpdateFeeStatus(context.Background(), admin, "fee-missing", domain.FeeStatusActive); !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound, got %v", err)
	}
	if err := h.feeSvc.UpdateFeeStatus(context.Background(), student, termFeeID, domain.FeeStatusActive); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteFee(t *testing.T) {
	h := newHarness(t)

	if err := h.feeSvc.DeleteFee(context.Background(), student, termFeeID); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := h.feeSvc.DeleteFee(context.Background(), admin, termFeeID); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := h.feeSvc.DeleteFee(context.Background(), admin, termFeeID); !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound on second delete, got %v", err)
	}
	if _, err := h.feeSvc.GetFee(context.Background(), termFeeID); !errors.Is(err, service.ErrFeeNotFound) {
		t.Errorf("expected ErrFeeNotFound, got %v", err)
	}
}
