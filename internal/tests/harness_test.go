package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
	"schoolfees/internal/service"
)

const (
	webhookSecret = "sk_test_webhook_secret"
	termFeeID     = "fee-term1"
)

var student = domain.Identity{
	UserID: "student-1",
	Email:  "ada@school.test",
	Name:   "Ada Obi",
	Role:   domain.RoleStudent,
}

var admin = domain.Identity{
	UserID: "admin-1",
	Email:  "bursar@school.test",
	Name:   "Bursar",
	Role:   domain.RoleAdmin,
}

// harness wires the payment services over in-memory mocks.
type harness struct {
	fees     *MockFeeRepository
	ledger   *MockLedger
	users    *MockUserRepository
	issues   *MockIssueRepository
	events   *MockWebhookEventRepository
	locks    *MockLockStore
	cache    *MockCacheStore
	provider *MockProvider
	tel      *MockTelemetry
	mailer   *MockMailer

	feeSvc       *service.FeeService
	payments     *service.PaymentService
	verifier     *service.Verifier
	settlement   *service.SettlementService
	confirmation *service.ConfirmationService
	webhooks     *service.WebhookService
	reconciler   *service.Reconciler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		fees:     NewMockFeeRepository(),
		ledger:   NewMockLedger(),
		users:    NewMockUserRepository(),
		issues:   NewMockIssueRepository(),
		events:   NewMockWebhookEventRepository(),
		locks:    NewMockLockStore(),
		cache:    NewMockCacheStore(),
		provider: NewMockProvider(),
		tel:      &MockTelemetry{},
		mailer:   &MockMailer{},
	}

	h.users.AddUser(&domain.User{ID: student.UserID, Name: student.Name, Email: student.Email, Role: student.Role})
	h.users.AddUser(&domain.User{ID: admin.UserID, Name: admin.Name, Email: admin.Email, Role: admin.Role})
	h.fees.AddFee(termFee())

	receipts := service.NewReceiptService("Unity Secondary School")
	notification := service.NewNotificationService(h.mailer, h.users, receipts)

	h.feeSvc = service.NewFeeService(h.fees, h.ledger.Statuses, h.cache, "NGN")
	h.payments = service.NewPaymentService(h.fees, h.ledger.Statuses, h.ledger.Attempts, h.ledger.Payments, h.provider,
		service.PaymentConfig{PublicKey: "pk_test_123", Currency: "NGN"})
	h.verifier = service.NewVerifier(h.provider, h.tel, time.Second)
	h.settlement = service.NewSettlementService(service.SettlementDeps{
		Store:        h.ledger.Store,
		PaymentRepo:  h.ledger.Payments,
		AttemptRepo:  h.ledger.Attempts,
		StatusRepo:   h.ledger.Statuses,
		FeeRepo:      h.fees,
		UserRepo:     h.users,
		IssueRepo:    h.issues,
		LockStore:    h.locks,
		Notification: notification,
		Telemetry:    h.tel,
		LockTTL:      5 * time.Second,
	})
	h.confirmation = service.NewConfirmationService(h.ledger.Attempts, h.ledger.Payments, h.verifier, h.settlement)
	h.webhooks = service.NewWebhookService(h.events, h.confirmation, h.tel, webhookSecret)
	h.reconciler = service.NewReconciler(h.ledger.Attempts, h.ledger.Payments, h.verifier, h.settlement, service.ReconcileConfig{
		Grace:        time.Minute,
		AbandonAfter: time.Hour,
		BatchSize:    50,
	})

	return h
}

func termFee() *domain.FeeDefinition {
	return &domain.FeeDefinition{
		ID:       termFeeID,
		Name:     "Term 1 Tuition",
		Amount:   decimal.NewFromInt(50000),
		Currency: "NGN",
		DueDate:  time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Category: "tuition",
		Status:   domain.FeeStatusActive,
	}
}

// openAttempt records an open attempt for the student's term fee.
func (h *harness) openAttempt(reference string, age time.Duration) {
	h.ledger.AddAttempt(&domain.PaymentAttempt{
		Reference:   reference,
		PayerID:     student.UserID,
		FeeID:       termFeeID,
		AmountMinor: 5000000,
		Currency:    "NGN",
		State:       domain.AttemptOpen,
		CreatedAt:   time.Now().Add(-age),
		UpdatedAt:   time.Now().Add(-age),
	})
}

// paid makes the provider report reference as a successful charge.
func (h *harness) paid(reference, transactionID string) {
	h.provider.SetTransaction(&paystack.Transaction{
		ID:          transactionID,
		Status:      paystack.StatusSuccess,
		Reference:   reference,
		AmountMinor: 5000000,
		Currency:    "NGN",
		Channel:     "card",
		PaidAt:      time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
	})
}

func (h *harness) status(reference, status string) {
	h.provider.SetTransaction(&paystack.Transaction{
		ID:          "TXN-" + status,
		Status:      status,
		Reference:   reference,
		AmountMinor: 5000000,
		Currency:    "NGN",
	})
}
