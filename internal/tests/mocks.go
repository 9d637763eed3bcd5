package tests

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"schoolfees/internal/domain"
	"schoolfees/internal/mail"
	"schoolfees/internal/paystack"
	"schoolfees/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK FEE REPOSITORY
// ──────────────────────────────────────────────

// MockFeeRepository is a mock implementation of FeeRepository.
type MockFeeRepository struct {
	mu   sync.RWMutex
	fees map[string]*domain.FeeDefinition

	// Counters for verification
	GetAllCallCount int32
	CreateCallCount int32

	// Error injection
	GetAllError  error
	CreateError  error
	GetByIDError error
	DeleteError  error
}

// NewMockFeeRepository creates a new mock fee repository.
func NewMockFeeRepository() *MockFeeRepository {
	return &MockFeeRepository{fees: make(map[string]*domain.FeeDefinition)}
}

// AddFee adds a fee to the mock repository.
func (m *MockFeeRepository) AddFee(fee *domain.FeeDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees[fee.ID] = fee
}

func (m *MockFeeRepository) Create(ctx context.Context, fee *domain.FeeDefinition) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fee.CreatedAt = time.Now()
	copy := *fee
	m.fees[fee.ID] = &copy
	return nil
}

func (m *MockFeeRepository) GetByID(ctx context.Context, id string) (*domain.FeeDefinition, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	fee, ok := m.fees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *fee
	return &copy, nil
}

func (m *MockFeeRepository) GetAll(ctx context.Context) ([]*domain.FeeDefinition, error) {
	atomic.AddInt32(&m.GetAllCallCount, 1)
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.FeeDefinition, 0, len(m.fees))
	for _, f := range m.fees {
		copy := *f
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockFeeRepository) UpdateStatus(ctx context.Context, id string, status domain.FeeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fee, ok := m.fees[id]
	if !ok {
		return repository.ErrNotFound
	}
	fee.Status = status
	return nil
}

func (m *MockFeeRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fees[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.fees, id)
	return nil
}

// GetFee returns a fee for test assertions.
func (m *MockFeeRepository) GetFee(id string) *domain.FeeDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fees[id]
}

// ──────────────────────────────────────────────
// MOCK LEDGER (payments, attempts, fee statuses, settlement)
// ──────────────────────────────────────────────

// MockLedger holds payment records, attempts and fee status entries behind
// one mutex, the way the database serializes settlements on the fee status row.
type MockLedger struct {
	mu       sync.Mutex
	payments map[string]*domain.PaymentRecord
	byRef    map[string]string
	attempts map[string]*domain.PaymentAttempt
	statuses map[string]*domain.FeeStatusEntry

	Payments *MockPaymentRepository
	Attempts *MockAttemptRepository
	Statuses *MockFeeStatusRepository
	Store    *MockSettlementStore
}

// NewMockLedger creates a new mock ledger.
func NewMockLedger() *MockLedger {
	l := &MockLedger{
		payments: make(map[string]*domain.PaymentRecord),
		byRef:    make(map[string]string),
		attempts: make(map[string]*domain.PaymentAttempt),
		statuses: make(map[string]*domain.FeeStatusEntry),
	}
	l.Payments = &MockPaymentRepository{l: l}
	l.Attempts = &MockAttemptRepository{l: l}
	l.Statuses = &MockFeeStatusRepository{l: l}
	l.Store = &MockSettlementStore{l: l}
	return l
}

func statusKey(payerID, feeID string) string {
	return payerID + "|" + feeID
}

// AddAttempt adds an attempt directly.
func (l *MockLedger) AddAttempt(a *domain.PaymentAttempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copy := *a
	l.attempts[a.Reference] = &copy
}

// AddPayment adds a payment record without touching fee status.
func (l *MockLedger) AddPayment(p *domain.PaymentRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copy := *p
	l.payments[p.ID] = &copy
	l.byRef[p.Reference] = p.ID
}

// MarkPaid sets a fee status entry paid directly.
func (l *MockLedger) MarkPaid(payerID, feeID, reference string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	ref := reference
	l.statuses[statusKey(payerID, feeID)] = &domain.FeeStatusEntry{
		PayerID:     payerID,
		FeeID:       feeID,
		Status:      domain.FeePaid,
		PaymentDate: &now,
		Reference:   &ref,
		LastUpdated: now,
	}
}

// CountPayments returns the number of stored records.
func (l *MockLedger) CountPayments() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.payments)
}

// AttemptState returns an attempt's state for test assertions.
func (l *MockLedger) AttemptState(reference string) domain.AttemptState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.attempts[reference]; ok {
		return a.State
	}
	return ""
}

// CountAttempts returns the number of stored attempts.
func (l *MockLedger) CountAttempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// Entry returns a copy of a fee status entry, or nil.
func (l *MockLedger) Entry(payerID, feeID string) *domain.FeeStatusEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.statuses[statusKey(payerID, feeID)]
	if !ok {
		return nil
	}
	copy := *e
	return &copy
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	l *MockLedger

	GetByReferenceError error
	GetByIDError        error
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRecord, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	p, ok := m.l.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentRecord, error) {
	if m.GetByReferenceError != nil {
		return nil, m.GetByReferenceError
	}
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	id, ok := m.l.byRef[reference]
	if !ok {
		return nil, nil
	}
	copy := *m.l.payments[id]
	return &copy, nil
}

func (m *MockPaymentRepository) ListByPayer(ctx context.Context, payerID string) ([]*domain.PaymentRecord, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	var result []*domain.PaymentRecord
	for _, p := range m.l.payments {
		if p.PayerID == payerID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) GetAll(ctx context.Context) ([]*domain.PaymentRecord, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	result := make([]*domain.PaymentRecord, 0, len(m.l.payments))
	for _, p := range m.l.payments {
		copy := *p
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockPaymentRepository) ListUnapplied(ctx context.Context, limit int) ([]*domain.PaymentRecord, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	var result []*domain.PaymentRecord
	for _, p := range m.l.payments {
		if p.Status != domain.PaymentStatusSuccess {
			continue
		}
		if m.l.statuses[statusKey(p.PayerID, p.FeeID)].IsPaid() {
			continue
		}
		copy := *p
		result = append(result, &copy)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// MockAttemptRepository is a mock implementation of AttemptRepository.
type MockAttemptRepository struct {
	l *MockLedger

	CreateError error
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	if _, ok := m.l.attempts[attempt.Reference]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	attempt.CreatedAt, attempt.UpdatedAt = now, now
	copy := *attempt
	m.l.attempts[attempt.Reference] = &copy
	return nil
}

func (m *MockAttemptRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentAttempt, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	a, ok := m.l.attempts[reference]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *MockAttemptRepository) Transition(ctx context.Context, reference string, from, to domain.AttemptState) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	a, ok := m.l.attempts[reference]
	if !ok {
		return repository.ErrNotFound
	}
	if a.State != from {
		return repository.ErrStateConflict
	}
	a.State = to
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockAttemptRepository) ListOpen(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.PaymentAttempt, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	var result []*domain.PaymentAttempt
	for _, a := range m.l.attempts {
		if a.State == domain.AttemptOpen && a.CreatedAt.Before(createdBefore) {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, nil
}

// MockFeeStatusRepository is a mock implementation of FeeStatusRepository.
type MockFeeStatusRepository struct {
	l *MockLedger
}

func (m *MockFeeStatusRepository) Get(ctx context.Context, payerID, feeID string) (*domain.FeeStatusEntry, error) {
	return m.l.Entry(payerID, feeID), nil
}

func (m *MockFeeStatusRepository) ListByPayer(ctx context.Context, payerID string) (map[string]*domain.FeeStatusEntry, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	result := make(map[string]*domain.FeeStatusEntry)
	for _, e := range m.l.statuses {
		if e.PayerID == payerID {
			copy := *e
			result[e.FeeID] = &copy
		}
	}
	return result, nil
}

// MockSettlementStore is a mock implementation of SettlementStore.
type MockSettlementStore struct {
	l *MockLedger

	// Counters for verification
	SettleCallCount      int32
	ApplyStatusCallCount int32

	// Error injection
	SettleError      error
	ApplyStatusError error
}

func (m *MockSettlementStore) Settle(ctx context.Context, record *domain.PaymentRecord) error {
	atomic.AddInt32(&m.SettleCallCount, 1)
	if m.SettleError != nil {
		return m.SettleError
	}

	m.l.mu.Lock()
	defer m.l.mu.Unlock()

	key := statusKey(record.PayerID, record.FeeID)
	if entry := m.l.statuses[key]; entry.IsPaid() {
		if entry.Reference != nil && *entry.Reference == record.Reference {
			return repository.ErrDuplicate
		}
		return repository.ErrAlreadyPaid
	}
	if _, ok := m.l.byRef[record.Reference]; ok {
		return repository.ErrDuplicate
	}

	record.CreatedAt = time.Now()
	copy := *record
	m.l.payments[record.ID] = &copy
	m.l.byRef[record.Reference] = record.ID
	m.l.applyLocked(record)

	return nil
}

func (m *MockSettlementStore) ApplyStatus(ctx context.Context, record *domain.PaymentRecord) error {
	atomic.AddInt32(&m.ApplyStatusCallCount, 1)
	if m.ApplyStatusError != nil {
		return m.ApplyStatusError
	}

	m.l.mu.Lock()
	defer m.l.mu.Unlock()

	if entry := m.l.statuses[statusKey(record.PayerID, record.FeeID)]; entry.IsPaid() {
		if entry.Reference != nil && *entry.Reference == record.Reference {
			return nil
		}
		return repository.ErrAlreadyPaid
	}

	m.l.applyLocked(record)
	return nil
}

func (l *MockLedger) applyLocked(record *domain.PaymentRecord) {
	paidAt := record.PaidAt
	ref := record.Reference
	txn := record.TransactionID
	l.statuses[statusKey(record.PayerID, record.FeeID)] = &domain.FeeStatusEntry{
		PayerID:       record.PayerID,
		FeeID:         record.FeeID,
		Status:        domain.FeePaid,
		PaymentDate:   &paidAt,
		Reference:     &ref,
		TransactionID: &txn,
		ReceiptURL:    record.ReceiptURL,
		LastUpdated:   time.Now(),
	}
	if a, ok := l.attempts[record.Reference]; ok && a.State != domain.AttemptSettled {
		a.State = domain.AttemptSettled
	}
}

// ──────────────────────────────────────────────
// MOCK USER / BOOTSTRAP REPOSITORIES
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// MockBootstrapRepository is a mock implementation of BootstrapRepository.
type MockBootstrapRepository struct {
	mu     sync.Mutex
	marker *domain.BootstrapMarker
	users  *MockUserRepository
}

// NewMockBootstrapRepository creates a mock that writes admins into users.
func NewMockBootstrapRepository(users *MockUserRepository) *MockBootstrapRepository {
	return &MockBootstrapRepository{users: users}
}

func (m *MockBootstrapRepository) Get(ctx context.Context) (*domain.BootstrapMarker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker == nil {
		return nil, nil
	}
	copy := *m.marker
	return &copy, nil
}

func (m *MockBootstrapRepository) Complete(ctx context.Context, admin *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker != nil {
		return repository.ErrDuplicate
	}
	if err := m.users.Create(ctx, admin); err != nil {
		return err
	}
	m.marker = &domain.BootstrapMarker{AdminID: admin.ID, CompletedAt: time.Now()}
	return nil
}

// ──────────────────────────────────────────────
// MOCK ISSUE / WEBHOOK EVENT REPOSITORIES
// ──────────────────────────────────────────────

// MockIssueRepository is a mock implementation of IssueRepository.
type MockIssueRepository struct {
	mu     sync.Mutex
	issues []*domain.SettlementIssue
}

// NewMockIssueRepository creates a new mock issue repository.
func NewMockIssueRepository() *MockIssueRepository {
	return &MockIssueRepository{}
}

func (m *MockIssueRepository) Create(ctx context.Context, issue *domain.SettlementIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue.CreatedAt = time.Now()
	copy := *issue
	m.issues = append(m.issues, &copy)
	return nil
}

func (m *MockIssueRepository) ListOpen(ctx context.Context) ([]*domain.SettlementIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.SettlementIssue, 0, len(m.issues))
	for _, is := range m.issues {
		if is.ResolvedAt == nil {
			copy := *is
			result = append(result, &copy)
		}
	}
	return result, nil
}

// Kinds returns the kinds of all recorded issues.
func (m *MockIssueRepository) Kinds() []domain.IssueKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]domain.IssueKind, 0, len(m.issues))
	for _, is := range m.issues {
		kinds = append(kinds, is.Kind)
	}
	return kinds
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository.
type MockWebhookEventRepository struct {
	mu     sync.Mutex
	events map[string]*domain.WebhookEvent
	keys   map[string]string
}

// NewMockWebhookEventRepository creates a new mock webhook event repository.
func NewMockWebhookEventRepository() *MockWebhookEventRepository {
	return &MockWebhookEventRepository{
		events: make(map[string]*domain.WebhookEvent),
		keys:   make(map[string]string),
	}
}

func (m *MockWebhookEventRepository) Create(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := event.Provider + "|" + event.ProviderEventID
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	event.CreatedAt = time.Now()
	copy := *event
	m.events[event.ID] = &copy
	m.keys[key] = event.ID
	return true, nil
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, id string, processingError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.ProcessedAt = &now
	e.ProcessingError = processingError
	return nil
}

// Events returns copies of all stored events.
func (m *MockWebhookEventRepository) Events() []domain.WebhookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.WebhookEvent, 0, len(m.events))
	for _, e := range m.events {
		result = append(result, *e)
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]string

	AcquireCallCount int32
	AcquireError     error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]string)}
}

func (m *MockLockStore) AcquireSettlementLock(ctx context.Context, payerID, feeID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(payerID, feeID)
	if _, held := m.locks[key]; held {
		return "", false, nil
	}
	token := uuid.New().String()
	m.locks[key] = token
	return token, true, nil
}

func (m *MockLockStore) ReleaseSettlementLock(ctx context.Context, payerID, feeID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statusKey(payerID, feeID)
	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

// IsLocked reports whether the (payer, fee) lock is held.
func (m *MockLockStore) IsLocked(payerID, feeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.locks[statusKey(payerID, feeID)]
	return held
}

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu     sync.Mutex
	fees   []*domain.FeeDefinition
	cached bool

	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{}
}

func (m *MockCacheStore) GetFeeCatalog(ctx context.Context) ([]*domain.FeeDefinition, bool, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cached {
		return nil, false, nil
	}
	return m.fees, true, nil
}

func (m *MockCacheStore) SetFeeCatalog(ctx context.Context, fees []*domain.FeeDefinition) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees = fees
	m.cached = true
	return nil
}

func (m *MockCacheStore) InvalidateFeeCatalog(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees = nil
	m.cached = false
	return nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT PROVIDER
// ──────────────────────────────────────────────

// MockProvider is a mock implementation of PaymentProvider.
type MockProvider struct {
	mu           sync.Mutex
	transactions map[string]*paystack.Transaction
	errs         map[string]error

	VerifyCallCount     int32
	InitializeCallCount int32
	InitializeError     error
}

// NewMockProvider creates a new mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		transactions: make(map[string]*paystack.Transaction),
		errs:         make(map[string]error),
	}
}

// SetTransaction makes Verify return tx for its reference.
func (m *MockProvider) SetTransaction(tx *paystack.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[tx.Reference] = tx
	delete(m.errs, tx.Reference)
}

// SetError makes Verify fail for reference.
func (m *MockProvider) SetError(reference string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[reference] = err
}

func (m *MockProvider) Verify(ctx context.Context, reference string) (*paystack.Transaction, error) {
	atomic.AddInt32(&m.VerifyCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[reference]; ok {
		return nil, err
	}
	tx, ok := m.transactions[reference]
	if !ok {
		return nil, paystack.ErrTransactionNotFound
	}
	copy := *tx
	return &copy, nil
}

func (m *MockProvider) Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	atomic.AddInt32(&m.InitializeCallCount, 1)
	if m.InitializeError != nil {
		return nil, m.InitializeError
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.test/" + req.Reference,
		AccessCode:       "access-" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

// ──────────────────────────────────────────────
// MOCK TELEMETRY / MAILER
// ──────────────────────────────────────────────

// MockTelemetry records events and alerts.
type MockTelemetry struct {
	mu     sync.Mutex
	events []string
	alerts []string
}

func (m *MockTelemetry) Event(name string, attrs map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, name)
}

func (m *MockTelemetry) Alert(msg string, err error, attrs map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, msg)
}

// EventCount returns how many events named name were recorded.
func (m *MockTelemetry) EventCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e == name {
			n++
		}
	}
	return n
}

// AlertCount returns the number of alerts raised.
func (m *MockTelemetry) AlertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

// MockMailer records sent messages.
type MockMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Sent returns the messages sent so far.
func (m *MockMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}
