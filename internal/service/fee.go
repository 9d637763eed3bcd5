package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
	internalRedis "schoolfees/internal/redis"
	"schoolfees/internal/repository"
)

// NoPayableFeesNotice is shown to payers when the catalog offers nothing to pay.
const NoPayableFeesNotice = "No fees are currently open for payment. Please check back later or contact the bursary."

// DefaultFeeCategory is used when a fee is created without a category.
const DefaultFeeCategory = "tuition"

// FeeService serves the fee catalog and its administration.
type FeeService struct {
	feeRepo    repository.FeeRepository
	statusRepo repository.FeeStatusRepository
	cache      internalRedis.CacheStoreInterface
	currency   string
}

// NewFeeService creates a new FeeService. cache may be nil.
func NewFeeService(
	feeRepo repository.FeeRepository,
	statusRepo repository.FeeStatusRepository,
	cache internalRedis.CacheStoreInterface,
	currency string,
) *FeeService {
	return &FeeService{
		feeRepo:    feeRepo,
		statusRepo: statusRepo,
		cache:      cache,
		currency:   currency,
	}
}

// ListFees returns every fee definition. No payer filter is applied.
func (s *FeeService) ListFees(ctx context.Context) ([]*domain.FeeDefinition, error) {
	if s.cache != nil {
		fees, hit, err := s.cache.GetFeeCatalog(ctx)
		if err != nil {
			log.Printf("[FEES] cache read failed, falling back to store: %v", err)
		} else if hit {
			return fees, nil
		}
	}

	fees, err := s.feeRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	if s.cache != nil {
		if err := s.cache.SetFeeCatalog(ctx, fees); err != nil {
			log.Printf("[FEES] cache write failed: %v", err)
		}
	}

	return fees, nil
}

// PayableCatalog is what a payer may choose from.
type PayableCatalog struct {
	Options  []domain.PayableFee
	Blocking bool
	Notice   string
}

// PayableFees returns the active fees joined with the payer's status.
// An empty catalog is reported as blocking with a notice.
func (s *FeeService) PayableFees(ctx context.Context, payer domain.Identity) (*PayableCatalog, error) {
	if payer.UserID == "" {
		return nil, ErrUnauthenticated
	}

	fees, err := s.ListFees(ctx)
	if err != nil {
		return nil, err
	}

	statuses, err := s.statusRepo.ListByPayer(ctx, payer.UserID)
	if err != nil {
		return nil, storeError(err)
	}

	catalog := &PayableCatalog{Options: []domain.PayableFee{}}
	for _, fee := range fees {
		if !fee.IsPayable() {
			continue
		}
		status := domain.FeeUnpaid
		if statuses[fee.ID].IsPaid() {
			status = domain.FeePaid
		}
		catalog.Options = append(catalog.Options, domain.PayableFee{Fee: fee, Status: status})
	}

	if len(catalog.Options) == 0 {
		catalog.Blocking = true
		catalog.Notice = NoPayableFeesNotice
	}

	return catalog, nil
}

// CreateFeeRequest contains the parameters for publishing a fee.
type CreateFeeRequest struct {
	Name        string          `validate:"required,max=200"`
	Description string          `validate:"max=2000"`
	Amount      decimal.Decimal `validate:"-"`
	DueDate     time.Time       `validate:"required"`
	Category    string          `validate:"max=50"`
}

// CreateFee publishes a new fee. New fees start active.
func (s *FeeService) CreateFee(ctx context.Context, admin domain.Identity, req CreateFeeRequest) (*domain.FeeDefinition, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() || !domain.HasAtMostTwoDecimals(req.Amount) {
		return nil, ErrInvalidFeeAmount
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = DefaultFeeCategory
	}

	fee := &domain.FeeDefinition{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Currency:    s.currency,
		DueDate:     req.DueDate,
		Category:    category,
		Status:      domain.FeeStatusActive,
	}

	if err := s.feeRepo.Create(ctx, fee); err != nil {
		return nil, storeError(err)
	}

	s.invalidate(ctx)
	log.Printf("[FEES] Created FeeID=%s, Name=%s, Amount=%s, By=%s", fee.ID, fee.Name, fee.Amount.StringFixed(2), admin.UserID)

	return fee, nil
}

// UpdateFeeStatus toggles a fee between active and inactive.
func (s *FeeService) UpdateFeeStatus(ctx context.Context, admin domain.Identity, feeID string, status domain.FeeStatus) error {
	if !admin.IsAdmin() {
		return ErrForbidden
	}
	if feeID == "" {
		return ErrInvalidFeeID
	}
	if !status.Valid() {
		return ErrInvalidFeeStatus
	}

	if err := s.feeRepo.UpdateStatus(ctx, feeID, status); err != nil {
		if isNotFound(err) {
			return ErrFeeNotFound
		}
		return storeError(err)
	}

	s.invalidate(ctx)
	log.Printf("[FEES] Status FeeID=%s, Status=%s, By=%s", feeID, status, admin.UserID)

	return nil
}

// DeleteFee removes a fee. Existing payment records keep the fee name.
func (s *FeeService) DeleteFee(ctx context.Context, admin domain.Identity, feeID string) error {
	if !admin.IsAdmin() {
		return ErrForbidden
	}
	if feeID == "" {
		return ErrInvalidFeeID
	}

	if err := s.feeRepo.Delete(ctx, feeID); err != nil {
		if isNotFound(err) {
			return ErrFeeNotFound
		}
		return storeError(err)
	}

	s.invalidate(ctx)
	log.Printf("[FEES] Deleted FeeID=%s, By=%s", feeID, admin.UserID)

	return nil
}

// GetFee retrieves a fee definition by ID.
func (s *FeeService) GetFee(ctx context.Context, feeID string) (*domain.FeeDefinition, error) {
	if feeID == "" {
		return nil, ErrInvalidFeeID
	}

	fee, err := s.feeRepo.GetByID(ctx, feeID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrFeeNotFound, feeID)
		}
		return nil, storeError(err)
	}

	return fee, nil
}

func (s *FeeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFeeCatalog(ctx); err != nil {
		log.Printf("[FEES] cache invalidation failed: %v", err)
	}
}
