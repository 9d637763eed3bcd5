package redis

import (
	"context"
	"time"

	"schoolfees/internal/domain"
)

// LockStoreInterface defines the interface for settlement locking.
type LockStoreInterface interface {
	AcquireSettlementLock(ctx context.Context, payerID, feeID string, ttl time.Duration) (string, bool, error)
	ReleaseSettlementLock(ctx context.Context, payerID, feeID, token string) error
}

// CacheStoreInterface defines the interface for fee catalog caching.
type CacheStoreInterface interface {
	GetFeeCatalog(ctx context.Context) ([]*domain.FeeDefinition, bool, error)
	SetFeeCatalog(ctx context.Context, fees []*domain.FeeDefinition) error
	InvalidateFeeCatalog(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
