package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// FeeCatalogTTL bounds how stale the catalog can be when an invalidation is lost.
const FeeCatalogTTL = 30 * time.Second

const feeCatalogKey = "cache:fees:all"

// CachedFee is the cached form of a fee definition.
type CachedFee struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	DueDate     time.Time       `json:"due_date"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GetFeeCatalog retrieves the fee catalog from cache.
// Returns nil, false on a cache miss.
func (s *CacheStore) GetFeeCatalog(ctx context.Context) ([]*domain.FeeDefinition, bool, error) {
	data, err := s.client.Get(ctx, feeCatalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached []CachedFee
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, err
	}

	fees := make([]*domain.FeeDefinition, 0, len(cached))
	for _, c := range cached {
		fees = append(fees, &domain.FeeDefinition{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Amount:      c.Amount,
			Currency:    c.Currency,
			DueDate:     c.DueDate,
			Category:    c.Category,
			Status:      domain.FeeStatus(c.Status),
			CreatedAt:   c.CreatedAt,
		})
	}
	return fees, true, nil
}

// SetFeeCatalog stores the fee catalog in cache. An empty catalog is cached too.
func (s *CacheStore) SetFeeCatalog(ctx context.Context, fees []*domain.FeeDefinition) error {
	cached := make([]CachedFee, 0, len(fees))
	for _, f := range fees {
		cached = append(cached, CachedFee{
			ID:          f.ID,
			Name:        f.Name,
			Description: f.Description,
			Amount:      f.Amount,
			Currency:    f.Currency,
			DueDate:     f.DueDate,
			Category:    f.Category,
			Status:      string(f.Status),
			CreatedAt:   f.CreatedAt,
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, feeCatalogKey, data, FeeCatalogTTL).Err()
}

// InvalidateFeeCatalog removes the fee catalog from cache.
func (s *CacheStore) InvalidateFeeCatalog(ctx context.Context) error {
	return s.client.Del(ctx, feeCatalogKey).Err()
}
