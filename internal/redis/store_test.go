package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfees/internal/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSettlementLock_Exclusive(t *testing.T) {
	_, client := newTestClient(t)
	locks := NewLockStore(client)
	ctx := context.Background()

	token, ok, err := locks.AcquireSettlementLock(ctx, "payer-1", "fee-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok, err = locks.AcquireSettlementLock(ctx, "payer-1", "fee-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	_, ok, err = locks.AcquireSettlementLock(ctx, "payer-1", "fee-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other fee is independent")

	require.NoError(t, locks.ReleaseSettlementLock(ctx, "payer-1", "fee-1", token))

	_, ok, err = locks.AcquireSettlementLock(ctx, "payer-1", "fee-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock is free after release")
}

func TestSettlementLock_ReleaseIgnoresStaleToken(t *testing.T) {
	mr, client := newTestClient(t)
	locks := NewLockStore(client)
	ctx := context.Background()

	stale, ok, err := locks.AcquireSettlementLock(ctx, "payer-1", "fee-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	current, ok, err := locks.AcquireSettlementLock(ctx, "payer-1", "fee-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired lock can be retaken")

	require.NoError(t, locks.ReleaseSettlementLock(ctx, "payer-1", "fee-1", stale))

	held, err := mr.Get(settlementLockKey("payer-1", "fee-1"))
	require.NoError(t, err)
	assert.Equal(t, current, held, "stale holder must not release the new lock")
}

func TestFeeCatalogCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewCacheStore(client)
	ctx := context.Background()

	fees, hit, err := cache.GetFeeCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, fees)

	due := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cache.SetFeeCatalog(ctx, []*domain.FeeDefinition{{
		ID:       "fee-1",
		Name:     "Term 1 Tuition",
		Amount:   decimal.RequireFromString("50000.50"),
		Currency: "NGN",
		DueDate:  due,
		Category: "tuition",
		Status:   domain.FeeStatusActive,
	}}))

	fees, hit, err = cache.GetFeeCatalog(ctx)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, fees, 1)
	assert.Equal(t, "Term 1 Tuition", fees[0].Name)
	assert.True(t, fees[0].Amount.Equal(decimal.RequireFromString("50000.50")))
	assert.True(t, fees[0].DueDate.Equal(due))
	assert.Equal(t, domain.FeeStatusActive, fees[0].Status)

	ttl := mr.TTL(feeCatalogKey)
	assert.Equal(t, FeeCatalogTTL, ttl)

	require.NoError(t, cache.InvalidateFeeCatalog(ctx))
	_, hit, err = cache.GetFeeCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFeeCatalogCache_EmptyCatalogIsAHit(t *testing.T) {
	_, client := newTestClient(t)
	cache := NewCacheStore(client)
	ctx := context.Background()

	require.NoError(t, cache.SetFeeCatalog(ctx, nil))

	fees, hit, err := cache.GetFeeCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, fees)
}
