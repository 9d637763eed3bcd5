package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LockStore handles short-lived distributed locks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// releaseScript deletes the lock only if it still holds the caller's token,
// so an expired holder never releases a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func settlementLockKey(payerID, feeID string) string {
	return fmt.Sprintf("lock:settlement:%s:%s", payerID, feeID)
}

// AcquireSettlementLock attempts to lock settlement for a (payer, fee) pair.
// Returns the lock token and true if the lock was acquired, false if already held.
func (s *LockStore) AcquireSettlementLock(ctx context.Context, payerID, feeID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, settlementLockKey(payerID, feeID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}

	return token, ok, nil
}

// ReleaseSettlementLock releases the lock if token still owns it.
func (s *LockStore) ReleaseSettlementLock(ctx context.Context, payerID, feeID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{settlementLockKey(payerID, feeID)}, token).Err()
}
