package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const KeyPaymentOrderLock = "PAYMENT:ORDER:%d"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepository holds short-lived in-flight markers in Redis.
type LockRepository struct {
	Redis redis.UniversalClient
}

func NewLockRepository(client redis.UniversalClient) *LockRepository {
	return &LockRepository{
		Redis: client,
	}
}

// AcquireOrder takes the lock for orderID. The token is empty when another
// holder has it.
func (r *LockRepository) AcquireOrder(ctx context.Context, orderID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.Redis.SetNX(ctx, fmt.Sprintf(KeyPaymentOrderLock, orderID), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire order lock: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// ReleaseOrder drops the lock only if token still owns it.
func (r *LockRepository) ReleaseOrder(ctx context.Context, orderID int64, token string) error {
	err := releaseScript.Run(ctx, r.Redis, []string{fmt.Sprintf(KeyPaymentOrderLock, orderID)}, token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release order lock: %w", err)
	}
	return nil
}
