package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired는 대기 시간 안에 락을 얻지 못했을 때 발생합니다
var ErrLockNotAcquired = errors.New("lock not acquired")

var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Locker는 SET NX 기반 분산 락입니다
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker는 ttl 동안 유지되는 락을 최대 wait까지 기다려 얻는 Locker를 생성합니다
func NewLocker(client *redis.Client, ttl, wait time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

// Lock은 key에 대한 락을 얻고 해제 함수를 반환합니다
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			logger.Debug(ctx, "lock acquired", logger.CacheKey(key))
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		return nil
	}
	return release, nil
}
