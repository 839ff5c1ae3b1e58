package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fixedWindow는 키별 고정 윈도 카운터를 원자적으로 증가시킵니다
var fixedWindow = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local current = tonumber(redis.call('GET', key) or "0")

	if current < limit then
		redis.call('INCR', key)
		if current == 0 then
			redis.call('EXPIRE', key, window)
		end
		return 1
	else
		return 0
	end
`)

// RateLimiter는 Redis 고정 윈도 속도 제한기입니다
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRateLimiter는 window 동안 limit 회를 허용하는 제한기를 생성합니다
func NewRateLimiter(client *redis.Client, prefix string, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow는 요청을 허용할지 확인합니다
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	seconds := int64(rl.window.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	result, err := fixedWindow.Run(ctx, rl.client, []string{fullKey}, rl.limit, seconds).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result == 1
	if !allowed {
		logger.Debug(ctx, "rate limit exceeded",
			zap.String("key", fullKey),
			zap.Int64("limit", rl.limit),
		)
	}
	return allowed, nil
}
