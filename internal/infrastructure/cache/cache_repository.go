package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository는 Redis 기반 캐시 저장소입니다. 값은 JSON으로 저장합니다
type CacheRepository struct {
	client *redis.Client
	name   string
}

var _ repository.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository는 새로운 Redis 캐시 저장소를 생성합니다
func NewCacheRepository(client *redis.Client, name string) *CacheRepository {
	return &CacheRepository{client: client, name: name}
}

// Get은 캐시 값을 dest로 역직렬화합니다
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.GetMetrics().RecordCacheMiss(r.name)
		return repository.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	metrics.GetMetrics().RecordCacheHit(r.name)
	logger.Debug(ctx, "cache hit", logger.CacheKey(key), logger.Duration(time.Since(start)))
	return nil
}

// Set은 캐시에 값을 저장합니다
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	logger.Debug(ctx, "cache set", logger.CacheKey(key), zap.Duration("ttl", ttl))
	return nil
}

// Delete는 캐시에서 값을 삭제합니다
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Exists는 키가 존재하는지 확인합니다
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return result > 0, nil
}
