package content

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
)

const catalogKeyPrefix = "content:"

// Catalog는 공개 페이지용 읽기 전용 조회입니다. cache가 있으면 read-through로 캐시합니다
type Catalog struct {
	store repository.DocumentStore
	cache repository.CacheRepository
	ttl   time.Duration
}

// NewCatalog는 Catalog를 생성합니다. cache가 nil이면 항상 저장소에서 읽습니다
func NewCatalog(store repository.DocumentStore, cache repository.CacheRepository, ttl time.Duration) *Catalog {
	return &Catalog{store: store, cache: cache, ttl: ttl}
}

// List는 공개 컬렉션의 모든 문서를 id와 타임스탬프를 포함한 평면 문서로 반환합니다
func (c *Catalog) List(ctx context.Context, name string) ([]map[string]interface{}, error) {
	if !entity.IsContentCollection(name) {
		return nil, &entity.ValidationError{Field: "collection", Reason: name + " is not public content", Err: entity.ErrInvalidCollection}
	}

	key := catalogKeyPrefix + name
	if c.cache != nil {
		var docs []map[string]interface{}
		err := c.cache.Get(ctx, key, &docs)
		if err == nil {
			return docs, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			logger.Warn(ctx, "catalog cache read failed", logger.CacheKey(key), zap.Error(err))
		}
	}

	records, err := collection.New(c.store, name).GetAll(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, r.Document())
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, docs, c.ttl); err != nil {
			logger.Warn(ctx, "catalog cache write failed", logger.CacheKey(key), zap.Error(err))
		}
	}
	return docs, nil
}

// CurrentClass는 isCurrentClass가 설정된 기수를 반환합니다.
// 경쟁으로 여러 개가 표시되어 있으면 가장 최근에 수정된 것을 고릅니다.
func (c *Catalog) CurrentClass(ctx context.Context) (*entity.Record, error) {
	records, err := collection.New(c.store, entity.ClassesCollection).
		GetAll(ctx, entity.Where(entity.FieldIsCurrentClass, entity.OpEq, true))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &entity.NotFoundError{Collection: entity.ClassesCollection, ID: "current"}
	}
	if len(records) > 1 {
		logger.Warn(ctx, "multiple classes flagged as current", logger.Count(len(records)))
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].UpdatedAt().After(records[j].UpdatedAt())
		})
	}
	return records[0], nil
}

// Invalidate는 컬렉션의 캐시를 지웁니다. 실패는 로그만 남깁니다
func (c *Catalog) Invalidate(ctx context.Context, name string) {
	if c.cache == nil || !entity.IsContentCollection(name) {
		return
	}
	if err := c.cache.Delete(ctx, catalogKeyPrefix+name); err != nil {
		logger.Warn(ctx, "catalog cache invalidation failed", logger.Collection(name), zap.Error(err))
	}
}

// Follow는 저장소 변경 스트림을 구독해 다른 인스턴스의 수정도 캐시에 반영합니다.
// ctx가 끝나거나 스트림이 닫힐 때까지 블록됩니다.
func (c *Catalog) Follow(ctx context.Context, watcher repository.ChangeWatcher) error {
	events, err := watcher.Watch(ctx, entity.ContentCollections...)
	if err != nil {
		return err
	}

	logger.Info(ctx, "following content changes", zap.Strings("collections", entity.ContentCollections))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Invalidate(ctx, ev.Collection)
		}
	}
}
