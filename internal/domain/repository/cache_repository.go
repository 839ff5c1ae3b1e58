package repository

import (
	"context"
	"errors"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
)

// ErrCacheMiss는 캐시에 키가 없을 때 발생합니다
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository는 캐시 저장소 인터페이스입니다
type CacheRepository interface {
	// Get은 캐시 값을 dest로 역직렬화합니다. 키가 없으면 ErrCacheMiss를 반환합니다
	Get(ctx context.Context, key string, dest interface{}) error

	// Set은 캐시에 값을 저장합니다
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete는 캐시에서 값을 삭제합니다
	Delete(ctx context.Context, keys ...string) error

	// Exists는 키가 존재하는지 확인합니다
	Exists(ctx context.Context, key string) (bool, error)
}

// SessionStore는 관리자 세션 저장소입니다
type SessionStore interface {
	// Save는 ttl 동안 유지되는 세션을 저장합니다
	Save(ctx context.Context, session *entity.Session, ttl time.Duration) error

	// Get은 세션을 조회합니다. 없거나 만료되었으면 entity.ErrUnauthenticated를 반환합니다
	Get(ctx context.Context, sessionID string) (*entity.Session, error)

	// Delete는 세션을 폐기합니다
	Delete(ctx context.Context, sessionID string) error
}

// EventPublisher는 도메인 이벤트를 외부 브로커로 발행합니다
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.DomainEvent) error
}
