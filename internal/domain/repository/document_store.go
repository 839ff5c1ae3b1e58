package repository

import (
	"context"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
)

// DocumentStore는 컬렉션명 + 문서 ID로 주소를 지정하는 문서 저장소 인터페이스입니다
type DocumentStore interface {
	// Get은 ID로 문서를 조회합니다. 없으면 *entity.NotFoundError를 반환합니다
	Get(ctx context.Context, collection, id string) (*entity.Record, error)

	// Find는 필터와 일치하는 모든 문서를 조회합니다. 결과가 없으면 빈 슬라이스입니다
	Find(ctx context.Context, collection string, filters []entity.Filter) ([]*entity.Record, error)

	// Insert는 문서를 저장하고 저장소가 부여한 ID를 반환합니다
	Insert(ctx context.Context, collection string, doc entity.Fields) (string, error)

	// Update는 전달된 필드만 병합합니다. 대상이 없으면 *entity.NotFoundError를 반환합니다
	Update(ctx context.Context, collection, id string, fields entity.Fields) error

	// Delete는 문서를 삭제합니다. 없는 ID는 에러 없이 무시됩니다
	Delete(ctx context.Context, collection, id string) error

	// BatchUpdate는 여러 문서 업데이트를 하나의 원자적 단위로 적용합니다
	BatchUpdate(ctx context.Context, collection string, entries []entity.BatchEntry) error

	// DeleteMany는 필터와 일치하는 문서를 모두 삭제하고 삭제 개수를 반환합니다
	DeleteMany(ctx context.Context, collection string, filters []entity.Filter) (int64, error)

	// HealthCheck는 저장소 연결 상태를 확인합니다
	HealthCheck(ctx context.Context) error
}

// ChangeWatcher는 컬렉션 변경을 실시간으로 알려주는 저장소가 구현합니다
type ChangeWatcher interface {
	Watch(ctx context.Context, collections ...string) (<-chan entity.ChangeEvent, error)
}
