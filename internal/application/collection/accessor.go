// Package collection은 컬렉션 이름 하나에 묶인 범용 문서 접근자를 제공합니다.
package collection

import (
	"context"
	"sync"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Accessor는 하나의 컬렉션에 대한 CRUD와 일괄 업데이트를 제공합니다.
// createdAt/updatedAt을 자동으로 채우며 재시도나 감사 로그 기록은 하지 않습니다.
type Accessor struct {
	store repository.DocumentStore
	name  string
	now   func() time.Time

	mu   sync.Mutex
	last time.Time
}

// Option은 Accessor 설정 함수입니다
type Option func(*Accessor)

// WithClock은 타임스탬프에 쓸 시계를 바꿉니다
func WithClock(now func() time.Time) Option {
	return func(a *Accessor) {
		a.now = now
	}
}

// New는 name 컬렉션에 대한 Accessor를 생성합니다
func New(store repository.DocumentStore, name string, opts ...Option) *Accessor {
	a := &Accessor{
		store: store,
		name:  name,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name은 컬렉션명을 반환합니다
func (a *Accessor) Name() string {
	return a.name
}

// stamp는 이 접근자가 이전에 발급한 값보다 항상 큰 타임스탬프를 반환합니다
func (a *Accessor) stamp() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := a.now().UTC().Truncate(time.Microsecond)
	if !t.After(a.last) {
		t = a.last.Add(time.Microsecond)
	}
	a.last = t
	return t
}

// GetAll은 필터와 일치하는 모든 문서를 반환합니다. 결과가 없으면 빈 슬라이스입니다
func (a *Accessor) GetAll(ctx context.Context, filters ...entity.Filter) ([]*entity.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.GetAll")
	defer span.End()
	tracing.SetAttributes(ctx,
		attribute.String("collection", a.name),
		attribute.Int("filters", len(filters)),
	)

	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, &entity.ValidationError{Field: f.Field, Reason: err.Error(), Err: err}
		}
	}

	records, err := a.store.Find(ctx, a.name, filters)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, entity.NewStoreError("get_all", a.name, err)
	}
	if records == nil {
		records = []*entity.Record{}
	}
	return records, nil
}

// GetByID는 문서 하나를 반환합니다. 없으면 *entity.NotFoundError입니다
func (a *Accessor) GetByID(ctx context.Context, id string) (*entity.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.GetByID")
	defer span.End()
	tracing.SetAttributes(ctx,
		attribute.String("collection", a.name),
		attribute.String("document_id", id),
	)

	if id == "" {
		return nil, entity.NewValidationError(entity.FieldID, "id must not be empty")
	}

	record, err := a.store.Get(ctx, a.name, id)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, entity.NewStoreError("get", a.name, err)
	}
	return record, nil
}

// Create는 createdAt == updatedAt == now를 붙여 문서를 저장합니다
func (a *Accessor) Create(ctx context.Context, fields entity.Fields) (*entity.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Create")
	defer span.End()
	tracing.SetAttributes(ctx, attribute.String("collection", a.name))

	if len(fields) == 0 {
		return nil, entity.NewValidationError("", "field set must not be empty")
	}
	if err := validatePayload(fields); err != nil {
		return nil, err
	}

	now := a.stamp()
	doc := fields.Clone()
	doc[entity.FieldCreatedAt] = now
	doc[entity.FieldUpdatedAt] = now

	id, err := a.store.Insert(ctx, a.name, doc)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, entity.NewStoreError("create", a.name, err)
	}

	tracing.SetAttributes(ctx, attribute.String("document_id", id))
	return entity.ReconstructRecord(id, a.name, fields.Clone(), now, now), nil
}

// Update는 전달된 필드를 병합하고 updatedAt을 갱신합니다.
// 반환값은 다시 조회한 값이 아니라 보낸 필드에 id와 updatedAt을 더한 것입니다.
func (a *Accessor) Update(ctx context.Context, id string, fields entity.Fields) (*entity.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Update")
	defer span.End()
	tracing.SetAttributes(ctx,
		attribute.String("collection", a.name),
		attribute.String("document_id", id),
	)

	if id == "" {
		return nil, entity.NewValidationError(entity.FieldID, "id must not be empty")
	}
	if err := validatePayload(fields); err != nil {
		return nil, err
	}

	now := a.stamp()
	doc := fields.Clone()
	if doc == nil {
		doc = entity.Fields{}
	}
	doc[entity.FieldUpdatedAt] = now

	if err := a.store.Update(ctx, a.name, id, doc); err != nil {
		tracing.RecordError(ctx, err)
		return nil, entity.NewStoreError("update", a.name, err)
	}

	return entity.ReconstructRecord(id, a.name, fields.Clone(), time.Time{}, now), nil
}

// Remove는 문서를 삭제합니다. 없는 ID는 모든 저장소에서 에러 없이 무시됩니다
func (a *Accessor) Remove(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "Accessor.Remove")
	defer span.End()
	tracing.SetAttributes(ctx,
		attribute.String("collection", a.name),
		attribute.String("document_id", id),
	)

	if id == "" {
		return entity.NewValidationError(entity.FieldID, "id must not be empty")
	}

	if err := a.store.Delete(ctx, a.name, id); err != nil {
		tracing.RecordError(ctx, err)
		return entity.NewStoreError("remove", a.name, err)
	}
	return nil
}

// BatchUpdate는 여러 업데이트를 저장소의 원자적 일괄 작업 하나로 보냅니다.
// 모든 항목에 같은 updatedAt이 붙습니다. 빈 배치는 아무것도 하지 않습니다.
func (a *Accessor) BatchUpdate(ctx context.Context, entries []entity.BatchEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "Accessor.BatchUpdate")
	defer span.End()
	tracing.SetAttributes(ctx,
		attribute.String("collection", a.name),
		attribute.Int("entries", len(entries)),
	)

	for _, e := range entries {
		if e.ID == "" {
			return entity.NewValidationError(entity.FieldID, "batch entry id must not be empty")
		}
		if err := validatePayload(e.Fields); err != nil {
			return err
		}
	}

	now := a.stamp()
	batch := make([]entity.BatchEntry, len(entries))
	for i, e := range entries {
		doc := e.Fields.Clone()
		if doc == nil {
			doc = entity.Fields{}
		}
		doc[entity.FieldUpdatedAt] = now
		batch[i] = entity.BatchEntry{ID: e.ID, Fields: doc}
	}

	if err := a.store.BatchUpdate(ctx, a.name, batch); err != nil {
		tracing.RecordError(ctx, err)
		return entity.NewStoreError("batch_update", a.name, err)
	}
	return nil
}

// validatePayload는 예약 필드와 저장할 수 없는 필드명을 거부합니다
func validatePayload(fields entity.Fields) error {
	if reserved := fields.Reserved(); len(reserved) > 0 {
		return &entity.ValidationError{
			Field:  reserved[0],
			Reason: "reserved field must not be part of the payload",
			Err:    entity.ErrReservedField,
		}
	}
	for _, k := range fields.Keys() {
		if err := entity.ValidateFieldName(k); err != nil {
			return err
		}
	}
	return nil
}
