// Package content는 관리자 페이지의 컨텐츠 수정과 공개 페이지의 조회를 담당합니다.
package content

import (
	"context"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/application/validation"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ChangeHook은 컬렉션이 수정된 뒤 호출됩니다 (공개 캐시 무효화 등)
type ChangeHook func(ctx context.Context, collection string)

// Service는 한 컬렉션에 대한 관리 작업입니다.
// 형태 검증, 접근자 호출, 감사 로그 기록 순서로 진행하며 접근자의 결과와 에러를 그대로 돌려줍니다.
type Service struct {
	accessor *collection.Accessor
	audit    *audit.Logger
	validate *validator.Validate
	onChange ChangeHook
}

// NewService는 새로운 Service를 생성합니다. onChange는 nil일 수 있습니다
func NewService(accessor *collection.Accessor, auditLog *audit.Logger, validate *validator.Validate, onChange ChangeHook) *Service {
	return &Service{
		accessor: accessor,
		audit:    auditLog,
		validate: validate,
		onChange: onChange,
	}
}

// Collection은 컬렉션명을 반환합니다
func (s *Service) Collection() string {
	return s.accessor.Name()
}

// List는 필터와 일치하는 문서를 반환합니다
func (s *Service) List(ctx context.Context, filters ...entity.Filter) ([]*entity.Record, error) {
	return s.accessor.GetAll(ctx, filters...)
}

// Get은 문서 하나를 반환합니다
func (s *Service) Get(ctx context.Context, id string) (*entity.Record, error) {
	return s.accessor.GetByID(ctx, id)
}

// Create는 shape를 검증해 저장하고 감사 로그를 남깁니다
func (s *Service) Create(ctx context.Context, actor audit.Actor, shape entity.Shape) (*entity.Record, error) {
	if err := s.check(shape); err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionCreate, err.Error(), "", label(shape))
		return nil, err
	}

	fields := shape.Fields()
	rec, err := s.accessor.Create(ctx, fields)
	if err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionCreate, err.Error(), "", shape.Label())
		return nil, err
	}

	s.audit.LogCreate(ctx, actor, s.Collection(), rec.ID(), shape.Label(), nil, fields)
	s.changed(ctx)
	return rec, nil
}

// Update는 shape의 필드를 id 문서에 병합합니다. 비어 있는 선택 필드는 저장된 값을 지웁니다
func (s *Service) Update(ctx context.Context, actor audit.Actor, id string, shape entity.Shape) (*entity.Record, error) {
	if err := s.check(shape); err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, label(shape))
		return nil, err
	}

	fields := shape.UpdateFields()
	return s.update(ctx, actor, id, shape.Label(), fields)
}

// Delete는 문서를 삭제합니다
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id string) error {
	before, title := s.snapshot(ctx, id)

	if err := s.accessor.Remove(ctx, id); err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionDelete, err.Error(), id, title)
		return err
	}

	s.audit.LogDelete(ctx, actor, s.Collection(), id, title, before, nil)
	s.changed(ctx)
	return nil
}

func (s *Service) update(ctx context.Context, actor audit.Actor, id, title string, fields entity.Fields) (*entity.Record, error) {
	before, current := s.snapshot(ctx, id)
	if title == "" {
		title = current
	}

	rec, err := s.accessor.Update(ctx, id, fields)
	if err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, title)
		return nil, err
	}

	s.audit.LogUpdate(ctx, actor, s.Collection(), id, title, before, fields)
	s.changed(ctx)
	return rec, nil
}

// snapshot은 감사 로그용으로 현재 필드와 제목을 읽습니다. 실패하면 비어 있는 값을 돌려줍니다
func (s *Service) snapshot(ctx context.Context, id string) (entity.Fields, string) {
	rec, err := s.accessor.GetByID(ctx, id)
	if err != nil {
		if !entity.IsNotFound(err) {
			logger.Warn(ctx, "failed to read audit snapshot",
				logger.Collection(s.Collection()),
				logger.DocumentID(id),
				zap.Error(err),
			)
		}
		return nil, ""
	}
	return rec.Fields(), recordTitle(rec)
}

func (s *Service) check(shape entity.Shape) error {
	if shape != nil && shape.Collection() != s.Collection() {
		return entity.NewValidationError("", "document does not belong to "+s.Collection())
	}
	return validation.Shape(s.validate, shape)
}

func (s *Service) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx, s.Collection())
	}
}

func label(shape entity.Shape) string {
	if shape == nil {
		return ""
	}
	return shape.Label()
}

// recordTitle은 저장된 문서에서 사람이 읽을 수 있는 이름을 고릅니다
func recordTitle(rec *entity.Record) string {
	for _, key := range []string{"name", "title", "question", "author"} {
		if v := rec.String(key); v != "" {
			return v
		}
	}
	return ""
}
