package content

import (
	"context"
	"fmt"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
)

// currentClassLockKey는 SetCurrentClass를 직렬화할 때 쓰는 락 키입니다
const currentClassLockKey = "lock:classes:current"

// Locker는 키 단위 분산 락입니다
type Locker interface {
	Lock(ctx context.Context, key string) (func(context.Context) error, error)
}

// ClassService는 classes 컬렉션 관리 작업에 현재 기수 표시를 더한 것입니다
type ClassService struct {
	*Service
	locker Locker
}

// NewClassService는 ClassService를 생성합니다. locker가 nil이면 락 없이 동작합니다
func NewClassService(svc *Service, locker Locker) *ClassService {
	return &ClassService{Service: svc, locker: locker}
}

// Create는 기수를 생성합니다. isCurrentClass가 true이면 표시 없이 만든 뒤,
// SetCurrentClass와 같은 순서로 다른 기수의 표시를 지우고 새 기수를 표시합니다.
// 표시 단계가 실패하면 기수는 표시 없이 남고 에러를 반환합니다
func (s *ClassService) Create(ctx context.Context, actor audit.Actor, shape entity.Shape) (*entity.Record, error) {
	class, promote := currentRequested(shape)
	if !promote {
		return s.Service.Create(ctx, actor, shape)
	}

	rec, err := s.Service.Create(ctx, actor, class)
	if err != nil {
		return nil, err
	}
	flagged, err := s.SetCurrentClass(ctx, actor, rec.ID())
	if err != nil {
		return nil, err
	}
	return withCurrentFlag(rec, flagged), nil
}

// Update는 기수를 수정합니다. isCurrentClass=true는 SetCurrentClass를 거쳐 적용됩니다
func (s *ClassService) Update(ctx context.Context, actor audit.Actor, id string, shape entity.Shape) (*entity.Record, error) {
	class, promote := currentRequested(shape)
	if !promote {
		return s.Service.Update(ctx, actor, id, shape)
	}

	rec, err := s.Service.Update(ctx, actor, id, class)
	if err != nil {
		return nil, err
	}
	flagged, err := s.SetCurrentClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return withCurrentFlag(rec, flagged), nil
}

// currentRequested는 shape가 현재 기수 표시를 요청하면 표시를 뺀 복사본과 true를 반환합니다
func currentRequested(shape entity.Shape) (*entity.Class, bool) {
	class, ok := shape.(*entity.Class)
	if !ok || class == nil || class.IsCurrentClass == nil || !*class.IsCurrentClass {
		return nil, false
	}
	plain := *class
	plain.IsCurrentClass = nil
	return &plain, true
}

func withCurrentFlag(rec, flagged *entity.Record) *entity.Record {
	fields := rec.Fields()
	fields[entity.FieldIsCurrentClass] = true
	return entity.ReconstructRecord(rec.ID(), rec.Collection(), fields, rec.CreatedAt(), flagged.UpdatedAt())
}

// SetCurrentClass는 id 기수에 isCurrentClass를 설정하고 다른 기수의 표시를 지웁니다.
//
// 조회, 일괄 해제, 대상 쓰기는 별도의 왕복이며 서로 원자적이지 않습니다.
// 두 관리자가 동시에 호출하면 표시된 기수가 0개 또는 여러 개가 될 수 있습니다.
// locker가 설정된 경우에만 이 구간이 프로세스 간에 직렬화됩니다.
func (s *ClassService) SetCurrentClass(ctx context.Context, actor audit.Actor, id string) (*entity.Record, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, currentClassLockKey)
		if err != nil {
			s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, "")
			return nil, fmt.Errorf("failed to lock current class: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				logger.Warn(ctx, "failed to release current class lock", zap.Error(err))
			}
		}()
	}

	target, err := s.accessor.GetByID(ctx, id)
	if err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, "")
		return nil, err
	}
	title := recordTitle(target)

	flagged, err := s.accessor.GetAll(ctx, entity.Where(entity.FieldIsCurrentClass, entity.OpEq, true))
	if err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, title)
		return nil, err
	}

	var clears []entity.BatchEntry
	for _, rec := range flagged {
		if rec.ID() == id {
			continue
		}
		clears = append(clears, entity.BatchEntry{
			ID:     rec.ID(),
			Fields: entity.Fields{entity.FieldIsCurrentClass: false},
		})
	}

	if len(clears) > 0 {
		if err := s.accessor.BatchUpdate(ctx, clears); err != nil {
			s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, title)
			return nil, err
		}
		for _, rec := range flagged {
			if rec.ID() == id {
				continue
			}
			s.audit.LogUpdate(ctx, actor, s.Collection(), rec.ID(), recordTitle(rec),
				entity.Fields{entity.FieldIsCurrentClass: true},
				entity.Fields{entity.FieldIsCurrentClass: false},
			)
		}
	}

	rec, err := s.accessor.Update(ctx, id, entity.Fields{entity.FieldIsCurrentClass: true})
	if err != nil {
		s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, title)
		return nil, err
	}

	var before entity.Fields
	if v, ok := target.Get(entity.FieldIsCurrentClass); ok {
		before = entity.Fields{entity.FieldIsCurrentClass: v}
	}
	s.audit.LogUpdate(ctx, actor, s.Collection(), id, title, before, entity.Fields{entity.FieldIsCurrentClass: true})
	s.changed(ctx)

	logger.Info(ctx, "current class changed",
		logger.DocumentID(id),
		logger.AdminID(actor.ID),
		zap.Int("cleared", len(clears)),
	)
	return rec, nil
}
