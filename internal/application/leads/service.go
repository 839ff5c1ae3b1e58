// Package leads는 공개 문의/수강 신청 폼 제출을 처리합니다.
package leads

import (
	"context"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/application/validation"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service는 폼 제출을 저장하고 이벤트를 발행합니다
type Service struct {
	leads         *collection.Accessor
	registrations *collection.Accessor
	classes       *collection.Accessor
	validate      *validator.Validate
	publisher     repository.EventPublisher
	now           func() time.Time
}

// NewService는 새로운 Service를 생성합니다. publisher가 nil이면 이벤트를 발행하지 않습니다
func NewService(store repository.DocumentStore, validate *validator.Validate, publisher repository.EventPublisher) *Service {
	return &Service{
		leads:         collection.New(store, entity.LeadsCollection),
		registrations: collection.New(store, entity.RegistrationsCollection),
		classes:       collection.New(store, entity.ClassesCollection),
		validate:      validate,
		publisher:     publisher,
		now:           time.Now,
	}
}

// SubmitLead는 문의를 저장합니다
func (s *Service) SubmitLead(ctx context.Context, lead *entity.Lead) (*entity.Record, error) {
	if err := validation.Shape(s.validate, lead); err != nil {
		return nil, err
	}

	rec, err := s.leads.Create(ctx, lead.Fields())
	if err != nil {
		logger.Error(ctx, "failed to store lead", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, entity.EventLeadSubmitted, rec)
	return rec, nil
}

// SubmitRegistration은 수강 신청을 저장합니다. 존재하지 않는 기수에 대한 신청은 거부됩니다
func (s *Service) SubmitRegistration(ctx context.Context, reg *entity.Registration) (*entity.Record, error) {
	if err := validation.Shape(s.validate, reg); err != nil {
		return nil, err
	}

	if _, err := s.classes.GetByID(ctx, reg.ClassID); err != nil {
		if entity.IsNotFound(err) {
			return nil, &entity.ValidationError{Field: "classId", Reason: "class does not exist", Err: err}
		}
		return nil, err
	}

	rec, err := s.registrations.Create(ctx, reg.Fields())
	if err != nil {
		logger.Error(ctx, "failed to store registration", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, entity.EventRegistrationSubmitted, rec)
	return rec, nil
}

// publish의 실패는 제출 결과에 영향을 주지 않습니다
func (s *Service) publish(ctx context.Context, eventType string, rec *entity.Record) {
	if s.publisher == nil {
		return
	}

	event := &entity.DomainEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Timestamp:  s.now().UTC(),
		Collection: rec.Collection(),
		DocumentID: rec.ID(),
		Data:       rec.Fields(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "event not published",
			zap.String("event_type", eventType),
			logger.DocumentID(rec.ID()),
			zap.Error(err),
		)
	}
}
