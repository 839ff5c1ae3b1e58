package content

import (
	"context"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
)

// SubmissionService는 공개 폼 제출(leads, registrations)에 대한 관리 작업입니다.
// 생성과 수정은 공개 폼 검증(기수 존재 확인 등)을 거쳐야 하므로 관리자 경로에서는 허용하지 않습니다
type SubmissionService struct {
	*Service
}

// NewSubmissionService는 조회와 삭제만 허용하는 SubmissionService를 생성합니다
func NewSubmissionService(svc *Service) *SubmissionService {
	return &SubmissionService{Service: svc}
}

// Create는 항상 ValidationError를 반환합니다
func (s *SubmissionService) Create(ctx context.Context, actor audit.Actor, shape entity.Shape) (*entity.Record, error) {
	err := s.readOnly()
	s.audit.LogError(ctx, actor, s.Collection(), entity.ActionCreate, err.Error(), "", label(shape))
	return nil, err
}

// Update는 항상 ValidationError를 반환합니다
func (s *SubmissionService) Update(ctx context.Context, actor audit.Actor, id string, shape entity.Shape) (*entity.Record, error) {
	err := s.readOnly()
	s.audit.LogError(ctx, actor, s.Collection(), entity.ActionUpdate, err.Error(), id, label(shape))
	return nil, err
}

func (s *SubmissionService) readOnly() error {
	return &entity.ValidationError{
		Field:  "collection",
		Reason: s.Collection() + " are created through the public forms and cannot be edited",
	}
}
