package content

import (
	"context"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/go-playground/validator/v10"
)

// Manager는 관리자 API가 컬렉션 하나에 대해 수행하는 작업입니다
type Manager interface {
	Collection() string
	List(ctx context.Context, filters ...entity.Filter) ([]*entity.Record, error)
	Get(ctx context.Context, id string) (*entity.Record, error)
	Create(ctx context.Context, actor audit.Actor, shape entity.Shape) (*entity.Record, error)
	Update(ctx context.Context, actor audit.Actor, id string, shape entity.Shape) (*entity.Record, error)
	Delete(ctx context.Context, actor audit.Actor, id string) error
}

var (
	_ Manager = (*Service)(nil)
	_ Manager = (*ClassService)(nil)
	_ Manager = (*SubmissionService)(nil)
)

// Registry는 관리자 API가 다루는 컬렉션별 Manager 모음입니다
type Registry struct {
	managers map[string]Manager
	classes  *ClassService
}

// NewRegistry는 Shape가 정의된 모든 컬렉션에 대한 Service를 만듭니다
func NewRegistry(
	store repository.DocumentStore,
	auditLog *audit.Logger,
	validate *validator.Validate,
	catalog *Catalog,
	locker Locker,
	opts ...collection.Option,
) *Registry {
	var hook ChangeHook
	if catalog != nil {
		hook = catalog.Invalidate
	}

	newService := func(name string) *Service {
		return NewService(collection.New(store, name, opts...), auditLog, validate, hook)
	}

	r := &Registry{managers: make(map[string]Manager)}
	for _, name := range entity.ContentCollections {
		r.managers[name] = newService(name)
	}
	r.classes = NewClassService(newService(entity.ClassesCollection), locker)
	r.managers[entity.ClassesCollection] = r.classes

	// 제출 문서는 공개 폼에서만 생성되므로 관리자는 조회와 삭제만 합니다
	for _, name := range []string{entity.LeadsCollection, entity.RegistrationsCollection} {
		r.managers[name] = NewSubmissionService(newService(name))
	}
	return r
}

// Service는 컬렉션의 Manager를 반환합니다
func (r *Registry) Service(name string) (Manager, bool) {
	m, ok := r.managers[name]
	return m, ok
}

// Classes는 ClassService를 반환합니다
func (r *Registry) Classes() *ClassService {
	return r.classes
}
