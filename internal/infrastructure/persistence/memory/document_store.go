package memory

import (
	"context"
	"sync"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentStore는 프로세스 메모리에 문서를 보관하는 저장소입니다 (개발 모드, 테스트용).
// 모든 작업은 하나의 mutex로 직렬화됩니다
type DocumentStore struct {
	mu          sync.Mutex
	collections map[string]*collection
	newID       func() string
	now         func() time.Time
	watchers    []*watcher
}

type watcher struct {
	collections map[string]bool
	ch          chan entity.ChangeEvent
}

type collection struct {
	docs  map[string]entity.Fields
	order []string
}

var (
	_ repository.DocumentStore = (*DocumentStore)(nil)
	_ repository.ChangeWatcher = (*DocumentStore)(nil)
)

// Option은 DocumentStore 옵션입니다
type Option func(*DocumentStore)

// WithIDGenerator는 ID 생성기를 교체합니다
func WithIDGenerator(fn func() string) Option {
	return func(s *DocumentStore) { s.newID = fn }
}

// WithClock은 entity.ServerTimestamp를 채울 시계를 교체합니다
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) { s.now = now }
}

// NewDocumentStore는 빈 메모리 저장소를 생성합니다
func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		collections: make(map[string]*collection),
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentStore) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]entity.Fields)}
		s.collections[name] = c
	}
	return c
}

func record(op, name string, start time.Time, err error) {
	status := "success"
	if err != nil && !entity.IsNotFound(err) {
		status = "error"
	}
	metrics.GetMetrics().RecordStoreOperation(op, name, status, time.Since(start))
}

// Get은 ID로 문서를 조회합니다
func (s *DocumentStore) Get(ctx context.Context, name, id string) (*entity.Record, error) {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(name).docs[id]
	if !ok {
		err := &entity.NotFoundError{Collection: name, ID: id}
		record("get", name, start, err)
		return nil, err
	}

	record("get", name, start, nil)
	return entity.RecordFromDocument(id, name, doc.Clone()), nil
}

// Find는 필터와 일치하는 문서를 삽입 순서대로 반환합니다
func (s *DocumentStore) Find(ctx context.Context, name string, filters []entity.Filter) ([]*entity.Record, error) {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	records := make([]*entity.Record, 0, len(c.order))
	for _, id := range c.order {
		doc := c.docs[id]
		if entity.MatchesAll(doc, filters) {
			records = append(records, entity.RecordFromDocument(id, name, doc.Clone()))
		}
	}

	record("find", name, start, nil)
	logger.Debug(ctx, "memory find", logger.Collection(name), zap.Int("count", len(records)))
	return records, nil
}

// Insert는 새 ID를 부여해 문서를 저장합니다
func (s *DocumentStore) Insert(ctx context.Context, name string, doc entity.Fields) (string, error) {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	c := s.coll(name)
	c.docs[id] = doc.ResolveServerTime(s.now().UTC())
	c.order = append(c.order, id)
	s.notify(name, id, "insert")

	record("insert", name, start, nil)
	return id, nil
}

// Update는 기존 문서에 필드를 병합합니다
func (s *DocumentStore) Update(ctx context.Context, name, id string, fields entity.Fields) error {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	doc, ok := c.docs[id]
	if !ok {
		err := &entity.NotFoundError{Collection: name, ID: id}
		record("update", name, start, err)
		return err
	}
	c.docs[id] = doc.Merge(fields.ResolveServerTime(s.now().UTC()))
	s.notify(name, id, "update")

	record("update", name, start, nil)
	return nil
}

// Delete는 문서를 삭제합니다. 없는 ID는 무시합니다
func (s *DocumentStore) Delete(ctx context.Context, name, id string) error {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coll(name).remove(id) {
		s.notify(name, id, "delete")
	}
	record("delete", name, start, nil)
	return nil
}

// BatchUpdate는 모든 대상이 존재할 때만 한 번에 적용합니다
func (s *DocumentStore) BatchUpdate(ctx context.Context, name string, entries []entity.BatchEntry) error {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	for _, e := range entries {
		if _, ok := c.docs[e.ID]; !ok {
			err := &entity.NotFoundError{Collection: name, ID: e.ID}
			record("batch_update", name, start, err)
			return err
		}
	}
	for _, e := range entries {
		c.docs[e.ID] = c.docs[e.ID].Merge(e.Fields.ResolveServerTime(s.now().UTC()))
		s.notify(name, e.ID, "update")
	}

	record("batch_update", name, start, nil)
	return nil
}

// DeleteMany는 필터와 일치하는 문서를 삭제합니다
func (s *DocumentStore) DeleteMany(ctx context.Context, name string, filters []entity.Filter) (int64, error) {
	start := time.Now()
	if err := entity.ValidateCollectionName(name); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	var deleted int64
	for _, id := range append([]string(nil), c.order...) {
		if entity.MatchesAll(c.docs[id], filters) {
			c.remove(id)
			s.notify(name, id, "delete")
			deleted++
		}
	}

	record("delete_many", name, start, nil)
	return deleted, nil
}

// HealthCheck는 항상 성공합니다
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	return nil
}

// Len은 컬렉션의 문서 수를 반환합니다
func (s *DocumentStore) Len(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.coll(name).docs)
}

func (c *collection) remove(id string) bool {
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Watch는 이후 변경을 채널로 전달합니다. 수신이 느리면 이벤트는 버려집니다
func (s *DocumentStore) Watch(ctx context.Context, collections ...string) (<-chan entity.ChangeEvent, error) {
	w := &watcher{collections: make(map[string]bool, len(collections)), ch: make(chan entity.ChangeEvent, 64)}
	for _, c := range collections {
		w.collections[c] = true
	}

	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, v := range s.watchers {
			if v == w {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		close(w.ch)
	}()

	return w.ch, nil
}

// notify는 s.mu를 잡은 상태에서 호출됩니다
func (s *DocumentStore) notify(collection, id, op string) {
	for _, w := range s.watchers {
		if !w.collections[collection] {
			continue
		}
		select {
		case w.ch <- entity.ChangeEvent{Collection: collection, DocumentID: id, Operation: op, At: time.Now()}:
		default:
		}
	}
}
