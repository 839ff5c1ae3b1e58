package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	})
}

func TestDocumentStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(sequentialIDs())

	id, err := s.Insert(ctx, "classes", entity.Fields{"name": "Class 41", "number": 41})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	rec, err := s.Get(ctx, "classes", id)
	require.NoError(t, err)
	assert.Equal(t, "Class 41", rec.String("name"))

	require.NoError(t, s.Update(ctx, "classes", id, entity.Fields{"seats": 20}))
	rec, err = s.Get(ctx, "classes", id)
	require.NoError(t, err)
	assert.Equal(t, entity.Fields{"name": "Class 41", "number": 41, "seats": 20}, rec.Fields())

	require.NoError(t, s.Delete(ctx, "classes", id))
	_, err = s.Get(ctx, "classes", id)
	assert.True(t, entity.IsNotFound(err))

	// 없는 ID 삭제는 에러가 아닙니다
	assert.NoError(t, s.Delete(ctx, "classes", id))
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	s := NewDocumentStore()
	err := s.Update(context.Background(), "classes", "nope", entity.Fields{"a": 1})
	assert.True(t, entity.IsNotFound(err))
}

func TestDocumentStore_FindKeepsInsertionOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(sequentialIDs())
	for i := 1; i <= 4; i++ {
		_, err := s.Insert(ctx, "classes", entity.Fields{"number": i, "isCurrentClass": i == 3})
		require.NoError(t, err)
	}

	all, err := s.Find(ctx, "classes", nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "doc-1", all[0].ID())
	assert.Equal(t, "doc-4", all[3].ID())

	flagged, err := s.Find(ctx, "classes", []entity.Filter{entity.Where("isCurrentClass", entity.OpEq, true)})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "doc-3", flagged[0].ID())

	empty, err := s.Find(ctx, "pricing", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDocumentStore_BatchUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(sequentialIDs())
	a, _ := s.Insert(ctx, "classes", entity.Fields{"isCurrentClass": true})
	b, _ := s.Insert(ctx, "classes", entity.Fields{"isCurrentClass": true})

	err := s.BatchUpdate(ctx, "classes", []entity.BatchEntry{
		{ID: a, Fields: entity.Fields{"isCurrentClass": false}},
		{ID: "missing", Fields: entity.Fields{"isCurrentClass": false}},
	})
	assert.True(t, entity.IsNotFound(err))

	rec, _ := s.Get(ctx, "classes", a)
	v, _ := rec.Get("isCurrentClass")
	assert.Equal(t, true, v)

	require.NoError(t, s.BatchUpdate(ctx, "classes", []entity.BatchEntry{
		{ID: a, Fields: entity.Fields{"isCurrentClass": false}},
		{ID: b, Fields: entity.Fields{"isCurrentClass": false}},
	}))
	flagged, _ := s.Find(ctx, "classes", []entity.Filter{entity.Where("isCurrentClass", entity.OpEq, true)})
	assert.Empty(t, flagged)
}

func TestDocumentStore_DeleteMany(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	for i := 0; i < 5; i++ {
		_, _ = s.Insert(ctx, "logs", entity.Fields{"n": i})
	}

	n, err := s.DeleteMany(ctx, "logs", []entity.Filter{entity.Where("n", entity.OpLt, 3)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 2, s.Len("logs"))
}

func TestDocumentStore_InvalidCollection(t *testing.T) {
	s := NewDocumentStore()
	_, err := s.Find(context.Background(), "bad name!", nil)
	assert.ErrorIs(t, err, entity.ErrInvalidCollection)
}

func TestDocumentStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewDocumentStore(sequentialIDs())

	events, err := s.Watch(ctx, "classes")
	require.NoError(t, err)

	_, _ = s.Insert(ctx, "pricing", entity.Fields{"name": "ignored"})
	id, _ := s.Insert(ctx, "classes", entity.Fields{"name": "Class 41"})

	ev := <-events
	assert.Equal(t, "classes", ev.Collection)
	assert.Equal(t, id, ev.DocumentID)
	assert.Equal(t, "insert", ev.Operation)

	cancel()
	for range events {
	}
}
