package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/content"
	"github.com/YouSangSon/academy-backoffice/internal/application/validation"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository/mocks"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/cache"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *cache.CacheRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, cache.NewCacheRepository(client, "catalog")
}

func TestCatalog_ReadThroughAndInvalidateOnMutation(t *testing.T) {
	mr, cacheRepo := newRedisCache(t)
	store := memory.NewDocumentStore()
	catalog := content.NewCatalog(store, cacheRepo, time.Minute)
	registry := content.NewRegistry(store, audit.NewLogger(store, audit.DefaultConfig()), validation.New(), catalog, nil)
	faq, _ := registry.Service(entity.FAQCollection)
	ctx := context.Background()

	docs, err := catalog.List(ctx, entity.FAQCollection)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.True(t, mr.Exists("content:faq"))

	_, err = faq.Create(ctx, admin, &entity.FAQItem{Question: "When does it start?", Answer: "May"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("content:faq"), "admin mutation invalidates the public cache")

	docs, err = catalog.List(ctx, entity.FAQCollection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "May", docs[0]["answer"])
	assert.NotEmpty(t, docs[0]["id"])

	// 저장소를 직접 바꿔도 TTL이 끝나기 전까지는 캐시된 값이 나간다
	_, err = store.Insert(ctx, entity.FAQCollection, entity.Fields{"question": "q2", "answer": "a2"})
	require.NoError(t, err)
	docs, err = catalog.List(ctx, entity.FAQCollection)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	mr.FastForward(2 * time.Minute)
	docs, err = catalog.List(ctx, entity.FAQCollection)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestCatalog_RejectsNonContentCollection(t *testing.T) {
	catalog := content.NewCatalog(memory.NewDocumentStore(), nil, time.Minute)

	for _, name := range []string{entity.LeadsCollection, entity.AdminsCollection, entity.LogsCollection} {
		_, err := catalog.List(context.Background(), name)
		assert.ErrorIs(t, err, entity.ErrInvalidCollection, name)
	}
}

func TestCatalog_CacheFailureIsBypassed(t *testing.T) {
	store := memory.NewDocumentStore()
	broken := new(mocks.CacheRepository)
	broken.On("Get", mock.Anything, "content:modules", mock.Anything).Return(assert.AnError)
	broken.On("Set", mock.Anything, "content:modules", mock.Anything, time.Minute).Return(assert.AnError)
	catalog := content.NewCatalog(store, broken, time.Minute)

	_, err := store.Insert(context.Background(), entity.ModulesCollection, entity.Fields{"title": "Go basics"})
	require.NoError(t, err)

	docs, err := catalog.List(context.Background(), entity.ModulesCollection)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	broken.AssertExpectations(t)
}

func TestCatalog_CurrentClass(t *testing.T) {
	store := memory.NewDocumentStore()
	catalog := content.NewCatalog(store, nil, time.Minute)
	ctx := context.Background()

	_, err := catalog.CurrentClass(ctx)
	assert.True(t, entity.IsNotFound(err))

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	_, err = store.Insert(ctx, entity.ClassesCollection, entity.Fields{"name": "Class 40", entity.FieldIsCurrentClass: true, entity.FieldUpdatedAt: older})
	require.NoError(t, err)
	_, err = store.Insert(ctx, entity.ClassesCollection, entity.Fields{"name": "Class 41", entity.FieldIsCurrentClass: true, entity.FieldUpdatedAt: newer})
	require.NoError(t, err)

	current, err := catalog.CurrentClass(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Class 41", current.String("name"))
}

func TestCatalog_FollowInvalidatesOnStoreChanges(t *testing.T) {
	mr, cacheRepo := newRedisCache(t)
	store := memory.NewDocumentStore()
	catalog := content.NewCatalog(store, cacheRepo, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- catalog.Follow(ctx, store) }()

	_, err := catalog.List(ctx, entity.PricingCollection)
	require.NoError(t, err)
	require.True(t, mr.Exists("content:pricing"))

	require.Eventually(t, func() bool {
		if !mr.Exists("content:pricing") {
			return true
		}
		_, _ = store.Insert(ctx, entity.PricingCollection, entity.Fields{"name": "Basic"})
		return false
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not stop after cancel")
	}
}

var _ repository.ChangeWatcher = (*memory.DocumentStore)(nil)
