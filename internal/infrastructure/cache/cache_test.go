package cache

import (
	"context"
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheRepository_SetGet(t *testing.T) {
	mr, client := newTestClient(t)
	repo := NewCacheRepository(client, "catalog")
	ctx := context.Background()

	type item struct {
		Name string `json:"name"`
	}

	var out []item
	err := repo.Get(ctx, "content:faq", &out)
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "content:faq", []item{{Name: "a"}}, time.Minute))
	require.NoError(t, repo.Get(ctx, "content:faq", &out))
	assert.Equal(t, []item{{Name: "a"}}, out)

	exists, err := repo.Exists(ctx, "content:faq")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)
	exists, err = repo.Exists(ctx, "content:faq")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheRepository_Delete(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewCacheRepository(client, "catalog")
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", 1, 0))
	require.NoError(t, repo.Set(ctx, "b", 2, 0))
	require.NoError(t, repo.Delete(ctx, "a", "b"))
	require.NoError(t, repo.Delete(ctx))

	var n int
	assert.ErrorIs(t, repo.Get(ctx, "a", &n), repository.ErrCacheMiss)
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	session := &entity.Session{
		ID:        "s-1",
		AdminID:   "admin-1",
		Email:     "admin@academy.test",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, session, time.Hour))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, session.AdminID, got.AdminID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	require.NoError(t, store.Save(ctx, session, time.Minute))
	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "s-1")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)
}

func TestRateLimiter_Allow(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewRateLimiter(client, "ratelimit:leads", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocker(t *testing.T) {
	_, client := newTestClient(t)
	locker := NewLocker(client, time.Minute, 100*time.Millisecond)
	ctx := context.Background()

	release, err := locker.Lock(ctx, "lock:current-class")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "lock:current-class")
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, release(ctx))

	release2, err := locker.Lock(ctx, "lock:current-class")
	require.NoError(t, err)

	// 이미 해제된 토큰으로는 다른 보유자의 락을 풀 수 없다
	require.NoError(t, release(ctx))
	_, err = locker.Lock(ctx, "lock:current-class")
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	require.NoError(t, release2(ctx))
}
