package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/auth"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/cache"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *auth.Service
	audit *audit.Logger
	mr    *miniredis.Miniredis
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewDocumentStore()
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	now := time.Now().UTC()

	svc, err := auth.NewService(store, cache.NewSessionStore(client), auditLog, auth.Config{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, created, err := svc.EnsureAdmin(context.Background(), "Admin@Academy.test", "Admin", "s3cret!")
	require.NoError(t, err)
	require.True(t, created)

	return &fixture{svc: svc, audit: auditLog, mr: mr, clock: &now}
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := auth.NewService(memory.NewDocumentStore(), nil, nil, auth.Config{})
	assert.Error(t, err)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)

	admin, created, err := f.svc.EnsureAdmin(context.Background(), "admin@academy.test", "Admin", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "admin@academy.test", admin.Email)
}

func TestSignIn_AuthenticateSignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	events, cancel := f.svc.Subscribe()
	defer cancel()

	session, token, err := f.svc.SignIn(ctx, "admin@academy.test", "s3cret!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "admin@academy.test", session.Email)

	ev := <-events
	assert.Equal(t, entity.SessionSignedIn, ev.Type)
	assert.Equal(t, session.ID, ev.Session.ID)

	got, err := f.svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.AdminID, got.AdminID)

	require.NoError(t, f.svc.SignOut(ctx, token))
	ev = <-events
	assert.Equal(t, entity.SessionSignedOut, ev.Type)

	_, err = f.svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	logins, err := f.audit.List(ctx, audit.Query{Collection: entity.AuthCollection})
	require.NoError(t, err)
	require.Len(t, logins, 2)
	for _, e := range logins {
		assert.Equal(t, session.AdminID, e.AdminID)
		assert.Equal(t, entity.StatusSuccess, e.Status)
	}
}

func TestSignIn_WrongPasswordOrUnknownEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SignIn(ctx, "admin@academy.test", "wrong")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, _, err = f.svc.SignIn(ctx, "nobody@academy.test", "s3cret!")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	failures, err := f.audit.List(ctx, audit.Query{Collection: entity.AuthCollection, Status: entity.StatusError})
	require.NoError(t, err)
	require.Len(t, failures, 2)

	actors := []string{failures[0].AdminID, failures[1].AdminID}
	assert.Contains(t, actors, entity.UnknownActor)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)

	_, token, err := f.svc.SignIn(ctx, "admin@academy.test", "s3cret!")
	require.NoError(t, err)

	other, err := auth.NewService(memory.NewDocumentStore(), nil, nil, auth.Config{JWTSecret: "different"})
	require.NoError(t, err)
	_, err = other.Authenticate(ctx, token)
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, token, err := f.svc.SignIn(ctx, "admin@academy.test", "s3cret!")
	require.NoError(t, err)

	*f.clock = f.clock.Add(2 * time.Hour)
	_, err = f.svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	f := newFixture(t)

	events, cancel := f.svc.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
}
