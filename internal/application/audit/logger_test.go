package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository/mocks"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var admin = audit.Actor{ID: "admin-1", Email: "admin@academy.test"}

func TestLogCreate_Class41Scenario(t *testing.T) {
	store := memory.NewDocumentStore()
	classes := collection.New(store, entity.ClassesCollection)
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	ctx := context.Background()

	rec, err := classes.Create(ctx, entity.Fields{"name": "Class 41", "number": 41})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID())
	assert.False(t, rec.CreatedAt().IsZero())
	assert.False(t, rec.UpdatedAt().IsZero())

	res := auditLog.LogCreate(ctx, admin, entity.ClassesCollection, rec.ID(), rec.String("name"), nil, rec.Fields())
	require.True(t, res.OK())
	assert.NotEmpty(t, res.EntryID)

	entries, err := auditLog.List(ctx, audit.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, entity.ActionCreate, e.Action)
	assert.Equal(t, entity.ClassesCollection, e.Collection)
	assert.Equal(t, entity.StatusSuccess, e.Status)
	assert.Equal(t, rec.ID(), e.DocumentID)
	assert.Equal(t, "Class 41", e.DocumentTitle)
	assert.Equal(t, "admin-1", e.AdminID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Nil(t, e.ChangesBefore)
	assert.Equal(t, 41, e.ChangesAfter["number"])
}

func TestLog_NeverFailsCallerWithFailingStore(t *testing.T) {
	store := new(mocks.DocumentStore)
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.Anything).Return("", errors.New("store unavailable"))
	auditLog := audit.NewLogger(store, audit.Config{FailureThreshold: 100})
	ctx := context.Background()

	results := []audit.Result{
		auditLog.LogCreate(ctx, admin, "faq", "f1", "", nil, entity.Fields{"q": "?"}),
		auditLog.LogUpdate(ctx, admin, "faq", "f1", "", nil, nil),
		auditLog.LogDelete(ctx, admin, "faq", "f1", "", nil, nil),
		auditLog.LogError(ctx, admin, "faq", entity.ActionUpdate, "boom", "f1", ""),
		auditLog.LogAuthEvent(ctx, "", "x@y.z", entity.ActionLogin, false, "bad password"),
	}

	for _, res := range results {
		assert.False(t, res.OK())
		var lf *entity.LoggingFailure
		assert.ErrorAs(t, res.Err, &lf)
	}
}

func TestLog_PanickingStoreIsContained(t *testing.T) {
	store := new(mocks.DocumentStore)
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.Anything).Run(func(mock.Arguments) {
		panic("driver bug")
	})
	auditLog := audit.NewLogger(store, audit.DefaultConfig())

	var res audit.Result
	assert.NotPanics(t, func() {
		res = auditLog.LogCreate(context.Background(), admin, "faq", "f1", "", nil, nil)
	})
	assert.False(t, res.OK())
}

func TestLog_FailureReportedOnDiagnosticSink(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	store := new(mocks.DocumentStore)
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.Anything).Return("", errors.New("quota exceeded"))
	auditLog := audit.NewLogger(store, audit.DefaultConfig())

	auditLog.LogDelete(context.Background(), admin, "pricing", "p1", "Basic", nil, nil)

	found := logs.FilterMessage("audit log not recorded").All()
	require.Len(t, found, 1)
	assert.Equal(t, "pricing", found[0].ContextMap()["collection"])
}

func TestLog_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	store := new(mocks.DocumentStore)
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.Anything).Return("", errors.New("down"))
	auditLog := audit.NewLogger(store, audit.Config{FailureThreshold: 2, OpenTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res := auditLog.LogCreate(ctx, admin, "faq", "f1", "", nil, nil)
		assert.False(t, res.OK())
	}

	store.AssertNumberOfCalls(t, "Insert", 2)
}

func TestLogEntry_OmitsUndefinedKeys(t *testing.T) {
	store := new(mocks.DocumentStore)
	var written entity.Fields
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(2).(entity.Fields) }).
		Return("log-1", nil)
	auditLog := audit.NewLogger(store, audit.DefaultConfig())

	res := auditLog.LogUpdate(context.Background(), admin, "classes", "c1", "", nil, entity.Fields{"seats": 10, "note": nil})
	require.True(t, res.OK())

	assert.NotContains(t, written, entity.LogFieldChangesBefore)
	assert.NotContains(t, written, entity.LogFieldDocumentTitle)
	assert.NotContains(t, written, entity.LogFieldErrorMessage)
	after := written[entity.LogFieldChangesAfter].(map[string]interface{})
	assert.NotContains(t, after, "note")
	assert.Equal(t, 10, after["seats"])
}

func TestLogError_And_AuthEvents(t *testing.T) {
	store := memory.NewDocumentStore()
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	ctx := context.Background()

	auditLog.LogError(ctx, audit.Actor{}, entity.PricingCollection, entity.ActionCreate, "store unavailable", "", "Premium")
	auditLog.LogAuthEvent(ctx, "admin-1", "admin@academy.test", entity.ActionLogin, true, "ignored")
	auditLog.LogAuthEvent(ctx, "", "", entity.ActionLogin, false, "invalid email or password")

	errs, err := auditLog.List(ctx, audit.Query{Status: entity.StatusError})
	require.NoError(t, err)
	require.Len(t, errs, 2)

	auth, err := auditLog.List(ctx, audit.Query{Collection: entity.AuthCollection, Status: entity.StatusSuccess})
	require.NoError(t, err)
	require.Len(t, auth, 1)
	assert.Empty(t, auth[0].ErrorMessage)

	pricing, err := auditLog.List(ctx, audit.Query{Collection: entity.PricingCollection})
	require.NoError(t, err)
	require.Len(t, pricing, 1)
	assert.Equal(t, entity.UnknownActor, pricing[0].AdminID)
	assert.Equal(t, "Premium", pricing[0].DocumentTitle)
	assert.Equal(t, "store unavailable", pricing[0].ErrorMessage)
}

func TestPurge(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	store := memory.NewDocumentStore(memory.WithClock(func() time.Time { return clock }))
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	ctx := context.Background()

	auditLog.LogCreate(ctx, admin, "faq", "old", "", nil, nil)
	clock = now.Add(48 * time.Hour)
	auditLog.LogCreate(ctx, admin, "faq", "new", "", nil, nil)

	_, err := auditLog.Purge(ctx, admin, time.Time{})
	assert.True(t, entity.IsValidation(err))

	deleted, err := auditLog.Purge(ctx, admin, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, err := auditLog.List(ctx, audit.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].DocumentID)
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	store := memory.NewDocumentStore(memory.WithClock(func() time.Time { return clock }))
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		clock = base.Add(time.Duration(i) * time.Minute)
		auditLog.LogUpdate(ctx, admin, "faq", id, "", nil, nil)
	}

	entries, err := auditLog.List(ctx, audit.Query{Action: entity.ActionUpdate, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].DocumentID)
	assert.Equal(t, "b", entries[1].DocumentID)
}

func TestWrite_TimestampAssignedByStore(t *testing.T) {
	store := new(mocks.DocumentStore)
	store.On("Insert", mock.Anything, entity.LogsCollection, mock.MatchedBy(func(f entity.Fields) bool {
		return f[entity.LogFieldTimestamp] == entity.ServerTimestamp
	})).Return("log-1", nil)
	auditLog := audit.NewLogger(store, audit.DefaultConfig())

	res := auditLog.LogDelete(context.Background(), admin, "faq", "q1", "", nil, nil)
	require.True(t, res.OK())
	store.AssertExpectations(t)
}

func TestWrite_TimestampComesFromStoreClock(t *testing.T) {
	storeTime := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	store := memory.NewDocumentStore(memory.WithClock(func() time.Time { return storeTime }))
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	ctx := context.Background()

	require.True(t, auditLog.LogAuthEvent(ctx, "admin-1", "admin@academy.test", entity.ActionLogin, true, "").OK())

	entries, err := auditLog.List(ctx, audit.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, storeTime, entries[0].Timestamp)
}
