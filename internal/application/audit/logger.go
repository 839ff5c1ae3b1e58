// Package audit은 관리 작업을 logs 컬렉션에 기록합니다.
//
// 기록은 호출자의 성공 여부에 영향을 주지 않습니다. 실패는 zap 경고와
// prometheus 카운터로 보고된 뒤 Result에 담겨 돌아오며 호출자는 이를 무시해도 됩니다.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/circuitbreaker"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"go.uber.org/zap"
)

// Actor는 작업을 수행한 관리자입니다
type Actor struct {
	ID    string
	Email string
}

// normalized는 비어 있는 식별자를 "unknown"으로 바꿉니다
func (a Actor) normalized() Actor {
	if a.ID == "" {
		a.ID = entity.UnknownActor
	}
	if a.Email == "" {
		a.Email = entity.UnknownActor
	}
	return a
}

// Result는 감사 로그 기록 결과입니다. Err는 이미 보고된 *entity.LoggingFailure입니다
type Result struct {
	EntryID string
	Err     error
}

// OK는 기록에 성공했는지 반환합니다
func (r Result) OK() bool {
	return r.Err == nil
}

// Config는 감사 로거 설정입니다
type Config struct {
	// FailureThreshold는 연속 실패가 이 값에 도달하면 기록을 잠시 건너뜁니다
	FailureThreshold uint32
	// OpenTimeout은 건너뛰기 상태를 유지하는 시간입니다
	OpenTimeout time.Duration
}

// DefaultConfig는 기본 설정을 반환합니다
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Logger는 감사 로거입니다
type Logger struct {
	store   repository.DocumentStore
	breaker *circuitbreaker.CircuitBreaker
}

// NewLogger는 새로운 감사 로거를 생성합니다. timestamp는 저장소가 쓰기 시점에 채웁니다
func NewLogger(store repository.DocumentStore, cfg Config) *Logger {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}

	l := &Logger{
		store: store,
	}
	l.breaker = circuitbreaker.NewCircuitBreaker("audit_log", circuitbreaker.Config{
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.FailureThreshold),
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn(context.Background(), "audit circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				logger.CircuitState(to.String()),
			)
		},
	})
	return l
}

// LogCreate는 생성 성공을 기록합니다
func (l *Logger) LogCreate(ctx context.Context, actor Actor, collection, documentID, documentTitle string, before, after entity.Fields) Result {
	return l.logSuccess(ctx, entity.ActionCreate, actor, collection, documentID, documentTitle, before, after)
}

// LogUpdate는 수정 성공을 기록합니다
func (l *Logger) LogUpdate(ctx context.Context, actor Actor, collection, documentID, documentTitle string, before, after entity.Fields) Result {
	return l.logSuccess(ctx, entity.ActionUpdate, actor, collection, documentID, documentTitle, before, after)
}

// LogDelete는 삭제 성공을 기록합니다
func (l *Logger) LogDelete(ctx context.Context, actor Actor, collection, documentID, documentTitle string, before, after entity.Fields) Result {
	return l.logSuccess(ctx, entity.ActionDelete, actor, collection, documentID, documentTitle, before, after)
}

// LogError는 실패한 작업을 status=error로 기록합니다. documentID와 documentTitle은 선택입니다
func (l *Logger) LogError(ctx context.Context, actor Actor, collection string, action entity.Action, errorMessage, documentID, documentTitle string) Result {
	actor = actor.normalized()
	return l.write(ctx, &entity.LogEntry{
		AdminID:       actor.ID,
		AdminEmail:    actor.Email,
		Action:        action,
		Collection:    collection,
		DocumentID:    documentID,
		DocumentTitle: documentTitle,
		Status:        entity.StatusError,
		ErrorMessage:  errorMessage,
	})
}

// LogAuthEvent는 로그인/로그아웃 시도를 "auth" 컬렉션명으로 기록합니다
func (l *Logger) LogAuthEvent(ctx context.Context, actorID, actorEmail string, action entity.Action, success bool, errorMessage string) Result {
	actor := Actor{ID: actorID, Email: actorEmail}.normalized()
	entry := &entity.LogEntry{
		AdminID:    actor.ID,
		AdminEmail: actor.Email,
		Action:     action,
		Collection: entity.AuthCollection,
		Status:     entity.StatusSuccess,
	}
	if !success {
		entry.Status = entity.StatusError
		entry.ErrorMessage = errorMessage
	}
	return l.write(ctx, entry)
}

func (l *Logger) logSuccess(ctx context.Context, action entity.Action, actor Actor, collection, documentID, documentTitle string, before, after entity.Fields) Result {
	actor = actor.normalized()
	return l.write(ctx, &entity.LogEntry{
		AdminID:       actor.ID,
		AdminEmail:    actor.Email,
		Action:        action,
		Collection:    collection,
		DocumentID:    documentID,
		DocumentTitle: documentTitle,
		ChangesBefore: before,
		ChangesAfter:  after,
		Status:        entity.StatusSuccess,
	})
}

// write는 로그 문서를 삽입합니다. 어떤 실패도 panic이나 에러 반환으로 이어지지 않습니다
func (l *Logger) write(ctx context.Context, entry *entity.LogEntry) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = l.fail(ctx, entry, errors.New("panic while writing audit log"))
			logger.Error(ctx, "audit log write panicked", zap.Any("panic", r))
		}
	}()

	out, err := l.breaker.Execute(ctx, func() (interface{}, error) {
		return l.store.Insert(ctx, entity.LogsCollection, entry.ToFields())
	})
	if err != nil {
		return l.fail(ctx, entry, err)
	}

	id, _ := out.(string)
	metrics.GetMetrics().RecordAuditEntry(string(entry.Action), "written")
	logger.Debug(ctx, "audit log written",
		logger.Action(string(entry.Action)),
		logger.Collection(entry.Collection),
		logger.DocumentID(entry.DocumentID),
		zap.String("entry_id", id),
	)
	return Result{EntryID: id}
}

// fail은 실패를 진단 채널로 보고하고 Result로 돌려줍니다
func (l *Logger) fail(ctx context.Context, entry *entity.LogEntry, err error) Result {
	outcome := "failed"
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		outcome = "skipped"
	}

	failure := &entity.LoggingFailure{Action: entry.Action, Collection: entry.Collection, Err: err}
	metrics.GetMetrics().RecordAuditEntry(string(entry.Action), outcome)
	logger.Warn(ctx, "audit log not recorded",
		logger.Action(string(entry.Action)),
		logger.Collection(entry.Collection),
		logger.DocumentID(entry.DocumentID),
		logger.AdminID(entry.AdminID),
		zap.String("outcome", outcome),
		zap.Error(err),
	)
	return Result{Err: failure}
}
