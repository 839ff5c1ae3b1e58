package audit

import (
	"context"
	"sort"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.uber.org/zap"
)

// Query는 관리자 로그 뷰어의 조회 조건입니다. 빈 값은 조건에서 빠집니다
type Query struct {
	Action     entity.Action
	Collection string
	Status     entity.LogStatus
	AdminID    string
	Since      time.Time
	Limit      int
}

func (q Query) filters() []entity.Filter {
	var filters []entity.Filter
	if q.Action != "" {
		filters = append(filters, entity.Where(entity.LogFieldAction, entity.OpEq, string(q.Action)))
	}
	if q.Collection != "" {
		filters = append(filters, entity.Where(entity.LogFieldCollection, entity.OpEq, q.Collection))
	}
	if q.Status != "" {
		filters = append(filters, entity.Where(entity.LogFieldStatus, entity.OpEq, string(q.Status)))
	}
	if q.AdminID != "" {
		filters = append(filters, entity.Where(entity.LogFieldAdminID, entity.OpEq, q.AdminID))
	}
	if !q.Since.IsZero() {
		filters = append(filters, entity.Where(entity.LogFieldTimestamp, entity.OpGte, q.Since.UTC()))
	}
	return filters
}

// List는 조건에 맞는 로그를 최신순으로 반환합니다
func (l *Logger) List(ctx context.Context, q Query) ([]*entity.LogEntry, error) {
	records, err := l.store.Find(ctx, entity.LogsCollection, q.filters())
	if err != nil {
		return nil, entity.NewStoreError("list", entity.LogsCollection, err)
	}

	entries := make([]*entity.LogEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, entity.LogEntryFromRecord(r))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

// Purge는 before 이전에 기록된 로그를 일괄 삭제합니다. 로그를 지우는 유일한 경로입니다
func (l *Logger) Purge(ctx context.Context, actor Actor, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, entity.NewValidationError("before", "purge cutoff is required")
	}

	deleted, err := l.store.DeleteMany(ctx, entity.LogsCollection, []entity.Filter{
		entity.Where(entity.LogFieldTimestamp, entity.OpLt, before.UTC()),
	})
	if err != nil {
		return 0, entity.NewStoreError("purge", entity.LogsCollection, err)
	}

	actor = actor.normalized()
	logger.Info(ctx, "audit logs purged",
		logger.AdminID(actor.ID),
		logger.AdminEmail(actor.Email),
		zap.Time("before", before),
		logger.Count(int(deleted)),
	)
	return deleted, nil
}
