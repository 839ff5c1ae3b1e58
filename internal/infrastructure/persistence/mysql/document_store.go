package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"github.com/google/uuid"
)

// DocumentStore는 컬렉션마다 테이블 하나를 두고 필드를 JSON 컬럼에 저장하는 문서 저장소입니다
type DocumentStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
	newID   func() string
	tables  sync.Map
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore는 MySQL 문서 저장소를 생성합니다
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{
		db:      db,
		metrics: metrics.GetMetrics(),
		newID:   uuid.NewString,
	}
}

// timeLayout은 JSON 컬럼에 넣는 시각 형식입니다. 폭이 고정되어 있어 문자열 비교 순서가 시간 순서와 같습니다
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// serverTimeExpr은 timeLayout과 같은 형식으로 만든 DB 서버 시각입니다
const serverTimeExpr = "DATE_FORMAT(UTC_TIMESTAMP(6), '%Y-%m-%dT%H:%i:%s.%f000Z')"

// jsonValue는 JSON 컬럼에 쓸 값으로 바꿉니다. 시각은 UTC timeLayout 문자열이 됩니다
func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(timeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(timeLayout)
	case entity.Fields:
		return jsonValue(map[string]interface{}(t))
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = jsonValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = jsonValue(val)
		}
		return out
	default:
		return v
	}
}

// quoteIdentifier는 MySQL 식별자를 인용합니다
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// jsonPath는 필드명을 JSON 경로로 바꿉니다. 필드명은 ValidateFieldName을 통과한 값입니다
func jsonPath(field string) string {
	return `'$."` + field + `"'`
}

// ensureTable은 컬렉션 테이블이 없으면 생성합니다. 프로세스당 컬렉션별로 한 번만 실행합니다
func (s *DocumentStore) ensureTable(ctx context.Context, collection string) error {
	if err := entity.ValidateCollectionName(collection); err != nil {
		return err
	}
	if _, ok := s.tables.Load(collection); ok {
		return nil
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(36) PRIMARY KEY,
			data JSON NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, quoteIdentifier(collection))

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure table exists: %w", err)
	}
	s.tables.Store(collection, struct{}{})
	return nil
}

func (s *DocumentStore) observe(ctx context.Context, op, collection string, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	switch {
	case err == nil:
	case entity.IsNotFound(err):
		status = "not_found"
		err = nil
	default:
		status = "error"
	}
	s.metrics.RecordStoreOperation(op, collection, status, duration)
	logger.LogStoreOperation(ctx, op, collection, duration.Milliseconds(), err)
}

// splitTimestamps는 타임스탬프를 컬럼 값으로 분리하고 나머지 필드를 JSON으로 직렬화합니다
func splitTimestamps(doc entity.Fields) (data []byte, createdAt, updatedAt *time.Time, err error) {
	rest := doc.Clone()
	if t, ok := entity.AsTime(rest[entity.FieldCreatedAt]); ok {
		t = t.UTC()
		createdAt = &t
	}
	if t, ok := entity.AsTime(rest[entity.FieldUpdatedAt]); ok {
		t = t.UTC()
		updatedAt = &t
	}
	delete(rest, entity.FieldID)
	delete(rest, entity.FieldCreatedAt)
	delete(rest, entity.FieldUpdatedAt)
	for _, k := range rest.ServerTimeKeys() {
		delete(rest, k)
	}

	if rest == nil {
		rest = entity.Fields{}
	}
	data, err = json.Marshal(jsonValue(rest))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal data: %w", err)
	}
	return data, createdAt, updatedAt, nil
}

func scanRecord(collection string, scan func(dest ...interface{}) error) (*entity.Record, error) {
	var (
		id                   string
		data                 []byte
		createdAt, updatedAt time.Time
	)
	if err := scan(&id, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	fields := entity.Fields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return entity.ReconstructRecord(id, collection, fields, createdAt.UTC(), updatedAt.UTC()), nil
}

// Get은 ID로 문서를 조회합니다
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (rec *entity.Record, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "get", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, data, created_at, updated_at FROM %s WHERE id = ?", quoteIdentifier(collection))
	rec, err = scanRecord(collection, s.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entity.NotFoundError{Collection: collection, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return rec, nil
}

// buildWhere는 필터를 WHERE 절로 변환합니다. 값은 JSON으로 직렬화해 JSON 비교를 합니다
func buildWhere(filters []entity.Filter) (string, []interface{}, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filters))
	args := make([]interface{}, 0, len(filters))
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return "", nil, err
		}
		switch f.Field {
		case entity.FieldID:
			clauses = append(clauses, "id "+string(f.Op)+" ?")
			args = append(args, fmt.Sprint(f.Value))
		case entity.FieldCreatedAt, entity.FieldUpdatedAt:
			t, ok := entity.AsTime(f.Value)
			if !ok {
				return "", nil, fmt.Errorf("%w: %s expects a time", entity.ErrInvalidFilter, f.Field)
			}
			column := "created_at"
			if f.Field == entity.FieldUpdatedAt {
				column = "updated_at"
			}
			clauses = append(clauses, column+" "+string(f.Op)+" ?")
			args = append(args, t.UTC())
		default:
			if err := entity.ValidateFieldName(f.Field); err != nil {
				return "", nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
			}
			value, err := json.Marshal(jsonValue(f.Value))
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
			}
			clauses = append(clauses, fmt.Sprintf("JSON_EXTRACT(data, %s) %s CAST(? AS JSON)", jsonPath(f.Field), sqlOp(f.Op)))
			args = append(args, string(value))
		}
	}
	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

func sqlOp(op entity.FilterOp) string {
	if op == entity.OpEq {
		return "="
	}
	return string(op)
}

// Find는 필터와 일치하는 문서를 생성 순서대로 조회합니다
func (s *DocumentStore) Find(ctx context.Context, collection string, filters []entity.Filter) (records []*entity.Record, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "find", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(filters)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, data, created_at, updated_at FROM %s %s ORDER BY created_at, id",
		quoteIdentifier(collection), where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	records = make([]*entity.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(collection, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

// Insert는 UUID를 부여해 문서를 저장합니다
func (s *DocumentStore) Insert(ctx context.Context, collection string, doc entity.Fields) (id string, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "insert", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return "", err
	}

	data, createdAt, updatedAt, err := splitTimestamps(doc)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	if createdAt == nil {
		createdAt = &now
	}
	if updatedAt == nil {
		updatedAt = createdAt
	}

	dataExpr := "?"
	if keys := doc.ServerTimeKeys(); len(keys) > 0 {
		paths := make([]string, 0, len(keys))
		for _, k := range keys {
			if err := entity.ValidateFieldName(k); err != nil {
				return "", err
			}
			paths = append(paths, jsonPath(k)+", "+serverTimeExpr)
		}
		dataExpr = "JSON_SET(CAST(? AS JSON), " + strings.Join(paths, ", ") + ")"
	}

	id = s.newID()
	query := fmt.Sprintf("INSERT INTO %s (id, data, created_at, updated_at) VALUES (?, %s, ?, ?)", quoteIdentifier(collection), dataExpr)
	if _, err := s.db.ExecContext(ctx, query, id, string(data), *createdAt, *updatedAt); err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// updateOne은 JSON_SET으로 전달된 필드만 덮어씁니다
func updateOne(ctx context.Context, db execer, collection, id string, fields entity.Fields) error {
	var (
		paths []string
		args  []interface{}
	)
	rest := fields.Clone()
	var updatedAt *time.Time
	if t, ok := entity.AsTime(rest[entity.FieldUpdatedAt]); ok {
		t = t.UTC()
		updatedAt = &t
	}
	delete(rest, entity.FieldUpdatedAt)
	delete(rest, entity.FieldCreatedAt)
	delete(rest, entity.FieldID)

	for _, key := range rest.Keys() {
		if err := entity.ValidateFieldName(key); err != nil {
			return err
		}
		if _, ok := rest[key].(entity.ServerTime); ok {
			paths = append(paths, jsonPath(key)+", "+serverTimeExpr)
			continue
		}
		value, err := json.Marshal(jsonValue(rest[key]))
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		paths = append(paths, jsonPath(key)+", CAST(? AS JSON)")
		args = append(args, string(value))
	}

	set := make([]string, 0, 2)
	if len(paths) > 0 {
		set = append(set, "data = JSON_SET(data, "+strings.Join(paths, ", ")+")")
	}
	if updatedAt != nil {
		set = append(set, "updated_at = ?")
		args = append(args, *updatedAt)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", quoteIdentifier(collection), strings.Join(set, ", "))
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &entity.NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

// Update는 필드를 병합합니다
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields entity.Fields) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "update", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}
	return updateOne(ctx, s.db, collection, id, fields)
}

// Delete는 문서를 삭제합니다. 없는 ID는 무시합니다
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdentifier(collection))
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// BatchUpdate는 하나의 트랜잭션으로 업데이트를 적용합니다
func (s *DocumentStore) BatchUpdate(ctx context.Context, collection string, entries []entity.BatchEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { s.observe(ctx, "batch_update", collection, start, err) }()

	if err := s.ensureTable(ctx, collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := updateOne(ctx, tx, collection, e.ID, e.Fields); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteMany는 필터와 일치하는 문서를 삭제합니다. 빈 필터는 허용하지 않습니다
func (s *DocumentStore) DeleteMany(ctx context.Context, collection string, filters []entity.Filter) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete_many", collection, start, err) }()

	if len(filters) == 0 {
		return 0, fmt.Errorf("%w: filter cannot be empty for delete_many", entity.ErrInvalidFilter)
	}
	if err := s.ensureTable(ctx, collection); err != nil {
		return 0, err
	}
	where, args, err := buildWhere(filters)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s %s", quoteIdentifier(collection), where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	return result.RowsAffected()
}

// HealthCheck는 데이터베이스에 ping합니다
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close는 연결 풀을 닫습니다
func (s *DocumentStore) Close(ctx context.Context) error {
	return s.db.Close()
}
