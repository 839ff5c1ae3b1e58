package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DocumentStore는 MongoDB 기반 문서 저장소입니다.
// 문서는 _id(ObjectID) 아래에 필드를 그대로 펼쳐 저장합니다
type DocumentStore struct {
	client       *mongo.Client
	database     *mongo.Database
	metrics      *metrics.Metrics
	transactions bool
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore는 연결된 클라이언트로 저장소를 생성합니다
func NewDocumentStore(client *mongo.Client, database string, transactions bool) *DocumentStore {
	return &DocumentStore{
		client:       client,
		database:     client.Database(database),
		metrics:      metrics.GetMetrics(),
		transactions: transactions,
	}
}

func (s *DocumentStore) collection(name string) (*mongo.Collection, error) {
	if err := entity.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	return s.database.Collection(name), nil
}

func (s *DocumentStore) observe(ctx context.Context, op, collection string, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	switch {
	case err == nil:
	case entity.IsNotFound(err):
		status = "not_found"
	default:
		status = "error"
	}
	s.metrics.RecordStoreOperation(op, collection, status, duration)
	logger.LogStoreOperation(ctx, op, collection, duration.Milliseconds(), errIfUnexpected(err))
}

func errIfUnexpected(err error) error {
	if entity.IsNotFound(err) {
		return nil
	}
	return err
}

// notFound는 잘못된 ObjectID도 "없는 문서"로 취급합니다
func notFound(collection, id string) error {
	return &entity.NotFoundError{Collection: collection, ID: id}
}

// Get은 ID로 문서를 조회합니다
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (rec *entity.Record, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "get", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, notFound(collection, id)
	}

	var raw bson.M
	if err := coll.FindOne(ctx, bson.D{{Key: mongoIDField, Value: oid}}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(collection, id)
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return toRecord(collection, raw), nil
}

// Find는 필터와 일치하는 문서를 _id 순서로 조회합니다
func (s *DocumentStore) Find(ctx context.Context, collection string, filters []entity.Filter) (records []*entity.Record, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "find", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	query, err := buildFilter(filters)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: mongoIDField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	records = make([]*entity.Record, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		records = append(records, toRecord(collection, raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return records, nil
}

// Insert는 새 ObjectID로 문서를 저장합니다
func (s *DocumentStore) Insert(ctx context.Context, collection string, doc entity.Fields) (id string, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "insert", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return "", err
	}

	oid := primitive.NewObjectID()
	serverTime := doc.ServerTimeKeys()
	if len(serverTime) > 0 {
		if err := insertWithServerTime(ctx, coll, oid, doc, serverTime); err != nil {
			return "", err
		}
		return oid.Hex(), nil
	}

	model := toSet(doc)
	model[mongoIDField] = oid

	if _, err := coll.InsertOne(ctx, model); err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return oid.Hex(), nil
}

// insertWithServerTime은 upsert로 문서를 만들고, ServerTime 필드에는 $currentDate로 서버 시각을 넣습니다
func insertWithServerTime(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, doc entity.Fields, keys []string) error {
	rest := doc.Clone()
	current := make(bson.D, 0, len(keys))
	for _, k := range keys {
		delete(rest, k)
		current = append(current, bson.E{Key: k, Value: bson.D{{Key: "$type", Value: "date"}}})
	}

	update := bson.D{{Key: "$currentDate", Value: current}}
	if len(rest) > 0 {
		update = append(update, bson.E{Key: "$setOnInsert", Value: toSet(rest)})
	}

	_, err := coll.UpdateOne(ctx, bson.D{{Key: mongoIDField, Value: oid}}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Update는 $set으로 필드를 병합합니다
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields entity.Fields) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "update", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return notFound(collection, id)
	}

	result, err := coll.UpdateOne(ctx, bson.D{{Key: mongoIDField, Value: oid}}, bson.D{{Key: "$set", Value: toSet(fields)}})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return notFound(collection, id)
	}

	return nil
}

// Delete는 문서를 삭제합니다. DeleteOne은 대상이 없어도 DeletedCount == 0으로 성공합니다
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) (err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	result, err := coll.DeleteOne(ctx, bson.D{{Key: mongoIDField, Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.DeletedCount == 0 {
		logger.Debug(ctx, "delete matched no document", logger.Collection(collection), logger.DocumentID(id))
	}

	return nil
}

// BatchUpdate는 ordered bulk write로 업데이트를 적용합니다.
// transactions가 켜져 있으면 하나의 트랜잭션 안에서 실행되어 일부만 반영되지 않습니다
func (s *DocumentStore) BatchUpdate(ctx context.Context, collection string, entries []entity.BatchEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { s.observe(ctx, "batch_update", collection, start, err) }()

	coll, err := s.collection(collection)
	if err != nil {
		return err
	}

	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		oid, err := primitive.ObjectIDFromHex(e.ID)
		if err != nil {
			return notFound(collection, e.ID)
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: mongoIDField, Value: oid}}).
			SetUpdate(bson.D{{Key: "$set", Value: toSet(e.Fields)}}))
	}

	write := func(ctx context.Context) error {
		result, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return fmt.Errorf("failed to apply batch: %w", err)
		}
		if result.MatchedCount < int64(len(models)) {
			return &entity.NotFoundError{Collection: collection, ID: "batch"}
		}
		return nil
	}

	if !s.transactions {
		return write(ctx)
	}
	return s.withTransaction(ctx, write)
}

// withTransaction은 트랜잭션 내에서 함수를 실행합니다
func (s *DocumentStore) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// DeleteMany는 필터와 일치하는 문서를 삭제합니다. 빈 필터는 허용하지 않습니다
func (s *DocumentStore) DeleteMany(ctx context.Context, collection string, filters []entity.Filter) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "delete_many", collection, start, err) }()

	if len(filters) == 0 {
		return 0, fmt.Errorf("%w: filter cannot be empty for delete_many", entity.ErrInvalidFilter)
	}
	coll, err := s.collection(collection)
	if err != nil {
		return 0, err
	}
	query, err := buildFilter(filters)
	if err != nil {
		return 0, err
	}

	result, err := coll.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	logger.Info(ctx, "documents deleted",
		logger.Collection(collection),
		logger.Count(int(result.DeletedCount)),
	)
	return result.DeletedCount, nil
}

// HealthCheck는 primary에 ping합니다
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close는 연결을 종료합니다
func (s *DocumentStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

