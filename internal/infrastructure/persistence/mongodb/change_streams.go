package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// changeDocument는 change stream 이벤트 중 사용하는 부분입니다
type changeDocument struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	Namespace struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
}

// Watch는 컬렉션들의 변경을 change stream으로 구독합니다.
// Change Streams는 replica set 또는 sharded cluster에서만 동작합니다.
// ctx가 취소되면 채널이 닫힙니다
func (s *DocumentStore) Watch(ctx context.Context, collections ...string) (<-chan entity.ChangeEvent, error) {
	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: collections}}},
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}}},
		}}},
	}

	stream, err := s.database.Watch(ctx, pipeline, options.ChangeStream())
	if err != nil {
		s.metrics.RecordStoreOperation("watch", "*", "error", 0)
		return nil, fmt.Errorf("failed to create change stream: %w", err)
	}

	logger.Info(ctx, "change stream started", zap.Strings("collections", collections))

	events := make(chan entity.ChangeEvent, 16)
	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var change changeDocument
			if err := stream.Decode(&change); err != nil {
				logger.Warn(ctx, "failed to decode change event", zap.Error(err))
				continue
			}
			event := entity.ChangeEvent{
				Collection: change.Namespace.Coll,
				DocumentID: change.DocumentKey.ID.Hex(),
				Operation:  change.OperationType,
				At:         time.Now(),
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "change stream stopped", zap.Error(err))
		}
	}()

	return events, nil
}
