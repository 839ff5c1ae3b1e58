package mongodb

import (
	"context"
	"fmt"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// indexSpec은 기동 시 보장할 인덱스입니다
type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

func defaultIndexes() []indexSpec {
	return []indexSpec{
		{
			collection: entity.LogsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: entity.LogFieldTimestamp, Value: -1}},
				Options: options.Index().SetName("logs_timestamp"),
			},
		},
		{
			collection: entity.LogsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: entity.LogFieldCollection, Value: 1}, {Key: entity.LogFieldAction, Value: 1}},
				Options: options.Index().SetName("logs_collection_action"),
			},
		},
		{
			collection: entity.ClassesCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: entity.FieldIsCurrentClass, Value: 1}},
				Options: options.Index().SetName("classes_current").SetSparse(true),
			},
		},
		{
			collection: entity.AdminsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("admins_email").SetUnique(true),
			},
		},
	}
}

// EnsureIndexes는 조회에 쓰는 인덱스를 생성합니다. 이미 있으면 아무 일도 하지 않습니다
func (s *DocumentStore) EnsureIndexes(ctx context.Context) error {
	for _, spec := range defaultIndexes() {
		name, err := s.database.Collection(spec.collection).Indexes().CreateOne(ctx, spec.model)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.collection, err)
		}
		logger.Debug(ctx, "index ensured", logger.Collection(spec.collection), zap.String("index_name", name))
	}
	return nil
}
