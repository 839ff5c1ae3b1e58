package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Config는 MongoDB 설정입니다
type Config struct {
	URI            string
	Database       string
	Username       string // 비어 있으면 URI의 자격증명을 사용합니다
	Password       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	MaxConnecting  uint64
	ConnectTimeout time.Duration
	Timeout        time.Duration

	// Transactions가 true이면 BatchUpdate를 트랜잭션 안에서 실행합니다 (replica set 필요)
	Transactions bool
}

// Connect는 MongoDB에 연결하고 ping으로 확인합니다
func Connect(ctx context.Context, cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnecting(cfg.MaxConnecting).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetSocketTimeout(cfg.Timeout).
		SetReadPreference(readpref.Primary())

	if cfg.Username != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "connected to mongodb",
		zap.String("database", cfg.Database),
		zap.Bool("transactions", cfg.Transactions),
	)

	return client, nil
}
