// Package persistence는 설정된 백엔드로 문서 저장소를 엽니다.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/memory"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/mongodb"
	"github.com/YouSangSon/academy-backoffice/internal/infrastructure/persistence/mysql"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// 지원하는 백엔드
const (
	BackendMongoDB = "mongodb"
	BackendMySQL   = "mysql"
	BackendMemory  = "memory"
)

// Options는 저장소 연결 옵션입니다
type Options struct {
	Backend string
	MongoDB *mongodb.Config
	MySQL   *mysql.Config
	// Retry는 연결 확인 재시도 정책입니다
	Retry retry.Config
}

// Store는 열린 문서 저장소와 그 부가 기능입니다
type Store struct {
	repository.DocumentStore

	// Watcher는 변경 스트림을 지원하는 백엔드에서만 nil이 아닙니다
	Watcher repository.ChangeWatcher
	Backend string

	closers []func(ctx context.Context) error
}

// Open은 Options.Backend에 맞는 저장소를 엽니다
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Backend {
	case BackendMongoDB:
		return openMongoDB(ctx, opts)
	case BackendMySQL:
		return openMySQL(ctx, opts)
	case BackendMemory:
		logger.Warn(ctx, "using in-memory document store; data is lost on restart")
		s := memory.NewDocumentStore()
		return &Store{DocumentStore: s, Watcher: s, Backend: BackendMemory}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", opts.Backend)
	}
}

func openMongoDB(ctx context.Context, opts Options) (*Store, error) {
	if opts.MongoDB == nil {
		return nil, errors.New("mongodb config is required")
	}

	client, err := retry.DoWithValue(ctx, withRetryLog(ctx, opts.Retry, BackendMongoDB), func(ctx context.Context) (*mongo.Client, error) {
		return mongodb.Connect(ctx, opts.MongoDB)
	})
	if err != nil {
		return nil, err
	}

	s := mongodb.NewDocumentStore(client, opts.MongoDB.Database, opts.MongoDB.Transactions)
	if err := s.EnsureIndexes(ctx); err != nil {
		logger.Warn(ctx, "failed to ensure mongodb indexes", zap.Error(err))
	}

	return &Store{
		DocumentStore: s,
		Watcher:       s,
		Backend:       BackendMongoDB,
		closers:       []func(context.Context) error{client.Disconnect},
	}, nil
}

func openMySQL(ctx context.Context, opts Options) (*Store, error) {
	if opts.MySQL == nil {
		return nil, errors.New("mysql config is required")
	}

	db, err := retry.DoWithValue(ctx, withRetryLog(ctx, opts.Retry, BackendMySQL), func(ctx context.Context) (*sql.DB, error) {
		return mysql.NewClient(ctx, opts.MySQL)
	})
	if err != nil {
		return nil, err
	}

	return &Store{
		DocumentStore: mysql.NewDocumentStore(db),
		Backend:       BackendMySQL,
		closers:       []func(context.Context) error{func(context.Context) error { return db.Close() }},
	}, nil
}

// Close는 저장소 연결을 닫습니다
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	for _, c := range s.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func withRetryLog(ctx context.Context, cfg retry.Config, backend string) retry.Config {
	if cfg.MaxAttempts == 0 {
		cfg = retry.StartupConfig()
	}
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn(ctx, "store not reachable yet, retrying",
			logger.Component(backend),
			zap.Int("attempt", attempt),
			logger.Duration(wait),
			zap.Error(err),
		)
	}
	return cfg
}
