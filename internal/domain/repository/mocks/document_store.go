// Package mocks는 저장소 인터페이스의 testify mock을 제공합니다.
package mocks

import (
	"context"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// DocumentStore는 repository.DocumentStore의 mock입니다
type DocumentStore struct {
	mock.Mock
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

func (m *DocumentStore) Get(ctx context.Context, collection, id string) (*entity.Record, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Record), args.Error(1)
}

func (m *DocumentStore) Find(ctx context.Context, collection string, filters []entity.Filter) ([]*entity.Record, error) {
	args := m.Called(ctx, collection, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Record), args.Error(1)
}

func (m *DocumentStore) Insert(ctx context.Context, collection string, doc entity.Fields) (string, error) {
	args := m.Called(ctx, collection, doc)
	return args.String(0), args.Error(1)
}

func (m *DocumentStore) Update(ctx context.Context, collection, id string, fields entity.Fields) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

func (m *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *DocumentStore) BatchUpdate(ctx context.Context, collection string, entries []entity.BatchEntry) error {
	args := m.Called(ctx, collection, entries)
	return args.Error(0)
}

func (m *DocumentStore) DeleteMany(ctx context.Context, collection string, filters []entity.Filter) (int64, error) {
	args := m.Called(ctx, collection, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DocumentStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CacheRepository는 repository.CacheRepository의 mock입니다
type CacheRepository struct {
	mock.Mock
}

var _ repository.CacheRepository = (*CacheRepository)(nil)

func (m *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// EventPublisher는 repository.EventPublisher의 mock입니다
type EventPublisher struct {
	mock.Mock
}

var _ repository.EventPublisher = (*EventPublisher)(nil)

func (m *EventPublisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
