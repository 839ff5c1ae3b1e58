package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/logger"
	"github.com/YouSangSon/academy-backoffice/internal/pkg/metrics"
	"go.uber.org/zap"
)

// ProducerConfig는 프로듀서 설정입니다
type ProducerConfig struct {
	Brokers          []string
	ClientID         string
	Topic            string
	MaxMessageBytes  int
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	MaxRetries       int
	RetryBackoff     time.Duration
	EnableIdempotent bool
}

// SaramaConfig는 동기 프로듀서용 sarama 설정을 만듭니다
func (c *ProducerConfig) SaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = c.ClientID
	config.Producer.RequiredAcks = c.RequiredAcks
	config.Producer.Compression = c.Compression
	if c.MaxMessageBytes > 0 {
		config.Producer.MaxMessageBytes = c.MaxMessageBytes
	}
	config.Producer.Retry.Max = c.MaxRetries
	config.Producer.Retry.Backoff = c.RetryBackoff
	config.Producer.Idempotent = c.EnableIdempotent
	if c.EnableIdempotent {
		// 멱등 프로듀서는 WaitForAll과 단일 in-flight 요청을 요구한다
		config.Producer.RequiredAcks = sarama.WaitForAll
		config.Net.MaxOpenRequests = 1
	}
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Version = sarama.V3_6_0_0
	return config
}

// Publisher는 도메인 이벤트를 Kafka 토픽으로 발행합니다
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

var _ repository.EventPublisher = (*Publisher)(nil)

// NewPublisher는 브로커에 연결된 Publisher를 생성합니다
func NewPublisher(cfg *ProducerConfig) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync producer: %w", err)
	}

	logger.Info(context.Background(), "kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("client_id", cfg.ClientID),
		logger.Topic(cfg.Topic),
	)

	return NewPublisherWithProducer(producer, cfg.Topic), nil
}

// NewPublisherWithProducer는 주어진 프로듀서로 Publisher를 생성합니다
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic, now: time.Now}
}

// Publish는 이벤트를 문서 ID를 키로 하여 발행합니다
func (p *Publisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.GetMetrics().RecordEventPublished(event.EventType, "error")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	now := p.now()
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.DocumentID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: now,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
			{Key: []byte("event_time"), Value: []byte(now.Format(time.RFC3339))},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		metrics.GetMetrics().RecordEventPublished(event.EventType, "error")
		logger.Error(ctx, "failed to send event",
			logger.Topic(p.topic),
			logger.DocumentID(event.DocumentID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send event: %w", err)
	}

	metrics.GetMetrics().RecordEventPublished(event.EventType, "success")
	logger.Info(ctx, "event published",
		logger.Topic(p.topic),
		logger.DocumentID(event.DocumentID),
		zap.String("event_type", event.EventType),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close는 프로듀서를 종료합니다
func (p *Publisher) Close() error {
	return p.producer.Close()
}
