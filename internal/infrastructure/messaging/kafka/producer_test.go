package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisherWithProducer(producer, "academy.leads")

	event := &entity.DomainEvent{
		EventID:    "evt-1",
		EventType:  entity.EventLeadSubmitted,
		Timestamp:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Collection: entity.LeadsCollection,
		DocumentID: "lead-1",
		Data:       map[string]interface{}{"email": "kim@example.com"},
	}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "academy.leads", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "lead-1", string(key))

		value, err := msg.Value.Encode()
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(value, &decoded))
		assert.Equal(t, "lead.submitted", decoded["event_type"])
		assert.Equal(t, "lead-1", decoded["document_id"])
		return nil
	})

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewPublisherWithProducer(producer, "academy.leads")

	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	err := publisher.Publish(context.Background(), &entity.DomainEvent{
		EventType:  entity.EventRegistrationSubmitted,
		DocumentID: "reg-1",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	require.NoError(t, publisher.Close())
}
