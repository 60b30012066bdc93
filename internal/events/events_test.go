package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	got []LedgerEvent
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, events ...LedgerEvent) error {
	r.got = append(r.got, events...)
	return r.err
}

func sampleEvent() LedgerEvent {
	return LedgerEvent{
		Type:          LedgerGranted,
		CustomerPhone: "01012345678",
		EntryID:       1,
		Code:          "CP-20260101-ABCDEF01",
		Amount:        1800,
		OriginType:    "purchase",
		OccurredAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMultiPublisher_ForwardsToAll(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("down")}
	ok := &recordingPublisher{}

	err := MultiPublisher{failing, nil, ok}.Publish(context.Background(), sampleEvent())

	assert.EqualError(t, err, "down")
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

func TestPublishAfterCommit_SwallowsErrors(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("down")}

	assert.NotPanics(t, func() {
		PublishAfterCommit(context.Background(), failing, sampleEvent())
		PublishAfterCommit(context.Background(), nil, sampleEvent())
		PublishAfterCommit(context.Background(), NopPublisher{})
	})
	assert.Len(t, failing.got, 1)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded LedgerEvent
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if decoded.Code != "CP-20260101-ABCDEF01" {
			return errors.New("unexpected code")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "ledger.events.v1")
	require.NoError(t, publisher.Publish(context.Background(), sampleEvent()))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "ledger.events.v1")
	err := publisher.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func producerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	return config
}
