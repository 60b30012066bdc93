package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ikkim/hwawon-backend/pkg/logger"
)

// KafkaPublisher Kafka 기반 원장 이벤트 발행자
// 고객 휴대폰 번호를 파티션 키로 사용해 고객별 순서를 보장한다.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher Kafka 발행자 생성
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...LedgerEvent) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.CustomerPhone),
			Value: sarama.ByteEncoder(payload),
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		logger.Error("Failed to send ledger events", err, map[string]interface{}{
			"topic": p.topic,
			"count": len(msgs),
		})
		return fmt.Errorf("failed to send messages: %w", err)
	}

	logger.Debug("Ledger events sent", map[string]interface{}{
		"topic": p.topic,
		"count": len(msgs),
	})
	return nil
}

// Close 발행자 종료
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
