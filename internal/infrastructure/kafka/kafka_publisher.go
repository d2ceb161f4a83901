package publisher

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Publish writes msgs to topic. Messages with the same key land on the same partition.
func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}

	return k.writer.WriteMessages(ctx, km...)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
