package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

const publishTimeout = 5 * time.Second

// KafkaEventSink publishes referral events keyed by the user they concern.
type KafkaEventSink struct {
	publisher domain.PublisherPort
	topic     string
}

func NewKafkaEventSink(publisher domain.PublisherPort, topic string) *KafkaEventSink {
	return &KafkaEventSink{publisher: publisher, topic: topic}
}

func (s *KafkaEventSink) Emit(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal %s data: %w", event.Type, err)
	}
	value, err := json.Marshal(ReferralEvent{
		Type:       string(event.Type),
		Key:        event.Key,
		OccurredAt: event.OccurredAt,
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.Type, err)
	}

	// the request may already be finishing; the event is for a committed change
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	return s.publisher.Publish(ctx, s.topic, domain.Message{Key: []byte(event.Key), Value: value})
}
