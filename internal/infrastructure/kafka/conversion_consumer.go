package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	commissiondto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/commission"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConversionProcessor interface {
	ProcessConversion(ctx context.Context, input *commissiondto.ProcessConversionInput) ([]*domain.CommissionRecord, error)
}

// ConversionConsumer feeds conversion events into the commission engine. An offset is
// committed only after the conversion was processed or judged unprocessable, so delivery is
// at least once and the engine's idempotence absorbs the replays.
type ConversionConsumer struct {
	reader     MessageReader
	processor  ConversionProcessor
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewConversionReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func NewConversionConsumer(reader MessageReader, processor ConversionProcessor, logger *zap.Logger) *ConversionConsumer {
	return &ConversionConsumer{
		reader:     reader,
		processor:  processor,
		logger:     logger,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run consumes until ctx is cancelled or the reader fails.
func (c *ConversionConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle returns an error only when ctx ends while a retryable failure is being retried.
func (c *ConversionConsumer) handle(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With(
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event ConversionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("skipping malformed conversion event", zap.ByteString("value", msg.Value), zap.Error(err))
		return nil
	}
	input := event.ToInput()

	backoff := c.minBackoff
	for attempt := 1; ; attempt++ {
		records, err := c.processor.ProcessConversion(ctx, input)
		if err == nil {
			log.Debug("conversion consumed",
				zap.String("conversion_id", input.ConversionID),
				zap.Int("commissions_created", len(records)),
			)
			return nil
		}
		if !shouldRetry(err) {
			log.Error("dropping unprocessable conversion event",
				zap.String("conversion_id", input.ConversionID),
				zap.ByteString("value", msg.Value),
				zap.Error(err),
			)
			return nil
		}

		log.Warn("conversion processing failed, retrying",
			zap.String("conversion_id", input.ConversionID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// shouldRetry treats everything that is not a domain rejection as transient, so a database
// outage does not drop conversions.
func shouldRetry(err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		domain.IsNotFound(err),
		domain.IsInvariantViolation(err):
		return false
	}
	return true
}
