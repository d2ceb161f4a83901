package background

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	publisher "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
)

const consumerRestartDelay = 5 * time.Second

type BackgroundTasks struct {
	CommissionUsecase usecase.CommissionUsecase
	Kafka             config.KafkaService
	Logger            *zap.Logger
}

func NewBackgroundTasks(commissionUC usecase.CommissionUsecase, kafkaCfg config.KafkaService, logger *zap.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		CommissionUsecase: commissionUC,
		Kafka:             kafkaCfg,
		Logger:            logger,
	}
}

// Run blocks until ctx is cancelled.
func (bt *BackgroundTasks) Run(ctx context.Context) error {
	if !bt.Kafka.Enabled || len(bt.Kafka.Brokers) == 0 {
		bt.Logger.Info("kafka disabled, conversion consumer not started")
		<-ctx.Done()
		return nil
	}
	bt.runConversionConsumer(ctx)
	return nil
}

// runConversionConsumer restarts the consumer after reader failures.
func (bt *BackgroundTasks) runConversionConsumer(ctx context.Context) {
	for {
		reader := publisher.NewConversionReader(bt.Kafka.Brokers, bt.Kafka.ConversionTopic, bt.Kafka.GroupID)
		consumer := publisher.NewConversionConsumer(reader, bt.CommissionUsecase, bt.Logger.Named("conversion-consumer"))

		bt.Logger.Info("conversion consumer started",
			zap.String("topic", bt.Kafka.ConversionTopic),
			zap.String("group_id", bt.Kafka.GroupID),
		)
		err := consumer.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		bt.Logger.Error("conversion consumer stopped, restarting", zap.Error(err), zap.Duration("delay", consumerRestartDelay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(consumerRestartDelay):
		}
	}
}
