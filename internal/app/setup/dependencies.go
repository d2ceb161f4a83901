package setup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LavaJover/shvark-referral-service/internal/client"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	publisher "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	rediscache "github.com/LavaJover/shvark-referral-service/internal/infrastructure/redis"
)

type Dependencies struct {
	Config         *config.ReferralConfig
	Logger         *zap.Logger
	Metrics        *metrics.ReferralMetrics
	DB             *gorm.DB
	Redis          *redis.Client
	EventPublisher *publisher.DefaultKafkaPublisher
	EventSink      domain.EventSink
	Identity       domain.IdentityService
	Purchases      domain.PurchaseHistory
	Repositories   *Repositories
}

type Repositories struct {
	HierarchyRepo  domain.HierarchyRepository
	AffiliateRepo  domain.AffiliateRepository
	CommissionRepo domain.CommissionRepository
	LedgerRepo     domain.LedgerRepository
}

func InitializeDependencies(cfg *config.ReferralConfig, log *zap.Logger, m *metrics.ReferralMetrics) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: m,
	}

	switch cfg.ReferralDB.Driver {
	case "postgres":
		deps.DB = postgres.MustInitDB(cfg, log)
		deps.Repositories = &Repositories{
			HierarchyRepo:  repository.NewDefaultHierarchyRepository(deps.DB),
			AffiliateRepo:  repository.NewDefaultAffiliateRepository(deps.DB),
			CommissionRepo: repository.NewDefaultCommissionRepository(deps.DB),
			LedgerRepo:     repository.NewDefaultLedgerRepository(deps.DB),
		}
	case "memory":
		store := memory.NewStore()
		deps.Repositories = &Repositories{
			HierarchyRepo:  memory.NewHierarchyRepository(store),
			AffiliateRepo:  memory.NewAffiliateRepository(store),
			CommissionRepo: memory.NewCommissionRepository(store),
			LedgerRepo:     memory.NewLedgerRepository(store),
		}
		log.Warn("using in-memory storage, state is lost on restart")
	default:
		return nil, fmt.Errorf("unknown referral_db.driver %q", cfg.ReferralDB.Driver)
	}

	deps.EventSink = initEventSink(deps)

	if cfg.IdentityService.BaseURL == "" {
		return nil, fmt.Errorf("identity_service.base_url is empty")
	}
	deps.Identity = client.NewHTTPIdentityClient(cfg.IdentityService.BaseURL, cfg.IdentityService.Timeout)

	if cfg.OrderService.BaseURL == "" {
		return nil, fmt.Errorf("order_service.base_url is empty")
	}
	var purchases domain.PurchaseHistory = client.NewHTTPPurchaseClient(cfg.OrderService.BaseURL, cfg.OrderService.Timeout)
	if cfg.Redis.Addr != "" {
		redisClient, err := rediscache.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		deps.Redis = redisClient
		purchases = rediscache.NewCachedPurchaseHistory(purchases, redisClient, cfg.Redis.TTL, m, log)
	}
	deps.Purchases = purchases

	return deps, nil
}

// initEventSink prefers Kafka, then the Postgres audit table, then drops events.
func initEventSink(deps *Dependencies) domain.EventSink {
	cfg := deps.Config
	if cfg.KafkaService.Enabled && len(cfg.KafkaService.Brokers) > 0 {
		deps.EventPublisher = publisher.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers)
		deps.Logger.Info("publishing referral events to kafka",
			zap.Strings("brokers", cfg.KafkaService.Brokers),
			zap.String("topic", cfg.KafkaService.EventsTopic),
		)
		return publisher.NewKafkaEventSink(deps.EventPublisher, cfg.KafkaService.EventsTopic)
	}
	if deps.DB != nil {
		deps.Logger.Info("kafka disabled, referral events go to referral_event_log")
		return logger.NewPGEventLogger(deps.DB)
	}
	return logger.NopEventSink{}
}

// HealthChecks returns a probe per configured backing store.
func (d *Dependencies) HealthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if d.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (d *Dependencies) Close() {
	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			d.Logger.Warn("failed to close kafka publisher", zap.Error(err))
		}
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
