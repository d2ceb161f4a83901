package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
)

const purchaseKeyPrefix = "referral:purchases:v1"

func NewClient(cfg config.Redis, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return client, nil
}

// CachedPurchaseHistory keeps purchase totals for ttl. Redis failures degrade to direct
// lookups; only the wrapped service can fail a call.
type CachedPurchaseHistory struct {
	next    domain.PurchaseHistory
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.ReferralMetrics
	logger  *zap.Logger
}

func NewCachedPurchaseHistory(
	next domain.PurchaseHistory,
	client redis.Cmdable,
	ttl time.Duration,
	metrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *CachedPurchaseHistory {
	return &CachedPurchaseHistory{
		next:    next,
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *CachedPurchaseHistory) GetPurchaseTotal(ctx context.Context, userID string, period domain.DateRange) (decimal.Decimal, error) {
	key := purchaseKey(userID, period)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if total, parseErr := decimal.NewFromString(cached); parseErr == nil {
			c.metrics.RecordPurchaseCache("hit")
			return total, nil
		}
		c.logger.Warn("discarding corrupt purchase cache entry", zap.String("key", key), zap.String("value", cached))
	case errors.Is(err, redis.Nil):
	default:
		c.metrics.RecordPurchaseCache("error")
		c.logger.Warn("purchase cache read failed", zap.String("key", key), zap.Error(err))
	}
	c.metrics.RecordPurchaseCache("miss")

	total, err := c.next.GetPurchaseTotal(ctx, userID, period)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.client.Set(ctx, key, total.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("purchase cache write failed", zap.String("key", key), zap.Error(err))
	}
	return total, nil
}

// purchaseKey encodes open bounds as "-" and closed ones as unix seconds.
func purchaseKey(userID string, period domain.DateRange) string {
	return fmt.Sprintf("%s:%s:%s:%s", purchaseKeyPrefix, userID, bound(period.Start), bound(period.End))
}

func bound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return strconv.FormatInt(t.Unix(), 10)
}
