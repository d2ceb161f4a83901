//go:build integration

package rediscache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/testutil/containers"
)

func TestCachedPurchaseHistoryWithRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	t.Cleanup(func() { _ = rc.Terminate(context.Background()) })

	ctx := context.Background()
	m := metrics.NewReferralMetrics(prometheus.NewRegistry())
	next := &countingPurchases{total: decimal.RequireFromString("150.75")}
	cache := NewCachedPurchaseHistory(next, rc.Client, time.Minute, m, zap.NewNop())

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	march := domain.DateRange{Start: &start}

	for i := 0; i < 3; i++ {
		total, err := cache.GetPurchaseTotal(ctx, "u1", march)
		require.NoError(t, err)
		assert.Equal(t, "150.75", total.String())
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PurchaseCacheRequestsTotal.WithLabelValues("hit")))

	// A different range is a different key.
	_, err := cache.GetPurchaseTotal(ctx, "u1", domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	ttl, err := rc.Client.TTL(ctx, purchaseKey("u1", march)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// Failures are not cached.
	next.err = errors.New("down")
	_, err = cache.GetPurchaseTotal(ctx, "u2", march)
	require.Error(t, err)
	exists, err := rc.Client.Exists(ctx, purchaseKey("u2", march)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
