package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// normalizePage applies the default limit, caps it and clamps a negative offset.
func normalizePage(limit, offset, defaultLimit, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pageBounds returns the [from, to) slice bounds of a page over total items.
func pageBounds(total, limit, offset int) (int, int) {
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return offset, end
}

// dependencyError tags a collaborator failure as retryable.
func dependencyError(m *metrics.ReferralMetrics, dependency string, err error) error {
	m.RecordDependencyError(dependency)
	if errors.Is(err, domain.ErrDependencyUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDependencyUnavailable, dependency, err)
}

// emit publishes an event for a change that is already committed. Failures are logged only.
func emit(ctx context.Context, sink domain.EventSink, logger *zap.Logger, event domain.Event) {
	if sink == nil {
		return
	}
	if err := sink.Emit(ctx, event); err != nil {
		logger.Error("failed to emit event",
			zap.String("event", string(event.Type)),
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}
}
