package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	commissiondto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/commission"
)

type CommissionUsecase interface {
	ProcessConversion(ctx context.Context, input *commissiondto.ProcessConversionInput) ([]*domain.CommissionRecord, error)
	GetCommission(ctx context.Context, commissionID string) (*domain.CommissionRecord, error)
	ListCommissions(ctx context.Context, input *commissiondto.ListCommissionsInput) (*commissiondto.ListCommissionsOutput, error)
	RateTable() domain.RateTable
}

type DefaultCommissionUsecase struct {
	hierarchy      HierarchyUsecase
	commissionRepo domain.CommissionRepository
	rates          domain.RateTable
	events         domain.EventSink
	metrics        *metrics.ReferralMetrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewDefaultCommissionUsecase(
	hierarchy HierarchyUsecase,
	commissionRepo domain.CommissionRepository,
	rates domain.RateTable,
	events domain.EventSink,
	referralMetrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultCommissionUsecase {
	return &DefaultCommissionUsecase{
		hierarchy:      hierarchy,
		commissionRepo: commissionRepo,
		rates:          rates,
		events:         events,
		metrics:        referralMetrics,
		logger:         logger,
		now:            time.Now,
	}
}

// ProcessConversion pays every ancestor of the source user up to MaxLevels. Each level is
// committed on its own: a replayed conversion skips the levels already credited and fills
// in any that are missing. It returns only the records created by this call.
func (uc *DefaultCommissionUsecase) ProcessConversion(ctx context.Context, input *commissiondto.ProcessConversionInput) ([]*domain.CommissionRecord, error) {
	conversionID := strings.TrimSpace(input.ConversionID)
	sourceUserID := strings.TrimSpace(input.SourceUserID)
	if conversionID == "" || sourceUserID == "" {
		return nil, fmt.Errorf("%w: conversion_id and source_user_id are required", domain.ErrInvalidArgument)
	}
	if !input.OrderAmount.IsPositive() {
		return nil, fmt.Errorf("%w: order amount must be positive", domain.ErrInvalidArgument)
	}

	start := time.Now()
	defer func() { uc.metrics.RecordConversionDuration(time.Since(start).Seconds()) }()

	upline, err := uc.hierarchy.GetUpline(ctx, sourceUserID, domain.MaxLevels)
	if err != nil {
		return nil, fmt.Errorf("get upline of %s: %w", sourceUserID, err)
	}
	if len(upline) == 0 {
		uc.logger.Debug("conversion has no upline",
			zap.String("conversion_id", conversionID),
			zap.String("source_user_id", sourceUserID),
		)
		return []*domain.CommissionRecord{}, nil
	}

	created := make([]*domain.CommissionRecord, 0, len(upline))
	for _, ancestor := range upline {
		rate := uc.rates.Rate(ancestor.Level)
		if !rate.IsPositive() {
			continue
		}

		level := ancestor.Level
		now := uc.now().UTC()
		amount := domain.CommissionAmount(input.OrderAmount, rate)
		record := &domain.CommissionRecord{
			ID:            uuid.NewString(),
			ConversionID:  conversionID,
			OrderID:       input.OrderID,
			BeneficiaryID: ancestor.AncestorID,
			SourceUserID:  sourceUserID,
			Level:         level,
			RatePercent:   rate,
			Amount:        amount,
			Status:        domain.CommissionPending,
			CreatedAt:     now,
		}
		entry := &domain.TransactionHistoryEntry{
			ID:            ulid.Make().String(),
			UserID:        ancestor.AncestorID,
			Type:          domain.TransactionMLMCommission,
			Amount:        amount,
			Status:        domain.TransactionPending,
			Description:   fmt.Sprintf("Level %d commission from %s", level, sourceUserID),
			RelatedUserID: sourceUserID,
			Level:         &level,
			CommissionID:  record.ID,
			CreatedAt:     now,
		}

		inserted, err := uc.commissionRepo.CreateCommissionWithCredit(ctx, record, entry)
		if err != nil {
			if domain.IsInvariantViolation(err) {
				uc.metrics.RecordInvariantViolation("negative_balance")
				uc.logger.Error("commission credit aborted",
					zap.String("conversion_id", conversionID),
					zap.String("beneficiary_id", ancestor.AncestorID),
					zap.Int("level", level),
					zap.String("amount", amount.String()),
					zap.Error(err),
				)
			}
			return nil, fmt.Errorf("level %d commission for conversion %s: %w", level, conversionID, err)
		}
		if !inserted {
			uc.metrics.RecordCommissionDuplicate(level)
			uc.logger.Debug("commission already recorded",
				zap.String("conversion_id", conversionID),
				zap.String("beneficiary_id", ancestor.AncestorID),
				zap.Int("level", level),
			)
			continue
		}

		created = append(created, record)
		uc.metrics.RecordCommissionCreated(level, amount.InexactFloat64())
		emit(ctx, uc.events, uc.logger, domain.Event{
			Type:       domain.EventCommissionAdded,
			Key:        ancestor.AncestorID,
			OccurredAt: now,
			Data: domain.CommissionAddedData{
				CommissionID:  record.ID,
				ConversionID:  conversionID,
				BeneficiaryID: ancestor.AncestorID,
				SourceUserID:  sourceUserID,
				Amount:        amount.StringFixed(2),
				Level:         level,
			},
		})
	}

	uc.logger.Info("conversion processed",
		zap.String("conversion_id", conversionID),
		zap.String("source_user_id", sourceUserID),
		zap.Int("upline_levels", len(upline)),
		zap.Int("commissions_created", len(created)),
	)
	return created, nil
}

func (uc *DefaultCommissionUsecase) GetCommission(ctx context.Context, commissionID string) (*domain.CommissionRecord, error) {
	return uc.commissionRepo.GetCommission(ctx, commissionID)
}

func (uc *DefaultCommissionUsecase) ListCommissions(ctx context.Context, input *commissiondto.ListCommissionsInput) (*commissiondto.ListCommissionsOutput, error) {
	if strings.TrimSpace(input.BeneficiaryID) == "" {
		return nil, fmt.Errorf("%w: beneficiary_id is required", domain.ErrInvalidArgument)
	}
	status := domain.CommissionStatus(strings.ToLower(input.Status))
	switch status {
	case "", domain.CommissionPending, domain.CommissionApproved:
	default:
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidArgument, input.Status)
	}

	limit, offset := normalizePage(input.Limit, input.Offset, defaultPageLimit, maxPageLimit)
	records, total, err := uc.commissionRepo.ListCommissions(ctx, domain.CommissionFilter{
		BeneficiaryID: input.BeneficiaryID,
		Status:        status,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, err
	}
	return &commissiondto.ListCommissionsOutput{Commissions: records, Total: total}, nil
}

func (uc *DefaultCommissionUsecase) RateTable() domain.RateTable {
	return uc.rates
}
