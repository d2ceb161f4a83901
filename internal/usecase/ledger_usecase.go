package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	ledgerdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/ledger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type LedgerUsecase interface {
	Credit(ctx context.Context, input *ledgerdto.CreditInput) (*domain.Balance, error)
	ApproveCommission(ctx context.Context, commissionID string) (*domain.ApprovalResult, error)
	GetBalance(ctx context.Context, userID string) (*domain.Balance, error)
	GetHistory(ctx context.Context, input *ledgerdto.GetHistoryInput) (*ledgerdto.GetHistoryOutput, error)
}

type DefaultLedgerUsecase struct {
	ledgerRepo     domain.LedgerRepository
	commissionRepo domain.CommissionRepository
	events         domain.EventSink
	metrics        *metrics.ReferralMetrics
	logger         *zap.Logger
	now            func() time.Time
}

func NewDefaultLedgerUsecase(
	ledgerRepo domain.LedgerRepository,
	commissionRepo domain.CommissionRepository,
	events domain.EventSink,
	referralMetrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultLedgerUsecase {
	return &DefaultLedgerUsecase{
		ledgerRepo:     ledgerRepo,
		commissionRepo: commissionRepo,
		events:         events,
		metrics:        referralMetrics,
		logger:         logger,
		now:            time.Now,
	}
}

// Credit is the manual adjustment path. Only positive whole-cent amounts are accepted here; the
// commission flow credits through CommissionRepository.
func (uc *DefaultLedgerUsecase) Credit(ctx context.Context, input *ledgerdto.CreditInput) (*domain.Balance, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArgument)
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: amount has more than 2 decimal places", domain.ErrInvalidArgument)
	}
	bucket := domain.BalanceBucket(strings.ToLower(input.Bucket))
	if bucket == "" {
		bucket = domain.BucketAvailable
	}
	if !bucket.Valid() {
		return nil, fmt.Errorf("%w: bucket %q", domain.ErrInvalidArgument, input.Bucket)
	}

	status := domain.TransactionCompleted
	if bucket == domain.BucketPending {
		status = domain.TransactionPending
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Manual credit to %s balance", bucket)
	}

	balance, err := uc.ledgerRepo.Credit(ctx, userID, input.Amount, bucket, &domain.TransactionHistoryEntry{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Type:        domain.TransactionCredit,
		Amount:      input.Amount,
		Status:      status,
		Description: description,
		CreatedAt:   uc.now().UTC(),
	})
	if err != nil {
		if domain.IsInvariantViolation(err) {
			uc.metrics.RecordInvariantViolation("negative_balance")
			uc.logger.Error("credit aborted",
				zap.String("user_id", userID),
				zap.String("bucket", string(bucket)),
				zap.String("amount", input.Amount.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	uc.logger.Info("balance credited",
		zap.String("user_id", userID),
		zap.String("bucket", string(bucket)),
		zap.String("amount", input.Amount.String()),
	)
	return balance, nil
}

// ApproveCommission releases a pending commission to the available balance. A pending
// balance smaller than the commission is floored at zero and reported as an anomaly.
func (uc *DefaultLedgerUsecase) ApproveCommission(ctx context.Context, commissionID string) (*domain.ApprovalResult, error) {
	if strings.TrimSpace(commissionID) == "" {
		return nil, fmt.Errorf("%w: commission_id is required", domain.ErrInvalidArgument)
	}

	result, err := uc.commissionRepo.ApproveCommission(ctx, commissionID, uc.now().UTC())
	if err != nil {
		return nil, err
	}
	record := result.Commission

	if result.Shortfall.IsPositive() {
		uc.metrics.RecordApprovalAnomaly()
		uc.logger.Warn("pending balance smaller than approved commission, floored at zero",
			zap.String("commission_id", record.ID),
			zap.String("beneficiary_id", record.BeneficiaryID),
			zap.String("amount", record.Amount.String()),
			zap.String("shortfall", result.Shortfall.String()),
		)
	}
	uc.metrics.RecordCommissionApproved(record.Amount.InexactFloat64())
	uc.logger.Info("commission approved",
		zap.String("commission_id", record.ID),
		zap.String("beneficiary_id", record.BeneficiaryID),
	)

	occurredAt := uc.now().UTC()
	if record.ApprovedAt != nil {
		occurredAt = *record.ApprovedAt
	}
	emit(ctx, uc.events, uc.logger, domain.Event{
		Type:       domain.EventCommissionApproved,
		Key:        record.BeneficiaryID,
		OccurredAt: occurredAt,
		Data: domain.CommissionApprovedData{
			CommissionID:  record.ID,
			BeneficiaryID: record.BeneficiaryID,
			Amount:        record.Amount.StringFixed(2),
		},
	})
	return result, nil
}

func (uc *DefaultLedgerUsecase) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	return uc.ledgerRepo.GetBalance(ctx, userID)
}

// GetHistory lists the user's ledger entries, newest first.
func (uc *DefaultLedgerUsecase) GetHistory(ctx context.Context, input *ledgerdto.GetHistoryInput) (*ledgerdto.GetHistoryOutput, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	txType := domain.TransactionType(strings.ToLower(input.Type))
	switch txType {
	case "", domain.TransactionMLMCommission, domain.TransactionCredit:
	default:
		return nil, fmt.Errorf("%w: type %q", domain.ErrInvalidArgument, input.Type)
	}

	limit, offset := normalizePage(input.Limit, input.Offset, defaultHistoryLimit, maxHistoryLimit)
	entries, total, err := uc.ledgerRepo.ListHistory(ctx, domain.HistoryFilter{
		UserID: input.UserID,
		Type:   txType,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return &ledgerdto.GetHistoryOutput{Entries: entries, Total: total}, nil
}
