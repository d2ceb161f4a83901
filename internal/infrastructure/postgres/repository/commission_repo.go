package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

type DefaultCommissionRepository struct {
	DB *gorm.DB
}

func NewDefaultCommissionRepository(db *gorm.DB) *DefaultCommissionRepository {
	return &DefaultCommissionRepository{
		DB: db,
	}
}

// CreateCommissionWithCredit runs insert, pending credit and history append in one
// transaction. The unique (conversion_id, beneficiary_id, level) index turns a replay into a
// zero-row insert, which is reported as false.
func (r *DefaultCommissionRepository) CreateCommissionWithCredit(ctx context.Context, record *domain.CommissionRecord, entry *domain.TransactionHistoryEntry) (bool, error) {
	inserted := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversion_id"}, {Name: "beneficiary_id"}, {Name: "level"}},
			DoNothing: true,
		}).Create(mappers.ToGORMCommission(record))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		balance, err := lockBalance(tx, record.BeneficiaryID, record.CreatedAt)
		if err != nil {
			return err
		}
		if err := balance.Credit(record.Amount, domain.BucketPending); err != nil {
			return err
		}
		if err := saveBalance(tx, balance, record.CreatedAt); err != nil {
			return err
		}
		if err := tx.Create(mappers.ToGORMHistoryEntry(entry)).Error; err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *DefaultCommissionRepository) GetCommission(ctx context.Context, commissionID string) (*domain.CommissionRecord, error) {
	var model models.CommissionModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", commissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommissionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainCommission(&model), nil
}

// ApproveCommission flips the status with a conditional update so that concurrent approvals
// of the same commission move the money once.
func (r *DefaultCommissionRepository) ApproveCommission(ctx context.Context, commissionID string, approvedAt time.Time) (*domain.ApprovalResult, error) {
	var result *domain.ApprovalResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.CommissionModel{}).
			Where("id = ? AND status = ?", commissionID, string(domain.CommissionPending)).
			Updates(map[string]interface{}{
				"status":      string(domain.CommissionApproved),
				"approved_at": approvedAt,
			})
		if update.Error != nil {
			return update.Error
		}

		var model models.CommissionModel
		if err := tx.First(&model, "id = ?", commissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCommissionNotFound
			}
			return err
		}
		if update.RowsAffected == 0 {
			return domain.ErrCommissionNotPending
		}

		balance, err := lockBalance(tx, model.BeneficiaryID, approvedAt)
		if err != nil {
			return err
		}
		shortfall := balance.Approve(model.Amount)
		if err := saveBalance(tx, balance, approvedAt); err != nil {
			return err
		}

		if err := tx.Model(&models.TransactionHistoryModel{}).
			Where("commission_id = ? AND type = ?", commissionID, string(domain.TransactionMLMCommission)).
			Update("status", string(domain.TransactionCompleted)).Error; err != nil {
			return err
		}

		result = &domain.ApprovalResult{
			Commission: mappers.ToDomainCommission(&model),
			Balance:    balance,
			Shortfall:  shortfall,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *DefaultCommissionRepository) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]*domain.CommissionRecord, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.CommissionModel{})
	if filter.BeneficiaryID != "" {
		query = query.Where("beneficiary_id = ?", filter.BeneficiaryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CommissionModel
	page := query.Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*domain.CommissionRecord, len(rows))
	for i := range rows {
		records[i] = mappers.ToDomainCommission(&rows[i])
	}
	return records, total, nil
}

type levelEarningsRow struct {
	Level    int
	Count    int64
	Total    decimal.Decimal
	Pending  decimal.Decimal
	Approved decimal.Decimal
}

func (r *DefaultCommissionRepository) SummarizeByLevel(ctx context.Context, beneficiaryID string) ([]domain.LevelEarnings, error) {
	var rows []levelEarningsRow
	if err := r.DB.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Select(`level,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS total,
			COALESCE(SUM(amount) FILTER (WHERE status = ?), 0) AS pending,
			COALESCE(SUM(amount) FILTER (WHERE status = ?), 0) AS approved`,
			string(domain.CommissionPending), string(domain.CommissionApproved)).
		Where("beneficiary_id = ?", beneficiaryID).
		Group("level").
		Order("level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.LevelEarnings, len(rows))
	for i, row := range rows {
		out[i] = domain.LevelEarnings(row)
	}
	return out, nil
}
