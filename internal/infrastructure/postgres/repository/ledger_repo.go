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

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{
		DB: db,
	}
}

func (r *DefaultLedgerRepository) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	var model models.BalanceModel
	if err := r.DB.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewBalance(userID), nil
		}
		return nil, err
	}
	return mappers.ToDomainBalance(&model), nil
}

func (r *DefaultLedgerRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, bucket domain.BalanceBucket, entry *domain.TransactionHistoryEntry) (*domain.Balance, error) {
	var balance *domain.Balance
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockBalance(tx, userID, entry.CreatedAt)
		if err != nil {
			return err
		}
		if err := locked.Credit(amount, bucket); err != nil {
			return err
		}
		if err := saveBalance(tx, locked, entry.CreatedAt); err != nil {
			return err
		}
		if err := tx.Create(mappers.ToGORMHistoryEntry(entry)).Error; err != nil {
			return err
		}
		balance = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (r *DefaultLedgerRepository) ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.TransactionHistoryEntry, int64, error) {
	query := r.DB.WithContext(ctx).Model(&models.TransactionHistoryModel{}).Where("user_id = ?", filter.UserID)
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransactionHistoryModel
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

	entries := make([]*domain.TransactionHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = mappers.ToDomainHistoryEntry(&rows[i])
	}
	return entries, total, nil
}

// lockBalance makes sure the user's balance row exists and locks it FOR UPDATE for the rest
// of the transaction.
func lockBalance(tx *gorm.DB, userID string, now time.Time) (*domain.Balance, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BalanceModel{
		UserID:    userID,
		Available: decimal.Zero,
		Pending:   decimal.Zero,
		UpdatedAt: now,
	}).Error; err != nil {
		return nil, err
	}

	var model models.BalanceModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return mappers.ToDomainBalance(&model), nil
}

func saveBalance(tx *gorm.DB, balance *domain.Balance, now time.Time) error {
	balance.UpdatedAt = now
	return tx.Model(&models.BalanceModel{}).
		Where("user_id = ?", balance.UserID).
		Updates(map[string]interface{}{
			"available":  balance.Available,
			"pending":    balance.Pending,
			"updated_at": now,
		}).Error
}
