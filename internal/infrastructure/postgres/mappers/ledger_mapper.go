package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainBalance(model *models.BalanceModel) *domain.Balance {
	return &domain.Balance{
		UserID:    model.UserID,
		Available: model.Available,
		Pending:   model.Pending,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToDomainHistoryEntry(model *models.TransactionHistoryModel) *domain.TransactionHistoryEntry {
	return &domain.TransactionHistoryEntry{
		ID:            model.ID,
		UserID:        model.UserID,
		Type:          domain.TransactionType(model.Type),
		Amount:        model.Amount,
		Status:        domain.TransactionStatus(model.Status),
		Description:   model.Description,
		RelatedUserID: model.RelatedUserID,
		Level:         model.Level,
		CommissionID:  model.CommissionID,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMHistoryEntry(entry *domain.TransactionHistoryEntry) *models.TransactionHistoryModel {
	return &models.TransactionHistoryModel{
		ID:            entry.ID,
		UserID:        entry.UserID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		Status:        string(entry.Status),
		Description:   entry.Description,
		RelatedUserID: entry.RelatedUserID,
		Level:         entry.Level,
		CommissionID:  entry.CommissionID,
		CreatedAt:     entry.CreatedAt,
	}
}
