package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainCommission(model *models.CommissionModel) *domain.CommissionRecord {
	return &domain.CommissionRecord{
		ID:            model.ID,
		ConversionID:  model.ConversionID,
		OrderID:       model.OrderID,
		BeneficiaryID: model.BeneficiaryID,
		SourceUserID:  model.SourceUserID,
		Level:         model.Level,
		RatePercent:   model.RatePercent,
		Amount:        model.Amount,
		Status:        domain.CommissionStatus(model.Status),
		CreatedAt:     model.CreatedAt,
		ApprovedAt:    model.ApprovedAt,
	}
}

func ToGORMCommission(record *domain.CommissionRecord) *models.CommissionModel {
	return &models.CommissionModel{
		ID:            record.ID,
		ConversionID:  record.ConversionID,
		OrderID:       record.OrderID,
		BeneficiaryID: record.BeneficiaryID,
		SourceUserID:  record.SourceUserID,
		Level:         record.Level,
		RatePercent:   record.RatePercent,
		Amount:        record.Amount,
		Status:        string(record.Status),
		CreatedAt:     record.CreatedAt,
		ApprovedAt:    record.ApprovedAt,
	}
}
