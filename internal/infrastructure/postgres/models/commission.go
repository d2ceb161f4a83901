package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CommissionModel struct {
	ID            string          `gorm:"primaryKey;type:uuid"`
	ConversionID  string          `gorm:"type:varchar(128);not null;uniqueIndex:uq_commission_conversion_beneficiary_level,priority:1"`
	OrderID       string          `gorm:"type:varchar(128);not null;default:''"`
	BeneficiaryID string          `gorm:"type:varchar(64);not null;uniqueIndex:uq_commission_conversion_beneficiary_level,priority:2;index"`
	SourceUserID  string          `gorm:"type:varchar(64);not null"`
	Level         int             `gorm:"not null;uniqueIndex:uq_commission_conversion_beneficiary_level,priority:3"`
	RatePercent   decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status        string          `gorm:"type:varchar(16);not null;index"`
	CreatedAt     time.Time       `gorm:"not null"`
	ApprovedAt    *time.Time
}

func (CommissionModel) TableName() string {
	return "commissions"
}
