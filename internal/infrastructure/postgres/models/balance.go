package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceModel struct {
	UserID    string          `gorm:"primaryKey;type:varchar(64)"`
	Available decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Pending   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	UpdatedAt time.Time       `gorm:"not null"`
}

func (BalanceModel) TableName() string {
	return "balances"
}

type TransactionHistoryModel struct {
	ID            string          `gorm:"primaryKey;type:varchar(26)"`
	UserID        string          `gorm:"type:varchar(64);not null;index:idx_history_user_created,priority:1"`
	Type          string          `gorm:"type:varchar(32);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status        string          `gorm:"type:varchar(16);not null"`
	Description   string          `gorm:"type:text;not null;default:''"`
	RelatedUserID string          `gorm:"type:varchar(64);not null;default:''"`
	Level         *int
	CommissionID  string    `gorm:"type:varchar(64);not null;default:'';index"`
	CreatedAt     time.Time `gorm:"not null;index:idx_history_user_created,priority:2"`
}

func (TransactionHistoryModel) TableName() string {
	return "transaction_history"
}
