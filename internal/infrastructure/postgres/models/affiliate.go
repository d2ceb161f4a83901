package models

import "time"

type AffiliateProfileModel struct {
	UserID       string    `gorm:"primaryKey;type:varchar(64)"`
	ReferralCode string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	District     string    `gorm:"type:varchar(64);not null;default:'';index"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AffiliateProfileModel) TableName() string {
	return "affiliate_profiles"
}
