package models

import "time"

type SponsorLinkModel struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)"`
	SponsorID string    `gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SponsorLinkModel) TableName() string {
	return "sponsor_links"
}
