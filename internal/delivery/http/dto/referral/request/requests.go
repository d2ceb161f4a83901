package request

import "github.com/shopspring/decimal"

type RegisterAffiliateRequest struct {
	UserID   string `json:"user_id" validate:"required,max=64"`
	District string `json:"district" validate:"max=64"`
}

type SetSponsorRequest struct {
	UserID       string `json:"user_id" validate:"required,max=64"`
	SponsorID    string `json:"sponsor_id" validate:"required_without=ReferralCode,max=64"`
	ReferralCode string `json:"referral_code" validate:"required_without=SponsorID,max=32"`
}

// ConversionRequest accepts the amount as a JSON number or string.
type ConversionRequest struct {
	ConversionID string          `json:"conversion_id" validate:"required,max=128"`
	OrderID      string          `json:"order_id" validate:"max=128"`
	UserID       string          `json:"user_id" validate:"required,max=64"`
	Amount       decimal.Decimal `json:"amount"`
}

type CreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Bucket      string          `json:"bucket" validate:"omitempty,oneof=available pending"`
	Description string          `json:"description" validate:"max=255"`
}
