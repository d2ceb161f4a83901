package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainAffiliate(model *models.AffiliateProfileModel) *domain.AffiliateProfile {
	return &domain.AffiliateProfile{
		UserID:       model.UserID,
		ReferralCode: model.ReferralCode,
		District:     model.District,
		CreatedAt:    model.CreatedAt,
	}
}

func ToGORMAffiliate(profile *domain.AffiliateProfile) *models.AffiliateProfileModel {
	return &models.AffiliateProfileModel{
		UserID:       profile.UserID,
		ReferralCode: profile.ReferralCode,
		District:     profile.District,
		CreatedAt:    profile.CreatedAt,
	}
}
