package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainSponsorLink(model *models.SponsorLinkModel) *domain.SponsorLink {
	return &domain.SponsorLink{
		UserID:    model.UserID,
		SponsorID: model.SponsorID,
		CreatedAt: model.CreatedAt,
	}
}

func ToGORMSponsorLink(link *domain.SponsorLink) *models.SponsorLinkModel {
	return &models.SponsorLinkModel{
		UserID:    link.UserID,
		SponsorID: link.SponsorID,
		CreatedAt: link.CreatedAt,
	}
}
