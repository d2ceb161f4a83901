package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

// downlineBatchSize bounds the IN list of one GetDownlineOf query.
const downlineBatchSize = 1000

type DefaultHierarchyRepository struct {
	DB *gorm.DB
}

func NewDefaultHierarchyRepository(db *gorm.DB) *DefaultHierarchyRepository {
	return &DefaultHierarchyRepository{
		DB: db,
	}
}

// CreateSponsorLink relies on the user_id primary key: of two concurrent inserts for the
// same user exactly one affects a row.
func (r *DefaultHierarchyRepository) CreateSponsorLink(ctx context.Context, link *domain.SponsorLink) error {
	model := mappers.ToGORMSponsorLink(link)
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSponsorAlreadySet
	}
	return nil
}

func (r *DefaultHierarchyRepository) GetSponsorLink(ctx context.Context, userID string) (*domain.SponsorLink, error) {
	var model models.SponsorLinkModel
	if err := r.DB.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSponsorNotFound
		}
		return nil, err
	}
	return mappers.ToDomainSponsorLink(&model), nil
}

func (r *DefaultHierarchyRepository) GetDirectDownline(ctx context.Context, sponsorID string) ([]*domain.SponsorLink, error) {
	var links []models.SponsorLinkModel
	if err := r.DB.WithContext(ctx).
		Where("sponsor_id = ?", sponsorID).
		Order("created_at DESC, user_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return toDomainLinks(links), nil
}

// GetDownlineOf returns the direct referrals of every given sponsor, newest first per batch.
func (r *DefaultHierarchyRepository) GetDownlineOf(ctx context.Context, sponsorIDs []string) ([]*domain.SponsorLink, error) {
	var out []*domain.SponsorLink
	for start := 0; start < len(sponsorIDs); start += downlineBatchSize {
		end := min(start+downlineBatchSize, len(sponsorIDs))

		var links []models.SponsorLinkModel
		if err := r.DB.WithContext(ctx).
			Where("sponsor_id IN ?", sponsorIDs[start:end]).
			Order("created_at DESC, user_id ASC").
			Find(&links).Error; err != nil {
			return nil, err
		}
		out = append(out, toDomainLinks(links)...)
	}
	return out, nil
}

func toDomainLinks(links []models.SponsorLinkModel) []*domain.SponsorLink {
	out := make([]*domain.SponsorLink, len(links))
	for i := range links {
		out[i] = mappers.ToDomainSponsorLink(&links[i])
	}
	return out
}
