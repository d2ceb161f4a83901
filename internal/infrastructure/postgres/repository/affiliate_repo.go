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

type DefaultAffiliateRepository struct {
	DB *gorm.DB
}

func NewDefaultAffiliateRepository(db *gorm.DB) *DefaultAffiliateRepository {
	return &DefaultAffiliateRepository{
		DB: db,
	}
}

// CreateAffiliate reports ErrAffiliateExists on a user id or referral code collision.
func (r *DefaultAffiliateRepository) CreateAffiliate(ctx context.Context, profile *domain.AffiliateProfile) error {
	result := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mappers.ToGORMAffiliate(profile))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAffiliateExists
	}
	return nil
}

func (r *DefaultAffiliateRepository) GetAffiliate(ctx context.Context, userID string) (*domain.AffiliateProfile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *DefaultAffiliateRepository) GetAffiliateByCode(ctx context.Context, referralCode string) (*domain.AffiliateProfile, error) {
	return r.first(ctx, "referral_code = ?", referralCode)
}

func (r *DefaultAffiliateRepository) first(ctx context.Context, query string, arg string) (*domain.AffiliateProfile, error) {
	var model models.AffiliateProfileModel
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAffiliateNotFound
		}
		return nil, err
	}
	return mappers.ToDomainAffiliate(&model), nil
}

func (r *DefaultAffiliateRepository) ListAffiliates(ctx context.Context, districts []string) ([]*domain.AffiliateProfile, error) {
	query := r.DB.WithContext(ctx).Model(&models.AffiliateProfileModel{})
	if districts != nil {
		if len(districts) == 0 {
			return []*domain.AffiliateProfile{}, nil
		}
		query = query.Where("district IN ?", districts)
	}

	var profiles []models.AffiliateProfileModel
	if err := query.Order("created_at ASC, user_id ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.AffiliateProfile, len(profiles))
	for i := range profiles {
		out[i] = mappers.ToDomainAffiliate(&profiles[i])
	}
	return out, nil
}

func (r *DefaultAffiliateRepository) GetAffiliates(ctx context.Context, userIDs []string) (map[string]*domain.AffiliateProfile, error) {
	out := make(map[string]*domain.AffiliateProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []models.AffiliateProfileModel
	if err := r.DB.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		out[profiles[i].UserID] = mappers.ToDomainAffiliate(&profiles[i])
	}
	return out, nil
}
