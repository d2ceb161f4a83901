package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	affiliatedto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/affiliate"
)

const (
	referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralCodeLength   = 8
	// codeAttempts bounds retries when a generated referral code is already taken.
	codeAttempts = 3
)

type AffiliateUsecase interface {
	RegisterAffiliate(ctx context.Context, input *affiliatedto.RegisterAffiliateInput) (*domain.AffiliateProfile, error)
	GetAffiliate(ctx context.Context, userID string) (*domain.AffiliateProfile, error)
}

type DefaultAffiliateUsecase struct {
	affiliateRepo domain.AffiliateRepository
	identity      domain.IdentityService
	geo           *domain.GeoTaxonomy
	metrics       *metrics.ReferralMetrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewDefaultAffiliateUsecase(
	affiliateRepo domain.AffiliateRepository,
	identity domain.IdentityService,
	geo *domain.GeoTaxonomy,
	referralMetrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultAffiliateUsecase {
	return &DefaultAffiliateUsecase{
		affiliateRepo: affiliateRepo,
		identity:      identity,
		geo:           geo,
		metrics:       referralMetrics,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterAffiliate gives an existing identity a referral code and an optional district.
func (uc *DefaultAffiliateUsecase) RegisterAffiliate(ctx context.Context, input *affiliatedto.RegisterAffiliateInput) (*domain.AffiliateProfile, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}

	district := ""
	if d := strings.TrimSpace(input.District); d != "" {
		canonical, err := uc.geo.CanonicalDistrict(d)
		if err != nil {
			return nil, err
		}
		district = canonical
	}

	if _, err := uc.affiliateRepo.GetAffiliate(ctx, userID); err == nil {
		return nil, domain.ErrAffiliateExists
	} else if !errors.Is(err, domain.ErrAffiliateNotFound) {
		return nil, err
	}

	exists, err := uc.identity.UserExists(ctx, userID)
	if err != nil {
		return nil, dependencyError(uc.metrics, "identity", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}

	generateCode, err := nanoid.CustomASCII(referralCodeAlphabet, referralCodeLength)
	if err != nil {
		return nil, err
	}

	profile := &domain.AffiliateProfile{
		UserID:    userID,
		District:  district,
		CreatedAt: uc.now().UTC(),
	}
	for attempt := 1; ; attempt++ {
		profile.ReferralCode = generateCode()
		err = uc.affiliateRepo.CreateAffiliate(ctx, profile)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAffiliateExists) || attempt == codeAttempts {
			return nil, err
		}
		// the user id was free a moment ago, so a conflict here is most likely the code
		if _, getErr := uc.affiliateRepo.GetAffiliate(ctx, userID); getErr == nil {
			return nil, err
		}
	}

	uc.logger.Info("affiliate registered",
		zap.String("user_id", userID),
		zap.String("referral_code", profile.ReferralCode),
		zap.String("district", district),
	)
	return profile, nil
}

func (uc *DefaultAffiliateUsecase) GetAffiliate(ctx context.Context, userID string) (*domain.AffiliateProfile, error) {
	return uc.affiliateRepo.GetAffiliate(ctx, userID)
}
