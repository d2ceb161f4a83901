package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	relationsdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/relations"
)

type HierarchyUsecase interface {
	SetSponsor(ctx context.Context, input *relationsdto.SetSponsorInput) (*domain.SponsorLink, error)
	SetSponsorByCode(ctx context.Context, userID, referralCode string) (*domain.SponsorLink, error)
	GetSponsor(ctx context.Context, userID string) (string, error)
	GetUpline(ctx context.Context, userID string, maxLevels int) ([]domain.UplineEntry, error)
	GetDirectDownline(ctx context.Context, userID string) ([]domain.DownlineMember, error)
	GetAllDownline(ctx context.Context, userID string, maxLevels int) ([]domain.DownlineMember, error)
	GetDirectTeamSize(ctx context.Context, userID string) (int, error)
	GetFullTeamSize(ctx context.Context, userID string) (int, error)
}

type DefaultHierarchyUsecase struct {
	hierarchyRepo domain.HierarchyRepository
	affiliateRepo domain.AffiliateRepository
	identity      domain.IdentityService
	events        domain.EventSink
	metrics       *metrics.ReferralMetrics
	logger        *zap.Logger
	now           func() time.Time
}

func NewDefaultHierarchyUsecase(
	hierarchyRepo domain.HierarchyRepository,
	affiliateRepo domain.AffiliateRepository,
	identity domain.IdentityService,
	events domain.EventSink,
	referralMetrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultHierarchyUsecase {
	return &DefaultHierarchyUsecase{
		hierarchyRepo: hierarchyRepo,
		affiliateRepo: affiliateRepo,
		identity:      identity,
		events:        events,
		metrics:       referralMetrics,
		logger:        logger,
		now:           time.Now,
	}
}

// SetSponsor creates the user's sponsor link. The first link wins: a second call for the
// same user is rejected with ErrSponsorAlreadySet, never overwritten.
func (uc *DefaultHierarchyUsecase) SetSponsor(ctx context.Context, input *relationsdto.SetSponsorInput) (*domain.SponsorLink, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}

	sponsorID := strings.TrimSpace(input.SponsorID)
	if sponsorID == "" {
		code := strings.TrimSpace(input.ReferralCode)
		if code == "" {
			return nil, fmt.Errorf("%w: sponsor_id or referral_code is required", domain.ErrInvalidArgument)
		}
		profile, err := uc.affiliateRepo.GetAffiliateByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolve referral code: %w", err)
		}
		sponsorID = profile.UserID
	}

	if userID == sponsorID {
		uc.metrics.RecordSponsorLink("self")
		return nil, domain.ErrSelfSponsorship
	}

	if _, err := uc.hierarchyRepo.GetSponsorLink(ctx, userID); err == nil {
		uc.metrics.RecordSponsorLink("duplicate")
		return nil, domain.ErrSponsorAlreadySet
	} else if !errors.Is(err, domain.ErrSponsorNotFound) {
		return nil, err
	}

	for _, id := range []string{userID, sponsorID} {
		if err := uc.ensureUserExists(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := uc.ensureNotDescendant(ctx, userID, sponsorID); err != nil {
		uc.metrics.RecordSponsorLink("descendant")
		return nil, err
	}

	link := &domain.SponsorLink{
		UserID:    userID,
		SponsorID: sponsorID,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.hierarchyRepo.CreateSponsorLink(ctx, link); err != nil {
		if errors.Is(err, domain.ErrSponsorAlreadySet) {
			uc.metrics.RecordSponsorLink("duplicate")
		}
		return nil, err
	}
	uc.metrics.RecordSponsorLink("created")
	uc.logger.Info("sponsor set", zap.String("user_id", userID), zap.String("sponsor_id", sponsorID))

	emit(ctx, uc.events, uc.logger, domain.Event{
		Type:       domain.EventSponsorSet,
		Key:        userID,
		OccurredAt: link.CreatedAt,
		Data: domain.SponsorSetData{
			UserID:    userID,
			SponsorID: sponsorID,
			CreatedAt: link.CreatedAt,
		},
	})
	return link, nil
}

// SetSponsorByCode resolves the sponsor from an affiliate referral code.
func (uc *DefaultHierarchyUsecase) SetSponsorByCode(ctx context.Context, userID, referralCode string) (*domain.SponsorLink, error) {
	if strings.TrimSpace(referralCode) == "" {
		return nil, fmt.Errorf("%w: referral_code is required", domain.ErrInvalidArgument)
	}
	return uc.SetSponsor(ctx, &relationsdto.SetSponsorInput{UserID: userID, ReferralCode: referralCode})
}

func (uc *DefaultHierarchyUsecase) ensureUserExists(ctx context.Context, userID string) error {
	exists, err := uc.identity.UserExists(ctx, userID)
	if err != nil {
		return dependencyError(uc.metrics, "identity", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return nil
}

// ensureNotDescendant rejects a sponsor that already sits below userID, which would close a loop.
func (uc *DefaultHierarchyUsecase) ensureNotDescendant(ctx context.Context, userID, sponsorID string) error {
	seen := map[string]bool{sponsorID: true}
	current := sponsorID
	for {
		link, err := uc.hierarchyRepo.GetSponsorLink(ctx, current)
		if errors.Is(err, domain.ErrSponsorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if link.SponsorID == userID {
			return fmt.Errorf("%w: %s is in the downline of %s", domain.ErrSponsorIsDescendant, sponsorID, userID)
		}
		if seen[link.SponsorID] {
			return uc.cycleDetected(sponsorID, link.SponsorID)
		}
		seen[link.SponsorID] = true
		current = link.SponsorID
	}
}

func (uc *DefaultHierarchyUsecase) GetSponsor(ctx context.Context, userID string) (string, error) {
	link, err := uc.hierarchyRepo.GetSponsorLink(ctx, userID)
	if err != nil {
		return "", err
	}
	return link.SponsorID, nil
}

// GetUpline walks sponsor links from userID. Levels are contiguous from 1; the walk stops at
// the first user without a sponsor or after maxLevels.
func (uc *DefaultHierarchyUsecase) GetUpline(ctx context.Context, userID string, maxLevels int) ([]domain.UplineEntry, error) {
	levels := domain.ClampLevels(maxLevels)
	upline := make([]domain.UplineEntry, 0, levels)
	seen := map[string]bool{userID: true}

	current := userID
	for level := 1; level <= levels; level++ {
		link, err := uc.hierarchyRepo.GetSponsorLink(ctx, current)
		if errors.Is(err, domain.ErrSponsorNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if seen[link.SponsorID] {
			return nil, uc.cycleDetected(userID, link.SponsorID)
		}
		seen[link.SponsorID] = true
		upline = append(upline, domain.UplineEntry{Level: level, AncestorID: link.SponsorID})
		current = link.SponsorID
	}
	return upline, nil
}

func (uc *DefaultHierarchyUsecase) GetDirectDownline(ctx context.Context, userID string) ([]domain.DownlineMember, error) {
	links, err := uc.hierarchyRepo.GetDirectDownline(ctx, userID)
	if err != nil {
		return nil, err
	}
	members := make([]domain.DownlineMember, len(links))
	for i, link := range links {
		members[i] = domain.DownlineMember{
			MemberID:  link.UserID,
			Level:     1,
			SponsorID: link.SponsorID,
			CreatedAt: link.CreatedAt,
		}
	}
	return members, nil
}

// GetAllDownline expands the downline breadth-first, one query per level.
func (uc *DefaultHierarchyUsecase) GetAllDownline(ctx context.Context, userID string, maxLevels int) ([]domain.DownlineMember, error) {
	levels := domain.ClampLevels(maxLevels)
	var members []domain.DownlineMember
	seen := map[string]bool{userID: true}

	frontier := []string{userID}
	for level := 1; level <= levels && len(frontier) > 0; level++ {
		links, err := uc.hierarchyRepo.GetDownlineOf(ctx, frontier)
		if err != nil {
			return nil, err
		}
		if len(links) == 0 {
			break
		}
		next := make([]string, 0, len(links))
		for _, link := range links {
			if seen[link.UserID] {
				return nil, uc.cycleDetected(userID, link.UserID)
			}
			seen[link.UserID] = true
			members = append(members, domain.DownlineMember{
				MemberID:  link.UserID,
				Level:     level,
				SponsorID: link.SponsorID,
				CreatedAt: link.CreatedAt,
			})
			next = append(next, link.UserID)
		}
		frontier = next
	}
	return members, nil
}

// GetDirectTeamSize counts level-1 referrals only. The leaderboard ranks by this width.
func (uc *DefaultHierarchyUsecase) GetDirectTeamSize(ctx context.Context, userID string) (int, error) {
	links, err := uc.hierarchyRepo.GetDirectDownline(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(links), nil
}

// GetFullTeamSize counts the downline over all MaxLevels levels, as team stats report it.
func (uc *DefaultHierarchyUsecase) GetFullTeamSize(ctx context.Context, userID string) (int, error) {
	members, err := uc.GetAllDownline(ctx, userID, domain.MaxLevels)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

func (uc *DefaultHierarchyUsecase) cycleDetected(startID, repeatedID string) error {
	uc.metrics.RecordInvariantViolation("cyclic_hierarchy")
	uc.logger.Error("hierarchy cycle detected",
		zap.String("start_user_id", startID),
		zap.String("repeated_user_id", repeatedID),
	)
	return fmt.Errorf("%w: %s reached twice from %s", domain.ErrCyclicHierarchy, repeatedID, startID)
}
