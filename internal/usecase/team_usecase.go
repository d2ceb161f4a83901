package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	teamdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/team"
)

type TeamConfig struct {
	// Concurrency bounds the number of candidates aggregated at once.
	Concurrency  int
	DefaultLimit int
	MaxLimit     int
	// Location is the timezone date ranges are normalized in.
	Location *time.Location
}

func (c TeamConfig) withDefaults() TeamConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultPageLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = maxPageLimit
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	return c
}

type TeamUsecase interface {
	GetTeamStats(ctx context.Context, userID string) (*domain.TeamStats, error)
	GetTeamMembersDetailed(ctx context.Context, input *teamdto.TeamMembersInput) (*teamdto.TeamMembersOutput, error)
	GetLeaderboard(ctx context.Context, input *teamdto.LeaderboardInput) (*teamdto.LeaderboardOutput, error)
	GetDivisions() []string
	GetDistrictsByDivision(division string) ([]string, error)
	GetDivisionForDistrict(district string) (string, error)
}

type DefaultTeamUsecase struct {
	hierarchy      HierarchyUsecase
	commissionRepo domain.CommissionRepository
	affiliateRepo  domain.AffiliateRepository
	identity       domain.IdentityService
	purchases      domain.PurchaseHistory
	geo            *domain.GeoTaxonomy
	cfg            TeamConfig
	metrics        *metrics.ReferralMetrics
	logger         *zap.Logger
}

func NewDefaultTeamUsecase(
	hierarchy HierarchyUsecase,
	commissionRepo domain.CommissionRepository,
	affiliateRepo domain.AffiliateRepository,
	identity domain.IdentityService,
	purchases domain.PurchaseHistory,
	geo *domain.GeoTaxonomy,
	cfg TeamConfig,
	referralMetrics *metrics.ReferralMetrics,
	logger *zap.Logger,
) *DefaultTeamUsecase {
	return &DefaultTeamUsecase{
		hierarchy:      hierarchy,
		commissionRepo: commissionRepo,
		affiliateRepo:  affiliateRepo,
		identity:       identity,
		purchases:      purchases,
		geo:            geo,
		cfg:            cfg.withDefaults(),
		metrics:        referralMetrics,
		logger:         logger,
	}
}

// GetTeamStats counts the downline per level and summarizes the user's commission earnings.
// Every level 1..MaxLevels is present in both maps.
func (uc *DefaultTeamUsecase) GetTeamStats(ctx context.Context, userID string) (*domain.TeamStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}

	members, err := uc.hierarchy.GetAllDownline(ctx, userID, domain.MaxLevels)
	if err != nil {
		return nil, err
	}
	summary, err := uc.commissionRepo.SummarizeByLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.TeamStats{
		UserID:           userID,
		TotalTeamMembers: len(members),
		TeamByLevel:      make(map[int]int, domain.MaxLevels),
		EarningsByLevel:  make(map[int]domain.LevelEarnings, domain.MaxLevels),
	}
	for level := 1; level <= domain.MaxLevels; level++ {
		stats.TeamByLevel[level] = 0
		stats.EarningsByLevel[level] = domain.LevelEarnings{
			Level:    level,
			Total:    decimal.Zero,
			Pending:  decimal.Zero,
			Approved: decimal.Zero,
		}
	}
	for _, m := range members {
		stats.TeamByLevel[m.Level]++
	}
	for _, e := range summary {
		stats.EarningsByLevel[e.Level] = e
	}
	stats.DirectReferrals = stats.TeamByLevel[1]
	return stats, nil
}

// GetTeamMembersDetailed pages through the downline, optionally one level only and optionally
// only members who joined within the period. Members of the page are enriched with identity
// and profile data.
func (uc *DefaultTeamUsecase) GetTeamMembersDetailed(ctx context.Context, input *teamdto.TeamMembersInput) (*teamdto.TeamMembersOutput, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	if input.Level < 0 || input.Level > domain.MaxLevels {
		return nil, fmt.Errorf("%w: level %d outside 1..%d", domain.ErrInvalidArgument, input.Level, domain.MaxLevels)
	}
	if err := input.Period.Validate(); err != nil {
		return nil, err
	}
	period := input.Period.Normalize(uc.cfg.Location)
	limit, offset := normalizePage(input.Limit, input.Offset, uc.cfg.DefaultLimit, uc.cfg.MaxLimit)

	downline, err := uc.hierarchy.GetAllDownline(ctx, input.UserID, domain.MaxLevels)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.DownlineMember, 0, len(downline))
	for _, m := range downline {
		if input.Level != 0 && m.Level != input.Level {
			continue
		}
		if !period.Contains(m.CreatedAt) {
			continue
		}
		matched = append(matched, m)
	}

	from, to := pageBounds(len(matched), limit, offset)
	page := matched[from:to]

	ids := make([]string, len(page))
	for i, m := range page {
		ids[i] = m.MemberID
	}
	profiles, err := uc.affiliateRepo.GetAffiliates(ctx, ids)
	if err != nil {
		return nil, err
	}
	users, err := uc.resolveUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &teamdto.TeamMembersOutput{
		Members: make([]teamdto.TeamMember, len(page)),
		Total:   len(matched),
	}
	for i, m := range page {
		member := teamdto.TeamMember{
			MemberID:  m.MemberID,
			Level:     m.Level,
			SponsorID: m.SponsorID,
			JoinedAt:  m.CreatedAt,
		}
		if u := users[i]; u != nil {
			member.DisplayName = u.DisplayName
			member.Email = u.Email
		}
		if p, ok := profiles[m.MemberID]; ok {
			member.District = p.District
		}
		out.Members[i] = member
	}
	return out, nil
}

// GetLeaderboard ranks affiliates by their direct team. Positions are assigned over the full
// ranking before the page is cut, and a failure for any candidate fails the whole call.
func (uc *DefaultTeamUsecase) GetLeaderboard(ctx context.Context, input *teamdto.LeaderboardInput) (*teamdto.LeaderboardOutput, error) {
	orderBy, err := domain.ParseLeaderboardOrderBy(input.OrderBy)
	if err != nil {
		return nil, err
	}
	order, err := domain.ParseSortOrder(input.Order)
	if err != nil {
		return nil, err
	}
	if err := input.Filter.Period.Validate(); err != nil {
		return nil, err
	}
	period := input.Filter.Period.Normalize(uc.cfg.Location)
	limit, offset := normalizePage(input.Limit, input.Offset, uc.cfg.DefaultLimit, uc.cfg.MaxLimit)

	start := time.Now()
	defer func() { uc.metrics.RecordLeaderboardDuration(string(orderBy), time.Since(start).Seconds()) }()

	districts, err := uc.candidateDistricts(input.Filter)
	if err != nil {
		return nil, err
	}
	candidates, err := uc.affiliateRepo.ListAffiliates(ctx, districts)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			entry, err := uc.aggregateCandidate(gctx, candidate, period)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Warn("leaderboard aggregation failed", zap.String("order_by", string(orderBy)), zap.Error(err))
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		c := compareEntries(entries[i], entries[j], orderBy)
		if order == domain.SortAsc {
			return c < 0
		}
		return c > 0
	})
	for i := range entries {
		entries[i].Position = i + 1
	}

	from, to := pageBounds(len(entries), limit, offset)
	page := append([]domain.LeaderboardEntry(nil), entries[from:to]...)

	ids := make([]string, len(page))
	for i, e := range page {
		ids[i] = e.UserID
	}
	users, err := uc.resolveUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range page {
		if users[i] != nil {
			page[i].DisplayName = users[i].DisplayName
		}
	}

	return &teamdto.LeaderboardOutput{Entries: page, Total: len(entries)}, nil
}

func (uc *DefaultTeamUsecase) aggregateCandidate(ctx context.Context, candidate *domain.AffiliateProfile, period domain.DateRange) (domain.LeaderboardEntry, error) {
	directs, err := uc.hierarchy.GetDirectDownline(ctx, candidate.UserID)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	entry := domain.LeaderboardEntry{
		UserID:             candidate.UserID,
		District:           candidate.District,
		TeamSize:           len(directs),
		TeamPurchasedValue: decimal.Zero,
	}
	for _, member := range directs {
		total, err := uc.purchases.GetPurchaseTotal(ctx, member.MemberID, period)
		if err != nil {
			return domain.LeaderboardEntry{}, dependencyError(uc.metrics, "purchase_history", err)
		}
		entry.TeamPurchasedValue = entry.TeamPurchasedValue.Add(total)
	}
	return entry, nil
}

func compareEntries(a, b domain.LeaderboardEntry, orderBy domain.LeaderboardOrderBy) int {
	if orderBy == domain.OrderByTeamPurchasedValue {
		return a.TeamPurchasedValue.Cmp(b.TeamPurchasedValue)
	}
	switch {
	case a.TeamSize < b.TeamSize:
		return -1
	case a.TeamSize > b.TeamSize:
		return 1
	}
	return 0
}

// candidateDistricts turns the geo filter into a district list. A district filter takes
// precedence over a division filter; nil means no filter.
func (uc *DefaultTeamUsecase) candidateDistricts(filter domain.LeaderboardFilter) ([]string, error) {
	if filter.District != "" {
		district, err := uc.geo.CanonicalDistrict(filter.District)
		if err != nil {
			return nil, err
		}
		return []string{district}, nil
	}
	if filter.Division != "" {
		return uc.geo.DistrictsByDivision(filter.Division)
	}
	return nil, nil
}

// resolveUsers looks up identities in order. Unknown users resolve to nil.
func (uc *DefaultTeamUsecase) resolveUsers(ctx context.Context, ids []string) ([]*domain.User, error) {
	users := make([]*domain.User, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			user, err := uc.identity.ResolveUser(gctx, id)
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return dependencyError(uc.metrics, "identity", err)
			}
			users[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return users, nil
}

func (uc *DefaultTeamUsecase) GetDivisions() []string {
	return uc.geo.Divisions()
}

func (uc *DefaultTeamUsecase) GetDistrictsByDivision(division string) ([]string, error) {
	return uc.geo.DistrictsByDivision(division)
}

func (uc *DefaultTeamUsecase) GetDivisionForDistrict(district string) (string, error) {
	return uc.geo.DivisionForDistrict(district)
}
