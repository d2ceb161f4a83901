package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
)

type UseCases struct {
	HierarchyUsecase  usecase.HierarchyUsecase
	AffiliateUsecase  usecase.AffiliateUsecase
	CommissionUsecase usecase.CommissionUsecase
	LedgerUsecase     usecase.LedgerUsecase
	TeamUsecase       usecase.TeamUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	rates, err := deps.Config.Commission.RateTable()
	if err != nil {
		return nil, fmt.Errorf("commission rates: %w", err)
	}
	loc, err := deps.Config.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", deps.Config.Timezone, err)
	}

	repos := deps.Repositories
	geo := domain.BangladeshGeo()

	hierarchyUsecase := usecase.NewDefaultHierarchyUsecase(
		repos.HierarchyRepo,
		repos.AffiliateRepo,
		deps.Identity,
		deps.EventSink,
		deps.Metrics,
		deps.Logger,
	)

	affiliateUsecase := usecase.NewDefaultAffiliateUsecase(
		repos.AffiliateRepo,
		deps.Identity,
		geo,
		deps.Metrics,
		deps.Logger,
	)

	commissionUsecase := usecase.NewDefaultCommissionUsecase(
		hierarchyUsecase,
		repos.CommissionRepo,
		rates,
		deps.EventSink,
		deps.Metrics,
		deps.Logger,
	)

	ledgerUsecase := usecase.NewDefaultLedgerUsecase(
		repos.LedgerRepo,
		repos.CommissionRepo,
		deps.EventSink,
		deps.Metrics,
		deps.Logger,
	)

	teamUsecase := usecase.NewDefaultTeamUsecase(
		hierarchyUsecase,
		repos.CommissionRepo,
		repos.AffiliateRepo,
		deps.Identity,
		deps.Purchases,
		geo,
		usecase.TeamConfig{
			Concurrency:  deps.Config.Leaderboard.Concurrency,
			DefaultLimit: deps.Config.Leaderboard.DefaultLimit,
			MaxLimit:     deps.Config.Leaderboard.MaxLimit,
			Location:     loc,
		},
		deps.Metrics,
		deps.Logger,
	)

	return &UseCases{
		HierarchyUsecase:  hierarchyUsecase,
		AffiliateUsecase:  affiliateUsecase,
		CommissionUsecase: commissionUsecase,
		LedgerUsecase:     ledgerUsecase,
		TeamUsecase:       teamUsecase,
	}, nil
}
