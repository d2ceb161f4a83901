package commissiondto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type ListCommissionsOutput struct {
	Commissions []*domain.CommissionRecord
	Total       int64
}
