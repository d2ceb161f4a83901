// Package memory keeps referral state in process memory behind the same ports as the
// postgres repositories. One mutex guards all tables so multi-table writes stay atomic.
package memory

import (
	"sync"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type commissionKey struct {
	conversionID  string
	beneficiaryID string
	level         int
}

type Store struct {
	mu sync.RWMutex

	links      map[string]domain.SponsorLink
	bySponsor  map[string][]string
	affiliates map[string]domain.AffiliateProfile
	codes      map[string]string

	commissions     map[string]domain.CommissionRecord
	commissionOrder []string
	commissionKeys  map[commissionKey]string
	balances        map[string]domain.Balance
	history         []domain.TransactionHistoryEntry
}

func NewStore() *Store {
	return &Store{
		links:          make(map[string]domain.SponsorLink),
		bySponsor:      make(map[string][]string),
		affiliates:     make(map[string]domain.AffiliateProfile),
		codes:          make(map[string]string),
		commissions:    make(map[string]domain.CommissionRecord),
		commissionKeys: make(map[commissionKey]string),
		balances:       make(map[string]domain.Balance),
	}
}

// balanceLocked returns a copy of the user's balance. Caller holds mu.
func (s *Store) balanceLocked(userID string) *domain.Balance {
	b, ok := s.balances[userID]
	if !ok {
		return domain.NewBalance(userID)
	}
	return &b
}

func paginate(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
