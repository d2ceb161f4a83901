package memory

import (
	"context"
	"sort"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) GetBalance(ctx context.Context, userID string) (*domain.Balance, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balanceLocked(userID), nil
}

func (r *LedgerRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, bucket domain.BalanceBucket, entry *domain.TransactionHistoryEntry) (*domain.Balance, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balanceLocked(userID)
	if err := balance.Credit(amount, bucket); err != nil {
		return nil, err
	}
	balance.UpdatedAt = entry.CreatedAt
	s.balances[userID] = *balance
	s.history = append(s.history, *entry)
	return balance, nil
}

func (r *LedgerRepository) ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]*domain.TransactionHistoryEntry, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.TransactionHistoryEntry
	for _, h := range s.history {
		if h.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && h.Type != filter.Type {
			continue
		}
		h := h
		matched = append(matched, &h)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	from, to := paginate(len(matched), filter.Limit, filter.Offset)
	return matched[from:to], int64(len(matched)), nil
}
