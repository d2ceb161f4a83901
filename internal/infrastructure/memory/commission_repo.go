package memory

import (
	"context"
	"sort"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/shopspring/decimal"
)

type CommissionRepository struct {
	store *Store
}

func NewCommissionRepository(store *Store) *CommissionRepository {
	return &CommissionRepository{store: store}
}

func (r *CommissionRepository) CreateCommissionWithCredit(ctx context.Context, record *domain.CommissionRecord, entry *domain.TransactionHistoryEntry) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := commissionKey{conversionID: record.ConversionID, beneficiaryID: record.BeneficiaryID, level: record.Level}
	if _, exists := s.commissionKeys[key]; exists {
		return false, nil
	}

	balance := s.balanceLocked(record.BeneficiaryID)
	if err := balance.Credit(record.Amount, domain.BucketPending); err != nil {
		return false, err
	}
	balance.UpdatedAt = record.CreatedAt

	s.commissionKeys[key] = record.ID
	s.commissions[record.ID] = *record
	s.commissionOrder = append(s.commissionOrder, record.ID)
	s.balances[balance.UserID] = *balance
	s.history = append(s.history, *entry)
	return true, nil
}

func (r *CommissionRepository) GetCommission(ctx context.Context, commissionID string) (*domain.CommissionRecord, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.commissions[commissionID]
	if !ok {
		return nil, domain.ErrCommissionNotFound
	}
	return &c, nil
}

func (r *CommissionRepository) ApproveCommission(ctx context.Context, commissionID string, approvedAt time.Time) (*domain.ApprovalResult, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.commissions[commissionID]
	if !ok {
		return nil, domain.ErrCommissionNotFound
	}
	if c.Status != domain.CommissionPending {
		return nil, domain.ErrCommissionNotPending
	}

	balance := s.balanceLocked(c.BeneficiaryID)
	shortfall := balance.Approve(c.Amount)
	balance.UpdatedAt = approvedAt

	c.Status = domain.CommissionApproved
	c.ApprovedAt = &approvedAt
	s.commissions[commissionID] = c
	s.balances[balance.UserID] = *balance
	for i := range s.history {
		h := &s.history[i]
		if h.CommissionID == commissionID && h.Type == domain.TransactionMLMCommission {
			h.Status = domain.TransactionCompleted
		}
	}

	return &domain.ApprovalResult{Commission: &c, Balance: balance, Shortfall: shortfall}, nil
}

func (r *CommissionRepository) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]*domain.CommissionRecord, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.CommissionRecord
	for i := len(s.commissionOrder) - 1; i >= 0; i-- {
		c := s.commissions[s.commissionOrder[i]]
		if filter.BeneficiaryID != "" && c.BeneficiaryID != filter.BeneficiaryID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		matched = append(matched, &c)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	from, to := paginate(len(matched), filter.Limit, filter.Offset)
	return matched[from:to], int64(len(matched)), nil
}

func (r *CommissionRepository) SummarizeByLevel(ctx context.Context, beneficiaryID string) ([]domain.LevelEarnings, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLevel := make(map[int]*domain.LevelEarnings)
	for _, c := range s.commissions {
		if c.BeneficiaryID != beneficiaryID {
			continue
		}
		e, ok := byLevel[c.Level]
		if !ok {
			e = &domain.LevelEarnings{Level: c.Level, Total: decimal.Zero, Pending: decimal.Zero, Approved: decimal.Zero}
			byLevel[c.Level] = e
		}
		e.Count++
		e.Total = e.Total.Add(c.Amount)
		switch c.Status {
		case domain.CommissionPending:
			e.Pending = e.Pending.Add(c.Amount)
		case domain.CommissionApproved:
			e.Approved = e.Approved.Add(c.Amount)
		}
	}

	out := make([]domain.LevelEarnings, 0, len(byLevel))
	for _, e := range byLevel {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}
