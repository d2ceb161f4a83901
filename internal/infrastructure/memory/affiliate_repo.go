package memory

import (
	"context"
	"sort"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type AffiliateRepository struct {
	store *Store
}

func NewAffiliateRepository(store *Store) *AffiliateRepository {
	return &AffiliateRepository{store: store}
}

func (r *AffiliateRepository) CreateAffiliate(ctx context.Context, profile *domain.AffiliateProfile) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.affiliates[profile.UserID]; exists {
		return domain.ErrAffiliateExists
	}
	if _, taken := s.codes[profile.ReferralCode]; taken {
		return domain.ErrAffiliateExists
	}
	s.affiliates[profile.UserID] = *profile
	s.codes[profile.ReferralCode] = profile.UserID
	return nil
}

func (r *AffiliateRepository) GetAffiliate(ctx context.Context, userID string) (*domain.AffiliateProfile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.affiliates[userID]
	if !ok {
		return nil, domain.ErrAffiliateNotFound
	}
	return &p, nil
}

func (r *AffiliateRepository) GetAffiliateByCode(ctx context.Context, referralCode string) (*domain.AffiliateProfile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.codes[referralCode]
	if !ok {
		return nil, domain.ErrAffiliateNotFound
	}
	p := s.affiliates[userID]
	return &p, nil
}

func (r *AffiliateRepository) ListAffiliates(ctx context.Context, districts []string) ([]*domain.AffiliateProfile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[string]bool
	if districts != nil {
		allowed = make(map[string]bool, len(districts))
		for _, d := range districts {
			allowed[d] = true
		}
	}

	out := make([]*domain.AffiliateProfile, 0, len(s.affiliates))
	for _, p := range s.affiliates {
		if allowed != nil && !allowed[p.District] {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *AffiliateRepository) GetAffiliates(ctx context.Context, userIDs []string) (map[string]*domain.AffiliateProfile, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.AffiliateProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.affiliates[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}
