package memory

import (
	"context"
	"sort"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type HierarchyRepository struct {
	store *Store
}

func NewHierarchyRepository(store *Store) *HierarchyRepository {
	return &HierarchyRepository{store: store}
}

func (r *HierarchyRepository) CreateSponsorLink(ctx context.Context, link *domain.SponsorLink) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.UserID]; exists {
		return domain.ErrSponsorAlreadySet
	}
	s.links[link.UserID] = *link
	s.bySponsor[link.SponsorID] = append(s.bySponsor[link.SponsorID], link.UserID)
	return nil
}

func (r *HierarchyRepository) GetSponsorLink(ctx context.Context, userID string) (*domain.SponsorLink, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[userID]
	if !ok {
		return nil, domain.ErrSponsorNotFound
	}
	return &link, nil
}

func (r *HierarchyRepository) GetDirectDownline(ctx context.Context, sponsorID string) ([]*domain.SponsorLink, error) {
	return r.GetDownlineOf(ctx, []string{sponsorID})
}

func (r *HierarchyRepository) GetDownlineOf(ctx context.Context, sponsorIDs []string) ([]*domain.SponsorLink, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.SponsorLink
	for _, sponsorID := range sponsorIDs {
		for _, userID := range s.bySponsor[sponsorID] {
			link := s.links[userID]
			out = append(out, &link)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// sortNewestFirst orders by created_at desc, user_id asc, the same as the SQL query.
func sortNewestFirst(links []*domain.SponsorLink) {
	sort.SliceStable(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		}
		return links[i].UserID < links[j].UserID
	})
}
