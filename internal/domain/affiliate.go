package domain

import (
	"context"
	"time"
)

// AffiliateProfile is the referral program's annotation of an external identity.
type AffiliateProfile struct {
	UserID       string
	ReferralCode string
	District     string
	CreatedAt    time.Time
}

type AffiliateRepository interface {
	// CreateAffiliate returns ErrAffiliateExists if the user already has a profile.
	CreateAffiliate(ctx context.Context, profile *AffiliateProfile) error
	GetAffiliate(ctx context.Context, userID string) (*AffiliateProfile, error)
	GetAffiliateByCode(ctx context.Context, referralCode string) (*AffiliateProfile, error)
	// ListAffiliates returns profiles in registration order (created_at, user_id).
	// A nil districts slice means no district filter.
	ListAffiliates(ctx context.Context, districts []string) ([]*AffiliateProfile, error)
	GetAffiliates(ctx context.Context, userIDs []string) (map[string]*AffiliateProfile, error)
}
