package domain

import (
	"context"
	"time"
)

// MaxLevels is the depth of the referral hierarchy that earns commissions
// and is counted in team statistics.
const MaxLevels = 9

// SponsorLink attaches a user to the affiliate who referred them.
// Created once, never updated or deleted.
type SponsorLink struct {
	UserID    string
	SponsorID string
	CreatedAt time.Time
}

type UplineEntry struct {
	Level      int
	AncestorID string
}

type DownlineMember struct {
	MemberID  string
	Level     int
	SponsorID string
	CreatedAt time.Time
}

// ClampLevels maps a requested depth into 1..MaxLevels; anything out of range means full depth.
func ClampLevels(maxLevels int) int {
	if maxLevels <= 0 || maxLevels > MaxLevels {
		return MaxLevels
	}
	return maxLevels
}

type HierarchyRepository interface {
	// CreateSponsorLink returns ErrSponsorAlreadySet when the user already has a link.
	CreateSponsorLink(ctx context.Context, link *SponsorLink) error
	// GetSponsorLink returns ErrSponsorNotFound when the user has no sponsor.
	GetSponsorLink(ctx context.Context, userID string) (*SponsorLink, error)
	// GetDirectDownline lists links sponsored by sponsorID, newest first.
	GetDirectDownline(ctx context.Context, sponsorID string) ([]*SponsorLink, error)
	// GetDownlineOf lists links sponsored by any of sponsorIDs, newest first.
	GetDownlineOf(ctx context.Context, sponsorIDs []string) ([]*SponsorLink, error)
}
