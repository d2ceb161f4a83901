package teamdto

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type TeamMember struct {
	MemberID    string
	Level       int
	SponsorID   string
	JoinedAt    time.Time
	DisplayName string
	Email       string
	District    string
}

type TeamMembersOutput struct {
	Members []TeamMember
	Total   int
}

type LeaderboardOutput struct {
	Entries []domain.LeaderboardEntry
	Total   int
}
