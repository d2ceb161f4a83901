package teamdto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type TeamMembersInput struct {
	UserID string
	// Level restricts the result to one hierarchy level; 0 means all levels.
	Level  int
	Period domain.DateRange
	Limit  int
	Offset int
}

type LeaderboardInput struct {
	Filter  domain.LeaderboardFilter
	OrderBy string
	Order   string
	Limit   int
	Offset  int
}
