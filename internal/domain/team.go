package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is inclusive on both ends. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Normalize moves Start to 00:00:00 and End to 23:59:59 of their days in loc.
func (r DateRange) Normalize(loc *time.Location) DateRange {
	if loc == nil {
		loc = time.Local
	}
	var out DateRange
	if r.Start != nil {
		s := r.Start.In(loc)
		start := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
		out.Start = &start
	}
	if r.End != nil {
		e := r.End.In(loc)
		end := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, loc)
		out.End = &end
	}
	return out
}

func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

func (r DateRange) Validate() error {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidArgument)
	}
	return nil
}

type TeamStats struct {
	UserID           string
	TotalTeamMembers int
	DirectReferrals  int
	TeamByLevel      map[int]int
	EarningsByLevel  map[int]LevelEarnings
}

type LeaderboardOrderBy string

const (
	OrderByTeamSize           LeaderboardOrderBy = "team_size"
	OrderByTeamPurchasedValue LeaderboardOrderBy = "team_purchased_value"
)

func ParseLeaderboardOrderBy(s string) (LeaderboardOrderBy, error) {
	switch LeaderboardOrderBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderByTeamSize:
		return OrderByTeamSize, nil
	case OrderByTeamPurchasedValue:
		return OrderByTeamPurchasedValue, nil
	}
	return "", fmt.Errorf("%w: order_by %q", ErrInvalidArgument, s)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	}
	return "", fmt.Errorf("%w: order %q", ErrInvalidArgument, s)
}

type LeaderboardFilter struct {
	Division string
	District string
	Period   DateRange
}

type LeaderboardEntry struct {
	Position           int
	UserID             string
	DisplayName        string
	District           string
	TeamSize           int
	TeamPurchasedValue decimal.Decimal
}
