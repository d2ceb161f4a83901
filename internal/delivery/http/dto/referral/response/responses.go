package response

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type AffiliateResponse struct {
	UserID       string    `json:"user_id"`
	ReferralCode string    `json:"referral_code"`
	District     string    `json:"district,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type SponsorLinkResponse struct {
	UserID    string    `json:"user_id"`
	SponsorID string    `json:"sponsor_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SponsorResponse struct {
	UserID    string `json:"user_id"`
	SponsorID string `json:"sponsor_id"`
}

type UplineEntry struct {
	Level      int    `json:"level"`
	AncestorID string `json:"ancestor_id"`
}

type UplineResponse struct {
	UserID string        `json:"user_id"`
	Upline []UplineEntry `json:"upline"`
}

type DownlineMember struct {
	MemberID  string    `json:"member_id"`
	Level     int       `json:"level"`
	SponsorID string    `json:"sponsor_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

type DownlineResponse struct {
	UserID  string           `json:"user_id"`
	Members []DownlineMember `json:"members"`
	Total   int              `json:"total"`
}

// Commission amounts are decimal strings with two places.
type Commission struct {
	ID            string     `json:"id"`
	ConversionID  string     `json:"conversion_id"`
	OrderID       string     `json:"order_id,omitempty"`
	BeneficiaryID string     `json:"beneficiary_id"`
	SourceUserID  string     `json:"source_user_id"`
	Level         int        `json:"level"`
	RatePercent   string     `json:"rate_percent"`
	Amount        string     `json:"amount"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
}

type ConversionResponse struct {
	ConversionID string       `json:"conversion_id"`
	Commissions  []Commission `json:"commissions"`
}

type CommissionsResponse struct {
	Commissions []Commission `json:"commissions"`
	Total       int64        `json:"total"`
}

type BalanceResponse struct {
	UserID    string    `json:"user_id"`
	Available string    `json:"available"`
	Pending   string    `json:"pending"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type ApproveResponse struct {
	Commission Commission      `json:"commission"`
	Balance    BalanceResponse `json:"balance"`
	Shortfall  string          `json:"shortfall"`
}

type HistoryEntry struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	Description   string    `json:"description,omitempty"`
	RelatedUserID string    `json:"related_user_id,omitempty"`
	Level         *int      `json:"level,omitempty"`
	CommissionID  string    `json:"commission_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int64          `json:"total"`
}

type LevelEarnings struct {
	Count    int64  `json:"count"`
	Total    string `json:"total"`
	Pending  string `json:"pending"`
	Approved string `json:"approved"`
}

type TeamStatsResponse struct {
	UserID             string                `json:"user_id"`
	TotalTeamMembers   int                   `json:"total_team_members"`
	DirectReferrals    int                   `json:"direct_referrals"`
	TeamByLevel        map[int]int           `json:"team_by_level"`
	MLMEarningsSummary map[int]LevelEarnings `json:"mlm_earnings_summary"`
}

type TeamMember struct {
	MemberID    string    `json:"member_id"`
	Level       int       `json:"level"`
	SponsorID   string    `json:"sponsor_id"`
	JoinedAt    time.Time `json:"joined_at"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	District    string    `json:"district"`
}

type TeamMembersResponse struct {
	Members []TeamMember `json:"members"`
	Total   int          `json:"total"`
}

type LeaderboardEntry struct {
	Position           int    `json:"position"`
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name"`
	District           string `json:"district"`
	TeamSize           int    `json:"team_size"`
	TeamPurchasedValue string `json:"team_purchased_value"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	Total   int                `json:"total"`
}

type DivisionsResponse struct {
	Divisions []string `json:"divisions"`
}

type DistrictsResponse struct {
	Division  string   `json:"division"`
	Districts []string `json:"districts"`
}

type DistrictDivisionResponse struct {
	District string `json:"district"`
	Division string `json:"division"`
}
