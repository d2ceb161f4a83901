package relationsdto

// SetSponsorInput attaches UserID to a sponsor given either directly or by referral code.
type SetSponsorInput struct {
	UserID       string
	SponsorID    string
	ReferralCode string
}
