package handlers

import (
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

func toAffiliateResponse(p *domain.AffiliateProfile) response.AffiliateResponse {
	return response.AffiliateResponse{
		UserID:       p.UserID,
		ReferralCode: p.ReferralCode,
		District:     p.District,
		CreatedAt:    p.CreatedAt,
	}
}

func toDownlineMembers(members []domain.DownlineMember) []response.DownlineMember {
	out := make([]response.DownlineMember, len(members))
	for i, m := range members {
		out[i] = response.DownlineMember{
			MemberID:  m.MemberID,
			Level:     m.Level,
			SponsorID: m.SponsorID,
			JoinedAt:  m.CreatedAt,
		}
	}
	return out
}

func toCommission(c *domain.CommissionRecord) response.Commission {
	return response.Commission{
		ID:            c.ID,
		ConversionID:  c.ConversionID,
		OrderID:       c.OrderID,
		BeneficiaryID: c.BeneficiaryID,
		SourceUserID:  c.SourceUserID,
		Level:         c.Level,
		RatePercent:   c.RatePercent.String(),
		Amount:        c.Amount.StringFixed(2),
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		ApprovedAt:    c.ApprovedAt,
	}
}

func toCommissions(records []*domain.CommissionRecord) []response.Commission {
	out := make([]response.Commission, len(records))
	for i, c := range records {
		out[i] = toCommission(c)
	}
	return out
}

func toBalanceResponse(b *domain.Balance) response.BalanceResponse {
	return response.BalanceResponse{
		UserID:    b.UserID,
		Available: b.Available.StringFixed(2),
		Pending:   b.Pending.StringFixed(2),
		UpdatedAt: b.UpdatedAt,
	}
}

func toHistoryEntries(entries []*domain.TransactionHistoryEntry) []response.HistoryEntry {
	out := make([]response.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = response.HistoryEntry{
			ID:            e.ID,
			Type:          string(e.Type),
			Amount:        e.Amount.StringFixed(2),
			Status:        string(e.Status),
			Description:   e.Description,
			RelatedUserID: e.RelatedUserID,
			Level:         e.Level,
			CommissionID:  e.CommissionID,
			CreatedAt:     e.CreatedAt,
		}
	}
	return out
}

func toTeamStatsResponse(s *domain.TeamStats) response.TeamStatsResponse {
	earnings := make(map[int]response.LevelEarnings, len(s.EarningsByLevel))
	for level, e := range s.EarningsByLevel {
		earnings[level] = response.LevelEarnings{
			Count:    e.Count,
			Total:    e.Total.StringFixed(2),
			Pending:  e.Pending.StringFixed(2),
			Approved: e.Approved.StringFixed(2),
		}
	}
	return response.TeamStatsResponse{
		UserID:             s.UserID,
		TotalTeamMembers:   s.TotalTeamMembers,
		DirectReferrals:    s.DirectReferrals,
		TeamByLevel:        s.TeamByLevel,
		MLMEarningsSummary: earnings,
	}
}

func toLeaderboardEntries(entries []domain.LeaderboardEntry) []response.LeaderboardEntry {
	out := make([]response.LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = response.LeaderboardEntry{
			Position:           e.Position,
			UserID:             e.UserID,
			DisplayName:        e.DisplayName,
			District:           e.District,
			TeamSize:           e.TeamSize,
			TeamPurchasedValue: e.TeamPurchasedValue.StringFixed(2),
		}
	}
	return out
}
