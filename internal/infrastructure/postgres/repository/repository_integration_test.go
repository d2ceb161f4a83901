//go:build integration

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/testutil/containers"
)

type RepositorySuite struct {
	suite.Suite
	pg *containers.PostgresContainer

	hierarchy   *DefaultHierarchyRepository
	affiliates  *DefaultAffiliateRepository
	commissions *DefaultCommissionRepository
	ledger      *DefaultLedgerRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.hierarchy = NewDefaultHierarchyRepository(s.pg.DB)
	s.affiliates = NewDefaultAffiliateRepository(s.pg.DB)
	s.commissions = NewDefaultCommissionRepository(s.pg.DB)
	s.ledger = NewDefaultLedgerRepository(s.pg.DB)
}

func (s *RepositorySuite) TearDownSuite() {
	_ = s.pg.Terminate(context.Background())
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func (s *RepositorySuite) link(userID, sponsorID string, at time.Time) {
	s.Require().NoError(s.hierarchy.CreateSponsorLink(context.Background(), &domain.SponsorLink{
		UserID: userID, SponsorID: sponsorID, CreatedAt: at,
	}))
}

func newCommission(conversionID, beneficiaryID string, level int, amount string) (*domain.CommissionRecord, *domain.TransactionHistoryEntry) {
	rec := &domain.CommissionRecord{
		ID:            uuid.NewString(),
		ConversionID:  conversionID,
		OrderID:       "order-" + conversionID,
		BeneficiaryID: beneficiaryID,
		SourceUserID:  "buyer",
		Level:         level,
		RatePercent:   decimal.NewFromInt(30),
		Amount:        decimal.RequireFromString(amount),
		Status:        domain.CommissionPending,
		CreatedAt:     base,
	}
	entry := &domain.TransactionHistoryEntry{
		ID:            ulid.Make().String(),
		UserID:        beneficiaryID,
		Type:          domain.TransactionMLMCommission,
		Amount:        rec.Amount,
		Status:        domain.TransactionPending,
		RelatedUserID: "buyer",
		Level:         &level,
		CommissionID:  rec.ID,
		CreatedAt:     base,
	}
	return rec, entry
}

func (s *RepositorySuite) TestSponsorLinkFirstWriteWins() {
	ctx := context.Background()
	s.link("bob", "alice", base)

	err := s.hierarchy.CreateSponsorLink(ctx, &domain.SponsorLink{UserID: "bob", SponsorID: "carol", CreatedAt: base})
	s.ErrorIs(err, domain.ErrSponsorAlreadySet)

	link, err := s.hierarchy.GetSponsorLink(ctx, "bob")
	s.Require().NoError(err)
	s.Equal("alice", link.SponsorID)

	_, err = s.hierarchy.GetSponsorLink(ctx, "alice")
	s.ErrorIs(err, domain.ErrSponsorNotFound)
}

func (s *RepositorySuite) TestSponsorLinkConcurrentInsert() {
	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.hierarchy.CreateSponsorLink(ctx, &domain.SponsorLink{
				UserID: "newbie", SponsorID: fmt.Sprintf("sponsor-%d", i), CreatedAt: base,
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	s.Equal(1, success)
}

func (s *RepositorySuite) TestDownlineOrdering() {
	ctx := context.Background()
	s.link("a", "root", base)
	s.link("b", "root", base.Add(time.Minute))
	s.link("c", "a", base.Add(2*time.Minute))

	direct, err := s.hierarchy.GetDirectDownline(ctx, "root")
	s.Require().NoError(err)
	s.Require().Len(direct, 2)
	s.Equal("b", direct[0].UserID)
	s.Equal("a", direct[1].UserID)

	next, err := s.hierarchy.GetDownlineOf(ctx, []string{"a", "b"})
	s.Require().NoError(err)
	s.Require().Len(next, 1)
	s.Equal("c", next[0].UserID)
}

func (s *RepositorySuite) TestAffiliates() {
	ctx := context.Background()
	profiles := []*domain.AffiliateProfile{
		{UserID: "u2", ReferralCode: "CODE2", District: "Gazipur", CreatedAt: base},
		{UserID: "u1", ReferralCode: "CODE1", District: "Dhaka", CreatedAt: base},
		{UserID: "u3", ReferralCode: "CODE3", District: "Sylhet", CreatedAt: base.Add(-time.Hour)},
	}
	for _, p := range profiles {
		s.Require().NoError(s.affiliates.CreateAffiliate(ctx, p))
	}

	err := s.affiliates.CreateAffiliate(ctx, &domain.AffiliateProfile{UserID: "u1", ReferralCode: "OTHER", CreatedAt: base})
	s.ErrorIs(err, domain.ErrAffiliateExists)
	err = s.affiliates.CreateAffiliate(ctx, &domain.AffiliateProfile{UserID: "u9", ReferralCode: "CODE1", CreatedAt: base})
	s.ErrorIs(err, domain.ErrAffiliateExists)

	byCode, err := s.affiliates.GetAffiliateByCode(ctx, "CODE2")
	s.Require().NoError(err)
	s.Equal("u2", byCode.UserID)

	all, err := s.affiliates.ListAffiliates(ctx, nil)
	s.Require().NoError(err)
	s.Equal([]string{"u3", "u1", "u2"}, profileIDs(all))

	dhaka, err := s.affiliates.ListAffiliates(ctx, []string{"Dhaka", "Gazipur"})
	s.Require().NoError(err)
	s.Equal([]string{"u1", "u2"}, profileIDs(dhaka))

	got, err := s.affiliates.GetAffiliates(ctx, []string{"u1", "missing"})
	s.Require().NoError(err)
	s.Len(got, 1)
	s.Equal("Dhaka", got["u1"].District)
}

func profileIDs(profiles []*domain.AffiliateProfile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}
	return ids
}

func (s *RepositorySuite) TestCommissionIdempotence() {
	ctx := context.Background()

	rec, entry := newCommission("conv-1", "alice", 1, "30")
	inserted, err := s.commissions.CreateCommissionWithCredit(ctx, rec, entry)
	s.Require().NoError(err)
	s.True(inserted)

	dup, dupEntry := newCommission("conv-1", "alice", 1, "30")
	inserted, err = s.commissions.CreateCommissionWithCredit(ctx, dup, dupEntry)
	s.Require().NoError(err)
	s.False(inserted)

	balance, err := s.ledger.GetBalance(ctx, "alice")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("30").Equal(balance.Pending))

	history, total, err := s.ledger.ListHistory(ctx, domain.HistoryFilter{UserID: "alice"})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Len(history, 1)
}

func (s *RepositorySuite) TestCommissionConcurrentDuplicates() {
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, entry := newCommission("conv-race", "alice", 1, "12.5")
			_, err := s.commissions.CreateCommissionWithCredit(ctx, rec, entry)
			s.NoError(err)
		}()
	}
	wg.Wait()

	balance, err := s.ledger.GetBalance(ctx, "alice")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("12.5").Equal(balance.Pending), "pending %s", balance.Pending)
}

func (s *RepositorySuite) TestApproveCommission() {
	ctx := context.Background()
	rec, entry := newCommission("conv-1", "alice", 1, "30")
	_, err := s.commissions.CreateCommissionWithCredit(ctx, rec, entry)
	s.Require().NoError(err)

	result, err := s.commissions.ApproveCommission(ctx, rec.ID, base.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(domain.CommissionApproved, result.Commission.Status)
	s.True(result.Balance.Pending.IsZero())
	s.True(decimal.RequireFromString("30").Equal(result.Balance.Available))
	s.True(result.Shortfall.IsZero())

	history, _, err := s.ledger.ListHistory(ctx, domain.HistoryFilter{UserID: "alice"})
	s.Require().NoError(err)
	s.Equal(domain.TransactionCompleted, history[0].Status)

	_, err = s.commissions.ApproveCommission(ctx, rec.ID, base.Add(2*time.Hour))
	s.ErrorIs(err, domain.ErrCommissionNotPending)

	_, err = s.commissions.ApproveCommission(ctx, uuid.NewString(), base)
	s.ErrorIs(err, domain.ErrCommissionNotFound)
}

func (s *RepositorySuite) TestApproveCommissionConcurrent() {
	ctx := context.Background()
	rec, entry := newCommission("conv-approve-race", "alice", 1, "300")
	_, err := s.commissions.CreateCommissionWithCredit(ctx, rec, entry)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.commissions.ApproveCommission(ctx, rec.ID, base.Add(time.Hour))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, domain.ErrCommissionNotPending)
	}
	s.Equal(1, succeeded)

	balance, err := s.ledger.GetBalance(ctx, "alice")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("300").Equal(balance.Available), "available %s", balance.Available)
	s.True(balance.Pending.IsZero(), "pending %s", balance.Pending)
}

func (s *RepositorySuite) TestSummaryAndListing() {
	ctx := context.Background()
	for i, lvl := range []int{1, 1, 2} {
		rec, entry := newCommission(fmt.Sprintf("conv-%d", i), "alice", lvl, "10")
		_, err := s.commissions.CreateCommissionWithCredit(ctx, rec, entry)
		s.Require().NoError(err)
		if i == 0 {
			_, err = s.commissions.ApproveCommission(ctx, rec.ID, base)
			s.Require().NoError(err)
		}
	}

	summary, err := s.commissions.SummarizeByLevel(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(summary, 2)
	s.Equal(1, summary[0].Level)
	s.EqualValues(2, summary[0].Count)
	s.True(decimal.RequireFromString("20").Equal(summary[0].Total))
	s.True(decimal.RequireFromString("10").Equal(summary[0].Approved))
	s.True(decimal.RequireFromString("10").Equal(summary[0].Pending))

	records, total, err := s.commissions.ListCommissions(ctx, domain.CommissionFilter{BeneficiaryID: "alice", Status: domain.CommissionPending, Limit: 1})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(records, 1)
}

func (s *RepositorySuite) TestCreditRejectsNegativeResult() {
	ctx := context.Background()
	entry := &domain.TransactionHistoryEntry{
		ID: ulid.Make().String(), UserID: "alice", Type: domain.TransactionCredit,
		Amount: decimal.NewFromInt(-5), Status: domain.TransactionCompleted, CreatedAt: base,
	}

	_, err := s.ledger.Credit(ctx, "alice", decimal.NewFromInt(-5), domain.BucketAvailable, entry)
	s.ErrorIs(err, domain.ErrNegativeBalance)

	_, total, err := s.ledger.ListHistory(ctx, domain.HistoryFilter{UserID: "alice"})
	s.Require().NoError(err)
	s.Zero(total)
}
