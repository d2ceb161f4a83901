package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	commissiondto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/commission"
	ledgerdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/ledger"
)

// flakyCommissionRepository fails the first insert at failLevel.
type flakyCommissionRepository struct {
	domain.CommissionRepository
	failLevel int
	failed    bool
}

func (r *flakyCommissionRepository) CreateCommissionWithCredit(ctx context.Context, record *domain.CommissionRecord, entry *domain.TransactionHistoryEntry) (bool, error) {
	if record.Level == r.failLevel && !r.failed {
		r.failed = true
		return false, errors.New("connection reset by peer")
	}
	return r.CommissionRepository.CreateCommissionWithCredit(ctx, record, entry)
}

// deepChain builds u00 <- u01 <- ... <- u(n-1) and returns the ids, root first.
func deepChain(t *testing.T, f *fixture, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%02d", i)
	}
	f.chain(t, ids...)
	return ids
}

func conversion(id, source, amount string) *commissiondto.ProcessConversionInput {
	return &commissiondto.ProcessConversionInput{
		ConversionID: id,
		OrderID:      "order-" + id,
		SourceUserID: source,
		OrderAmount:  dec(amount),
	}
}

func TestProcessConversion(t *testing.T) {
	ctx := context.Background()

	t.Run("pays nine levels with default rates", func(t *testing.T) {
		f := newFixture(t)
		ids := deepChain(t, f, 11)
		source := ids[10]

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", source, "1000"))
		require.NoError(t, err)
		require.Len(t, records, 9)

		want := []string{"300", "100", "50", "40", "30", "20", "10", "10", "10"}
		for i, rec := range records {
			beneficiary := ids[9-i]
			assert.Equal(t, i+1, rec.Level)
			assert.Equal(t, beneficiary, rec.BeneficiaryID)
			assert.Equal(t, source, rec.SourceUserID)
			assert.Equal(t, domain.CommissionPending, rec.Status)
			assert.True(t, dec(want[i]).Equal(rec.Amount), "level %d amount %s", rec.Level, rec.Amount)

			balance, err := f.ledger.GetBalance(ctx, beneficiary)
			require.NoError(t, err)
			assert.True(t, rec.Amount.Equal(balance.Pending))
			assert.True(t, balance.Available.IsZero())

			history, err := f.ledger.GetHistory(ctx, &ledgerdto.GetHistoryInput{UserID: beneficiary})
			require.NoError(t, err)
			require.Len(t, history.Entries, 1)
			entry := history.Entries[0]
			assert.Equal(t, domain.TransactionMLMCommission, entry.Type)
			assert.Equal(t, domain.TransactionPending, entry.Status)
			assert.Equal(t, rec.ID, entry.CommissionID)
			require.NotNil(t, entry.Level)
			assert.Equal(t, i+1, *entry.Level)
		}

		// the root is ten levels up and earns nothing
		rootBalance, err := f.ledger.GetBalance(ctx, ids[0])
		require.NoError(t, err)
		assert.True(t, rootBalance.Pending.IsZero())

		assert.Len(t, f.sink.ofType(domain.EventCommissionAdded), 9)
	})

	t.Run("replay is a no-op", func(t *testing.T) {
		f := newFixture(t)
		ids := deepChain(t, f, 4)

		first, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", ids[3], "200"))
		require.NoError(t, err)
		require.Len(t, first, 3)

		again, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", ids[3], "200"))
		require.NoError(t, err)
		assert.Empty(t, again)

		balance, err := f.ledger.GetBalance(ctx, ids[2])
		require.NoError(t, err)
		assert.True(t, dec("60").Equal(balance.Pending))
		assert.Len(t, f.sink.ofType(domain.EventCommissionAdded), 3)
	})

	t.Run("stops when the upline is exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.chain(t, "a", "b", "c")

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-abc", "c", "200"))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "b", records[0].BeneficiaryID)
		assert.Equal(t, "60.00", records[0].Amount.StringFixed(2))
		assert.Equal(t, "a", records[1].BeneficiaryID)
		assert.Equal(t, "20.00", records[1].Amount.StringFixed(2))
	})

	t.Run("concurrent duplicates credit once", func(t *testing.T) {
		f := newFixture(t)
		ids := deepChain(t, f, 10)

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				records, err := f.commissions.ProcessConversion(ctx, conversion("conv-dup", ids[9], "100"))
				assert.NoError(t, err)
				mu.Lock()
				total += len(records)
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 9, total)
		balance, err := f.ledger.GetBalance(ctx, ids[8])
		require.NoError(t, err)
		assert.True(t, dec("30").Equal(balance.Pending))
	})

	t.Run("no upline", func(t *testing.T) {
		f := newFixture(t, "loner")

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", "loner", "500"))
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("zero rate levels are skipped", func(t *testing.T) {
		f := newFixture(t)
		ids := deepChain(t, f, 4)
		rates, err := domain.NewRateTable(map[int]decimal.Decimal{1: dec("10"), 3: dec("2.5")})
		require.NoError(t, err)
		f.commissions.rates = rates

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", ids[3], "80"))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 1, records[0].Level)
		assert.True(t, dec("8").Equal(records[0].Amount))
		assert.Equal(t, 3, records[1].Level)
		assert.True(t, dec("2").Equal(records[1].Amount))
	})

	t.Run("amount is rounded to cents", func(t *testing.T) {
		f := newFixture(t)
		f.sponsor(t, "buyer", "sponsor")

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", "buyer", "33.33"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "10.00", records[0].Amount.StringFixed(2))
		assert.True(t, dec("10").Equal(records[0].Amount))
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)

		for name, in := range map[string]*commissiondto.ProcessConversionInput{
			"missing conversion": {SourceUserID: "u", OrderAmount: dec("1")},
			"missing source":     {ConversionID: "c", OrderAmount: dec("1")},
			"zero amount":        {ConversionID: "c", SourceUserID: "u", OrderAmount: decimal.Zero},
			"negative amount":    {ConversionID: "c", SourceUserID: "u", OrderAmount: dec("-5")},
		} {
			_, err := f.commissions.ProcessConversion(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument, name)
		}
	})

	t.Run("retry after a failed level resumes", func(t *testing.T) {
		f := newFixture(t)
		ids := deepChain(t, f, 5)
		flaky := &flakyCommissionRepository{CommissionRepository: f.commissionRepo, failLevel: 3}
		f.commissions = NewDefaultCommissionUsecase(f.hierarchy, flaky, domain.DefaultRateTable(), f.sink, nil, zap.NewNop())

		_, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", ids[4], "100"))
		require.Error(t, err)

		// levels 1 and 2 are committed, 3 and 4 are not
		lvl2, err := f.ledger.GetBalance(ctx, ids[2])
		require.NoError(t, err)
		assert.True(t, dec("10").Equal(lvl2.Pending))
		lvl3, err := f.ledger.GetBalance(ctx, ids[1])
		require.NoError(t, err)
		assert.True(t, lvl3.Pending.IsZero())

		records, err := f.commissions.ProcessConversion(ctx, conversion("conv-1", ids[4], "100"))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 3, records[0].Level)
		assert.Equal(t, 4, records[1].Level)

		for i, want := range []string{"4", "5", "10", "30"} {
			balance, err := f.ledger.GetBalance(ctx, ids[i])
			require.NoError(t, err)
			assert.True(t, dec(want).Equal(balance.Pending), "user %s pending %s", ids[i], balance.Pending)
		}
	})
}

func TestListCommissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sponsor(t, "buyer", "sponsor")
	for i := 0; i < 3; i++ {
		_, err := f.commissions.ProcessConversion(ctx, conversion(fmt.Sprintf("conv-%d", i), "buyer", "10"))
		require.NoError(t, err)
	}

	out, err := f.commissions.ListCommissions(ctx, &commissiondto.ListCommissionsInput{BeneficiaryID: "sponsor", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Total)
	require.Len(t, out.Commissions, 2)
	assert.Equal(t, "conv-2", out.Commissions[0].ConversionID)

	_, err = f.ledger.ApproveCommission(ctx, out.Commissions[0].ID)
	require.NoError(t, err)

	approved, err := f.commissions.ListCommissions(ctx, &commissiondto.ListCommissionsInput{BeneficiaryID: "sponsor", Status: "approved"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, approved.Total)

	_, err = f.commissions.ListCommissions(ctx, &commissiondto.ListCommissionsInput{BeneficiaryID: "sponsor", Status: "paid"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.commissions.ListCommissions(ctx, &commissiondto.ListCommissionsInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
