package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "pending"
	CommissionApproved CommissionStatus = "approved"
)

type CommissionRecord struct {
	ID            string
	ConversionID  string
	OrderID       string
	BeneficiaryID string
	SourceUserID  string
	Level         int
	RatePercent   decimal.Decimal
	Amount        decimal.Decimal
	Status        CommissionStatus
	CreatedAt     time.Time
	ApprovedAt    *time.Time
}

var hundred = decimal.NewFromInt(100)

// RateTable holds the commission percent per hierarchy level (1..MaxLevels).
type RateTable struct {
	rates [MaxLevels + 1]decimal.Decimal
}

var defaultRates = map[int]int64{1: 30, 2: 10, 3: 5, 4: 4, 5: 3, 6: 2, 7: 1, 8: 1, 9: 1}

func DefaultRateTable() RateTable {
	var t RateTable
	for level, rate := range defaultRates {
		t.rates[level] = decimal.NewFromInt(rate)
	}
	return t
}

// NewRateTable builds a table from configured rates. Levels absent from the map earn nothing.
// An empty map yields the default table.
func NewRateTable(rates map[int]decimal.Decimal) (RateTable, error) {
	if len(rates) == 0 {
		return DefaultRateTable(), nil
	}
	var t RateTable
	for level, rate := range rates {
		if level < 1 || level > MaxLevels {
			return RateTable{}, fmt.Errorf("%w: level %d outside 1..%d", ErrInvalidArgument, level, MaxLevels)
		}
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			return RateTable{}, fmt.Errorf("%w: rate %s for level %d outside 0..100", ErrInvalidArgument, rate, level)
		}
		t.rates[level] = rate
	}
	return t, nil
}

func (t RateTable) Rate(level int) decimal.Decimal {
	if level < 1 || level > MaxLevels {
		return decimal.Zero
	}
	return t.rates[level]
}

func (t RateTable) Rates() map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal, MaxLevels)
	for level := 1; level <= MaxLevels; level++ {
		out[level] = t.rates[level]
	}
	return out
}

// CommissionAmount is orderAmount * ratePercent / 100 rounded to cents.
func CommissionAmount(orderAmount, ratePercent decimal.Decimal) decimal.Decimal {
	return orderAmount.Mul(ratePercent).Div(hundred).Round(2)
}

type CommissionFilter struct {
	BeneficiaryID string
	Status        CommissionStatus
	Limit         int
	Offset        int
}

type LevelEarnings struct {
	Level    int
	Count    int64
	Total    decimal.Decimal
	Pending  decimal.Decimal
	Approved decimal.Decimal
}

type ApprovalResult struct {
	Commission *CommissionRecord
	Balance    *Balance
	// Shortfall is the part of the commission amount that was missing from the
	// pending balance when it was moved to available.
	Shortfall decimal.Decimal
}

type CommissionRepository interface {
	// CreateCommissionWithCredit inserts the record, adds its amount to the beneficiary's
	// pending balance and appends the history entry in one transaction. It reports false
	// without touching balances when (conversion, beneficiary, level) already exists.
	CreateCommissionWithCredit(ctx context.Context, record *CommissionRecord, entry *TransactionHistoryEntry) (bool, error)
	GetCommission(ctx context.Context, commissionID string) (*CommissionRecord, error)
	// ApproveCommission moves a pending commission to approved and its amount from the
	// pending to the available balance atomically.
	ApproveCommission(ctx context.Context, commissionID string, approvedAt time.Time) (*ApprovalResult, error)
	ListCommissions(ctx context.Context, filter CommissionFilter) ([]*CommissionRecord, int64, error)
	SummarizeByLevel(ctx context.Context, beneficiaryID string) ([]LevelEarnings, error)
}
