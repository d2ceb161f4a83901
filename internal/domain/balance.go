package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BalanceBucket string

const (
	BucketAvailable BalanceBucket = "available"
	BucketPending   BalanceBucket = "pending"
)

func (b BalanceBucket) Valid() bool {
	return b == BucketAvailable || b == BucketPending
}

type Balance struct {
	UserID    string
	Available decimal.Decimal
	Pending   decimal.Decimal
	UpdatedAt time.Time
}

func NewBalance(userID string) *Balance {
	return &Balance{UserID: userID, Available: decimal.Zero, Pending: decimal.Zero}
}

// Credit adds amount to the bucket. A negative result is an invariant violation and
// leaves the balance untouched.
func (b *Balance) Credit(amount decimal.Decimal, bucket BalanceBucket) error {
	switch bucket {
	case BucketAvailable:
		next := b.Available.Add(amount)
		if next.IsNegative() {
			return fmt.Errorf("%w: user %s available %s + %s", ErrNegativeBalance, b.UserID, b.Available, amount)
		}
		b.Available = next
	case BucketPending:
		next := b.Pending.Add(amount)
		if next.IsNegative() {
			return fmt.Errorf("%w: user %s pending %s + %s", ErrNegativeBalance, b.UserID, b.Pending, amount)
		}
		b.Pending = next
	default:
		return fmt.Errorf("%w: unknown bucket %q", ErrInvalidArgument, bucket)
	}
	return nil
}

// Approve moves amount from pending to available. Pending is floored at zero; the
// returned shortfall is how much pending was missing.
func (b *Balance) Approve(amount decimal.Decimal) decimal.Decimal {
	shortfall := decimal.Zero
	next := b.Pending.Sub(amount)
	if next.IsNegative() {
		shortfall = next.Neg()
		next = decimal.Zero
	}
	b.Pending = next
	b.Available = b.Available.Add(amount)
	return shortfall
}

type TransactionType string

const (
	TransactionMLMCommission TransactionType = "mlm_commission"
	TransactionCredit        TransactionType = "credit"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
)

type TransactionHistoryEntry struct {
	ID            string
	UserID        string
	Type          TransactionType
	Amount        decimal.Decimal
	Status        TransactionStatus
	Description   string
	RelatedUserID string
	Level         *int
	CommissionID  string
	CreatedAt     time.Time
}

type HistoryFilter struct {
	UserID string
	Type   TransactionType
	Limit  int
	Offset int
}

type LedgerRepository interface {
	// GetBalance returns a zero balance for users that were never credited.
	GetBalance(ctx context.Context, userID string) (*Balance, error)
	// Credit applies amount to the bucket and appends entry atomically.
	Credit(ctx context.Context, userID string, amount decimal.Decimal, bucket BalanceBucket, entry *TransactionHistoryEntry) (*Balance, error)
	// ListHistory returns entries newest first.
	ListHistory(ctx context.Context, filter HistoryFilter) ([]*TransactionHistoryEntry, int64, error)
}
