package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type User struct {
	ID          string
	DisplayName string
	Email       string
}

// IdentityService resolves users owned by the external directory.
type IdentityService interface {
	// ResolveUser returns ErrUserNotFound for unknown ids.
	ResolveUser(ctx context.Context, userID string) (*User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// PurchaseHistory reports the paid order total of a user within an inclusive period.
type PurchaseHistory interface {
	GetPurchaseTotal(ctx context.Context, userID string, period DateRange) (decimal.Decimal, error)
}
