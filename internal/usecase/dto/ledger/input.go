package ledgerdto

import "github.com/shopspring/decimal"

type CreditInput struct {
	UserID      string
	Amount      decimal.Decimal
	Bucket      string
	Description string
}

type GetHistoryInput struct {
	UserID string
	Type   string
	Limit  int
	Offset int
}
