package commissiondto

import "github.com/shopspring/decimal"

type ProcessConversionInput struct {
	ConversionID string
	OrderID      string
	SourceUserID string
	OrderAmount  decimal.Decimal
}

type ListCommissionsInput struct {
	BeneficiaryID string
	Status        string
	Limit         int
	Offset        int
}
