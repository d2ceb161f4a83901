package publisher

import (
	"github.com/shopspring/decimal"

	commissiondto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/commission"
)

// ConversionEvent is a paid order reported by the order service. Amount accepts both a JSON
// number and a quoted decimal string.
type ConversionEvent struct {
	ConversionID string          `json:"conversion_id"`
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToInput falls back to the order id when the producer sends no conversion id.
func (e ConversionEvent) ToInput() *commissiondto.ProcessConversionInput {
	conversionID := e.ConversionID
	if conversionID == "" {
		conversionID = e.OrderID
	}
	return &commissiondto.ProcessConversionInput{
		ConversionID: conversionID,
		OrderID:      e.OrderID,
		SourceUserID: e.UserID,
		OrderAmount:  e.Amount,
	}
}
