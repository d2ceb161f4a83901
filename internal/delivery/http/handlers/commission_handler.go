package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	commissiondto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/commission"
)

type CommissionHandler struct {
	commissionUc usecase.CommissionUsecase
	ledgerUc     usecase.LedgerUsecase
	logger       *zap.Logger
}

func NewCommissionHandler(commissionUc usecase.CommissionUsecase, ledgerUc usecase.LedgerUsecase, logger *zap.Logger) *CommissionHandler {
	return &CommissionHandler{
		commissionUc: commissionUc,
		ledgerUc:     ledgerUc,
		logger:       logger,
	}
}

func (h *CommissionHandler) Register(r chi.Router) {
	r.Post("/conversions", h.ProcessConversion)
	r.Get("/users/{id}/commissions", h.ListCommissions)
	r.Post("/commissions/{id}/approve", h.ApproveCommission)
}

// ProcessConversion is idempotent per conversion id; a replay returns an empty list.
func (h *CommissionHandler) ProcessConversion(w http.ResponseWriter, r *http.Request) {
	var req request.ConversionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	records, err := h.commissionUc.ProcessConversion(r.Context(), &commissiondto.ProcessConversionInput{
		ConversionID: req.ConversionID,
		OrderID:      req.OrderID,
		SourceUserID: req.UserID,
		OrderAmount:  req.Amount,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.ConversionResponse{
		ConversionID: req.ConversionID,
		Commissions:  toCommissions(records),
	})
}

func (h *CommissionHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	out, err := h.commissionUc.ListCommissions(r.Context(), &commissiondto.ListCommissionsInput{
		BeneficiaryID: chi.URLParam(r, "id"),
		Status:        r.URL.Query().Get("status"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.CommissionsResponse{
		Commissions: toCommissions(out.Commissions),
		Total:       out.Total,
	})
}

func (h *CommissionHandler) ApproveCommission(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledgerUc.ApproveCommission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.ApproveResponse{
		Commission: toCommission(result.Commission),
		Balance:    toBalanceResponse(result.Balance),
		Shortfall:  result.Shortfall.StringFixed(2),
	})
}
