package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	ledgerdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/ledger"
)

type LedgerHandler struct {
	ledgerUc usecase.LedgerUsecase
	logger   *zap.Logger
}

func NewLedgerHandler(ledgerUc usecase.LedgerUsecase, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerUc: ledgerUc,
		logger:   logger,
	}
}

func (h *LedgerHandler) Register(r chi.Router) {
	r.Post("/balances/{id}/credit", h.Credit)
	r.Get("/users/{id}/balance", h.GetBalance)
	r.Get("/users/{id}/history", h.GetHistory)
}

func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	var req request.CreditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	balance, err := h.ledgerUc.Credit(r.Context(), &ledgerdto.CreditInput{
		UserID:      chi.URLParam(r, "id"),
		Amount:      req.Amount,
		Bucket:      req.Bucket,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledgerUc.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *LedgerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	out, err := h.ledgerUc.GetHistory(r.Context(), &ledgerdto.GetHistoryInput{
		UserID: chi.URLParam(r, "id"),
		Type:   r.URL.Query().Get("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.HistoryResponse{
		Entries: toHistoryEntries(out.Entries),
		Total:   out.Total,
	})
}
