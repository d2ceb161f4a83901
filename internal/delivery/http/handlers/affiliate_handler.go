package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/request"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	affiliatedto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/affiliate"
)

type AffiliateHandler struct {
	affiliateUc usecase.AffiliateUsecase
	logger      *zap.Logger
}

func NewAffiliateHandler(affiliateUc usecase.AffiliateUsecase, logger *zap.Logger) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateUc: affiliateUc,
		logger:      logger,
	}
}

func (h *AffiliateHandler) Register(r chi.Router) {
	r.Post("/affiliates", h.RegisterAffiliate)
	r.Get("/affiliates/{id}", h.GetAffiliate)
}

func (h *AffiliateHandler) RegisterAffiliate(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterAffiliateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	profile, err := h.affiliateUc.RegisterAffiliate(r.Context(), &affiliatedto.RegisterAffiliateInput{
		UserID:   req.UserID,
		District: req.District,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAffiliateResponse(profile))
}

func (h *AffiliateHandler) GetAffiliate(w http.ResponseWriter, r *http.Request) {
	profile, err := h.affiliateUc.GetAffiliate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAffiliateResponse(profile))
}
