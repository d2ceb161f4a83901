package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	relationsdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/relations"
)

type HierarchyHandler struct {
	hierarchyUc usecase.HierarchyUsecase
	logger      *zap.Logger
}

func NewHierarchyHandler(hierarchyUc usecase.HierarchyUsecase, logger *zap.Logger) *HierarchyHandler {
	return &HierarchyHandler{
		hierarchyUc: hierarchyUc,
		logger:      logger,
	}
}

func (h *HierarchyHandler) Register(r chi.Router) {
	r.Post("/sponsors", h.SetSponsor)
	r.Get("/users/{id}/sponsor", h.GetSponsor)
	r.Get("/users/{id}/upline", h.GetUpline)
	r.Get("/users/{id}/downline/direct", h.GetDirectDownline)
	r.Get("/users/{id}/downline", h.GetAllDownline)
}

func (h *HierarchyHandler) SetSponsor(w http.ResponseWriter, r *http.Request) {
	var req request.SetSponsorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	link, err := h.hierarchyUc.SetSponsor(r.Context(), &relationsdto.SetSponsorInput{
		UserID:       req.UserID,
		SponsorID:    req.SponsorID,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response.SponsorLinkResponse{
		UserID:    link.UserID,
		SponsorID: link.SponsorID,
		CreatedAt: link.CreatedAt,
	})
}

func (h *HierarchyHandler) GetSponsor(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	sponsorID, err := h.hierarchyUc.GetSponsor(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.SponsorResponse{UserID: userID, SponsorID: sponsorID})
}

func (h *HierarchyHandler) GetUpline(w http.ResponseWriter, r *http.Request) {
	maxLevels, err := queryInt(r, "max_levels")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	userID := chi.URLParam(r, "id")
	upline, err := h.hierarchyUc.GetUpline(r.Context(), userID, maxLevels)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	entries := make([]response.UplineEntry, len(upline))
	for i, e := range upline {
		entries[i] = response.UplineEntry{Level: e.Level, AncestorID: e.AncestorID}
	}
	writeJSON(w, http.StatusOK, response.UplineResponse{UserID: userID, Upline: entries})
}

func (h *HierarchyHandler) GetDirectDownline(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	members, err := h.hierarchyUc.GetDirectDownline(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.DownlineResponse{
		UserID:  userID,
		Members: toDownlineMembers(members),
		Total:   len(members),
	})
}

func (h *HierarchyHandler) GetAllDownline(w http.ResponseWriter, r *http.Request) {
	maxLevels, err := queryInt(r, "max_levels")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	userID := chi.URLParam(r, "id")
	members, err := h.hierarchyUc.GetAllDownline(r.Context(), userID, maxLevels)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.DownlineResponse{
		UserID:  userID,
		Members: toDownlineMembers(members),
		Total:   len(members),
	})
}
