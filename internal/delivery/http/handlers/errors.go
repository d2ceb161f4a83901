package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{domain.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{domain.ErrSelfSponsorship, http.StatusConflict, "self_sponsorship"},
	{domain.ErrSponsorAlreadySet, http.StatusConflict, "sponsor_already_set"},
	{domain.ErrSponsorIsDescendant, http.StatusConflict, "sponsor_is_descendant"},
	{domain.ErrAffiliateExists, http.StatusConflict, "affiliate_exists"},
	{domain.ErrCommissionNotPending, http.StatusConflict, "commission_not_pending"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrSponsorNotFound, http.StatusNotFound, "sponsor_not_found"},
	{domain.ErrAffiliateNotFound, http.StatusNotFound, "affiliate_not_found"},
	{domain.ErrCommissionNotFound, http.StatusNotFound, "commission_not_found"},
	{domain.ErrUnknownDivision, http.StatusNotFound, "unknown_division"},
	{domain.ErrUnknownDistrict, http.StatusNotFound, "unknown_district"},
	{domain.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependency_unavailable"},
	{domain.ErrNegativeBalance, http.StatusInternalServerError, "invariant_violation"},
	{domain.ErrCyclicHierarchy, http.StatusInternalServerError, "invariant_violation"},
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		writeJSON(w, http.StatusBadRequest, response.ErrorResponse{Error: "invalid_argument", Message: validationErrs.Error()})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
			writeJSON(w, m.status, response.ErrorResponse{Error: m.code, Message: err.Error()})
			return
		}
	}

	logger.Error("unexpected error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, response.ErrorResponse{Error: "internal", Message: "internal error"})
}
