package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/referral/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	teamdto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/team"
)

type TeamHandler struct {
	teamUc usecase.TeamUsecase
	loc    *time.Location
	logger *zap.Logger
}

// NewTeamHandler parses calendar dates in query parameters in loc.
func NewTeamHandler(teamUc usecase.TeamUsecase, loc *time.Location, logger *zap.Logger) *TeamHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TeamHandler{
		teamUc: teamUc,
		loc:    loc,
		logger: logger,
	}
}

func (h *TeamHandler) Register(r chi.Router) {
	r.Get("/users/{id}/team/stats", h.GetTeamStats)
	r.Get("/users/{id}/team/members", h.GetTeamMembers)
	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/geo/divisions", h.GetDivisions)
	r.Get("/geo/divisions/{division}/districts", h.GetDistricts)
	r.Get("/geo/districts/{district}/division", h.GetDivisionForDistrict)
}

func (h *TeamHandler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.teamUc.GetTeamStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamStatsResponse(stats))
}

func (h *TeamHandler) GetTeamMembers(w http.ResponseWriter, r *http.Request) {
	level, err := queryInt(r, "level")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	period, err := queryPeriod(r, h.loc)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	out, err := h.teamUc.GetTeamMembersDetailed(r.Context(), &teamdto.TeamMembersInput{
		UserID: chi.URLParam(r, "id"),
		Level:  level,
		Period: period,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	members := make([]response.TeamMember, len(out.Members))
	for i, m := range out.Members {
		members[i] = response.TeamMember{
			MemberID:    m.MemberID,
			Level:       m.Level,
			SponsorID:   m.SponsorID,
			JoinedAt:    m.JoinedAt,
			DisplayName: m.DisplayName,
			Email:       m.Email,
			District:    m.District,
		}
	}
	writeJSON(w, http.StatusOK, response.TeamMembersResponse{Members: members, Total: out.Total})
}

// GetLeaderboard reads the district from "zilla", falling back to "district".
func (h *TeamHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r, h.loc)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	limit, offset, err := queryPage(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	query := r.URL.Query()
	district := query.Get("zilla")
	if district == "" {
		district = query.Get("district")
	}

	out, err := h.teamUc.GetLeaderboard(r.Context(), &teamdto.LeaderboardInput{
		Filter: domain.LeaderboardFilter{
			Division: query.Get("division"),
			District: district,
			Period:   period,
		},
		OrderBy: query.Get("order_by"),
		Order:   query.Get("order"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.LeaderboardResponse{
		Entries: toLeaderboardEntries(out.Entries),
		Total:   out.Total,
	})
}

func (h *TeamHandler) GetDivisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response.DivisionsResponse{Divisions: h.teamUc.GetDivisions()})
}

func (h *TeamHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	division := chi.URLParam(r, "division")
	districts, err := h.teamUc.GetDistrictsByDivision(division)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.DistrictsResponse{Division: division, Districts: districts})
}

func (h *TeamHandler) GetDivisionForDistrict(w http.ResponseWriter, r *http.Request) {
	district := chi.URLParam(r, "district")
	division, err := h.teamUc.GetDivisionForDistrict(district)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response.DistrictDivisionResponse{District: district, Division: division})
}
