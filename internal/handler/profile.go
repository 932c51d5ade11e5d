package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// ProfileHandler serves the rank ladder and profile views.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleRanks returns the rank thresholds. Public.
//
// HTTP: GET /api/ranks
func (h *ProfileHandler) HandleRanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, service.Ranks())
}

// HandleProfile returns the caller's profile and progress toward the next
// rank. 404 means the hunter has not awakened yet.
//
// HTTP: GET /api/profile
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	view, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleLeaderboard lists hunters by XP.
//
// HTTP: GET /api/leaderboard?limit=20&offset=0
func (h *ProfileHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	views, err := h.profiles.Leaderboard(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
