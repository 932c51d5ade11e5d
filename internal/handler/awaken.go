package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// AwakeningHandler bootstraps new hunters.
type AwakeningHandler struct {
	awakening *service.AwakeningService
	logger    *slog.Logger
}

func NewAwakeningHandler(awakening *service.AwakeningService, logger *slog.Logger) *AwakeningHandler {
	return &AwakeningHandler{awakening: awakening, logger: logger}
}

// HandleAwaken assesses the caller from resume text or a GitHub username
// (exactly one) and creates their profile.
//
// HTTP: POST /api/awaken
// REQUEST BODY: {"resumeText": "..."} or {"githubUsername": "octocat"}
func (h *AwakeningHandler) HandleAwaken(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in service.AwakenInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	out, err := h.awakening.Awaken(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
