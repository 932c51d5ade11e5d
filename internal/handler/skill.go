package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// SkillHandler exposes per-user skills.
type SkillHandler struct {
	skills *service.SkillService
	logger *slog.Logger
}

func NewSkillHandler(skills *service.SkillService, logger *slog.Logger) *SkillHandler {
	return &SkillHandler{skills: skills, logger: logger}
}

// HandleList returns the caller's skills ordered by name.
//
// HTTP: GET /api/skills
func (h *SkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	skills, err := h.skills.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

type resumeRequest struct {
	ResumeText string `json:"resumeText"`
}

// HandleResume re-parses resume text into base skill levels. Earned XP is
// kept.
//
// HTTP: POST /api/skills/resume  {"resumeText": "..."}
func (h *SkillHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req resumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.skills.ApplyResume(r.Context(), userID, req.ResumeText)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type completeRequest struct {
	XPReward int `json:"xpReward"`
}

// HandleComplete credits a skill activity.
//
// HTTP: POST /api/skills/{name}/complete  {"xpReward": 15}
func (h *SkillHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	// "System Design" arrives percent-encoded
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		name = chi.URLParam(r, "name")
	}

	var req completeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.skills.CompleteChallenge(r.Context(), userID, name, req.XPReward)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
