package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// GoalHandler manages the caller's career goal.
type GoalHandler struct {
	goals  *service.GoalService
	logger *slog.Logger
}

func NewGoalHandler(goals *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

type goalBody struct {
	Goal *string `json:"goal"`
}

// HandleGet returns {"goal": null} when unset.
//
// HTTP: GET /api/goal
func (h *GoalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	goal, err := h.goals.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goalBody{Goal: goal})
}

// HandlePut sets the goal; the stored value is trimmed.
//
// HTTP: PUT /api/goal  {"goal": "Land a backend role"}
func (h *GoalHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req goalBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	text := ""
	if req.Goal != nil {
		text = *req.Goal
	}

	saved, err := h.goals.Set(r.Context(), userID, text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goalBody{Goal: &saved})
}

// HTTP: DELETE /api/goal
func (h *GoalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.goals.Delete(r.Context(), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
