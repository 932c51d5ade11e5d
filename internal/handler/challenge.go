package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// ChallengeHandler serves the debugging dungeon.
type ChallengeHandler struct {
	challenges *service.ChallengeService
	logger     *slog.Logger
}

func NewChallengeHandler(challenges *service.ChallengeService, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, logger: logger}
}

// HandleRandom picks a challenge. The expected output is never part of the
// response.
//
// HTTP: GET /api/challenges/random?exclude=off-by-one,null-check
func (h *ChallengeHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	var exclude []string
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				exclude = append(exclude, id)
			}
		}
	}
	writeJSON(w, http.StatusOK, h.challenges.Random(exclude))
}

// HTTP: GET /api/challenges/{id}
func (h *ChallengeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.challenges.ByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type attemptRequest struct {
	Code string `json:"code"`
}

// HandleAttempt runs a fixed version of the challenge in the sandbox.
//
// HTTP: POST /api/challenges/{id}/attempt  {"code": "function ..."}
//
// A failing solution is still a 200: the body says passed=false.
func (h *ChallengeHandler) HandleAttempt(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req attemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.challenges.Attempt(r.Context(), userID, chi.URLParam(r, "id"), req.Code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
