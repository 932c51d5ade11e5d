package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/service"
)

// QuestHandler exposes the quest lifecycle.
type QuestHandler struct {
	quests *service.QuestService
	logger *slog.Logger
}

func NewQuestHandler(quests *service.QuestService, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{quests: quests, logger: logger}
}

type submitRequest struct {
	RepoURL string `json:"repoUrl"`
}

// HandleSubmit verifies a repository and awards quest XP.
//
// HTTP: POST /api/quests/submit  {"repoUrl": "https://github.com/owner/repo"}
//
// 409 duplicate_submission when the repository was already used, 422 when
// GitHub cannot see it, 503 when GitHub is down.
func (h *QuestHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.quests.Submit(r.Context(), userID, req.RepoURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRegenerate swaps the current quest for a new one at the same rank.
//
// HTTP: POST /api/quests/regenerate
func (h *QuestHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	quest, err := h.quests.Regenerate(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	// quest is null at the terminal rank
	writeJSON(w, http.StatusOK, map[string]any{"quest": quest})
}

// HandleHistory lists accepted submissions, newest first.
//
// HTTP: GET /api/quests/history?limit=20&offset=0
func (h *QuestHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	records, err := h.quests.History(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
