package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/apperror"
)

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		err       error
		status    int
		errorType string
	}{
		{"validation", apperror.ValidationFailed("goal", "goal is required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("sign in"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "forbidden"},
		{"not found", fmt.Errorf("service: %w", apperror.NotFound("profile", "u1")), http.StatusNotFound, "not_found"},
		{"duplicate", apperror.DuplicateSubmission("https://github.com/a/b"), http.StatusConflict, "duplicate_submission"},
		{"conflict", apperror.Conflict("profile", "u1"), http.StatusConflict, "conflict"},
		{"verification", apperror.VerificationFailed("private"), http.StatusUnprocessableEntity, "verification_failed"},
		{"unavailable", apperror.Unavailable("GitHub", errors.New("timeout")), http.StatusServiceUnavailable, "unavailable"},
		{"internal", errors.New("sqlite: disk I/O error"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, logger, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.errorType, body.Error)
			assert.NotContains(t, body.Message, "sqlite")
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"resumeText":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()

	var dst struct {
		ResumeText string `json:"resumeText"`
	}
	err := decodeJSON(rr, req, &dst)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&offset=abc", nil)
	limit, offset := pagination(req)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 0, offset)
}
