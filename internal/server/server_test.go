package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/executor"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/handler"
	"github.com/sakif/shadow-rank/internal/intelligence"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository/sqlite"
	"github.com/sakif/shadow-rank/internal/server"
	"github.com/sakif/shadow-rank/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type stubGitHub struct{}

func (stubGitHub) VerifyRepository(context.Context, string) (*model.RepositoryFact, error) {
	return nil, github.ErrNotFound
}

func (stubGitHub) FetchProfile(context.Context, string) (*model.ResumeData, error) {
	return nil, github.ErrNotFound
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk gone") }

type fixture struct {
	srv    *server.Server
	db     *sqlite.DB
	tokens *auth.TokenService
	reg    *prometheus.Registry
}

func newFixture(t *testing.T, cfg server.Config) *fixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("server-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	levelable := progression.LevelableSet(progression.DefaultLevelable)
	skills := service.NewSkillService(db, levelable, m, testLogger)

	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), service.DevLogin{}, testLogger)
	provider := auth.NewGitHubProvider("", "", "http://localhost/auth/github/callback", "")

	h := server.Handlers{
		Auth:      handler.NewAuthHandler(provider, authSvc, false, testLogger),
		Profile:   handler.NewProfileHandler(service.NewProfileService(db, testLogger), testLogger),
		Awakening: handler.NewAwakeningHandler(service.NewAwakeningService(db, stubGitHub{}, intelligence.NewAwakener(nil, m, testLogger), levelable, testLogger), testLogger),
		Quest:     handler.NewQuestHandler(service.NewQuestService(db, stubGitHub{}, intelligence.NewQuestGenerator(nil, m, testLogger), m, testLogger), testLogger),
		Skill:     handler.NewSkillHandler(skills, testLogger),
		Goal:      handler.NewGoalHandler(service.NewGoalService(db, testLogger), testLogger),
		Challenge: handler.NewChallengeHandler(service.NewChallengeService(executor.Disabled{}, skills, nil, testLogger), testLogger),
	}

	return &fixture{
		srv:    server.New(cfg, h, tokens, db, m, testLogger),
		db:     db,
		tokens: tokens,
		reg:    reg,
	}
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	u := &model.User{GitHubID: 42, Login: "sung-jinwoo"}
	require.NoError(t, f.db.Upsert(context.Background(), u))
	tok, err := f.tokens.Generate(u.ID)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	f := newFixture(t, server.Config{})

	rr := f.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	tokens, err := auth.NewTokenService("server-test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	srv := server.New(server.Config{}, server.Handlers{}, tokens, failingPinger{}, nil, testLogger)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRoutes_Authentication(t *testing.T) {
	f := newFixture(t, server.Config{})
	tok := f.token(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"ranks are public", http.MethodGet, "/api/ranks", "", http.StatusOK},
		{"profile needs a session", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/me", "not-a-jwt", http.StatusUnauthorized},
		{"me", http.MethodGet, "/api/me", tok, http.StatusOK},
		{"profile before awakening", http.MethodGet, "/api/profile", tok, http.StatusNotFound},
		{"skills", http.MethodGet, "/api/skills", tok, http.StatusOK},
		{"leaderboard", http.MethodGet, "/api/leaderboard", tok, http.StatusOK},
		{"history", http.MethodGet, "/api/quests/history", tok, http.StatusOK},
		{"challenge", http.MethodGet, "/api/challenges/off-by-one", tok, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/nope", tok, http.StatusNotFound},
		{"github login unconfigured", http.MethodGet, "/auth/github/login", "", http.StatusServiceUnavailable},
		{"dev login disabled", http.MethodPost, "/auth/dev-login", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestRoutes_AwakenFlow(t *testing.T) {
	f := newFixture(t, server.Config{})
	tok := f.token(t)

	rr := f.do(http.MethodPost, "/api/awaken", tok, `{"resumeText":"Go developer writing REST APIs"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = f.do(http.MethodGet, "/api/profile", tok, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rank":"E"`)

	rr = f.do(http.MethodPost, "/api/challenges/off-by-one/attempt", tok, `{"code":"console.log(1)"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "5", rr.Header().Get("Retry-After"))
}

func TestRoutes_RateLimitsMutations(t *testing.T) {
	f := newFixture(t, server.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	tok := f.token(t)

	rr := f.do(http.MethodPut, "/api/goal", tok, `{"goal":"Ship a compiler"}`)
	assert.NotEqual(t, http.StatusTooManyRequests, rr.Code)

	rr = f.do(http.MethodPut, "/api/goal", tok, `{"goal":"Ship a compiler"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Reads are never limited.
	rr = f.do(http.MethodGet, "/api/goal", tok, "")
	assert.NotEqual(t, http.StatusTooManyRequests, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, server.Config{})
	f.do(http.MethodGet, "/api/ranks", "", "")

	rr := f.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",route="/api/ranks",status="200"} 1`)
}

func TestHandler_Tracing(t *testing.T) {
	f := newFixture(t, server.Config{Tracing: true})

	rr := f.do(http.MethodGet, "/api/ranks", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
