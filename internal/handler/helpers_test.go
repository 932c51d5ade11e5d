package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/auth"
	"github.com/sakif/shadow-rank/internal/executor"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/handler"
	"github.com/sakif/shadow-rank/internal/intelligence"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository/sqlite"
	"github.com/sakif/shadow-rank/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// MockVerifier answers repository lookups from a map keyed by submitted URL.
type MockVerifier struct {
	Facts map[string]*model.RepositoryFact
	Err   error
}

func (m *MockVerifier) VerifyRepository(ctx context.Context, rawURL string) (*model.RepositoryFact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	fact, ok := m.Facts[rawURL]
	if !ok {
		return nil, github.ErrNotFound
	}
	copied := *fact
	return &copied, nil
}

// MockExecutor implements a fast executor for handler testing without
// Docker overhead.
type MockExecutor struct {
	CapturedReq executor.ExecutionRequest
	ReturnRes   *executor.ExecutionResult
	ReturnErr   error
}

func (m *MockExecutor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	m.CapturedReq = req
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnRes, nil
}

// testEnv is the API wired against an in-memory database. The router
// trusts an X-Test-User header instead of a JWT.
type testEnv struct {
	db       *sqlite.DB
	verifier *MockVerifier
	exec     *MockExecutor
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:       db,
		verifier: &MockVerifier{Facts: map[string]*model.RepositoryFact{}},
		exec:     &MockExecutor{},
	}

	levelable := progression.LevelableSet(progression.DefaultLevelable)
	skills := service.NewSkillService(db, levelable, nil, testLogger)

	profileH := handler.NewProfileHandler(service.NewProfileService(db, testLogger), testLogger)
	awakenH := handler.NewAwakeningHandler(service.NewAwakeningService(db, &MockFetcher{}, intelligence.NewAwakener(nil, nil, testLogger), levelable, testLogger), testLogger)
	questH := handler.NewQuestHandler(service.NewQuestService(db, env.verifier, intelligence.NewQuestGenerator(nil, nil, testLogger), nil, testLogger), testLogger)
	skillH := handler.NewSkillHandler(skills, testLogger)
	challengeH := handler.NewChallengeHandler(service.NewChallengeService(env.exec, skills, nil, testLogger), testLogger)
	goalH := handler.NewGoalHandler(service.NewGoalService(db, testLogger), testLogger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				req = req.WithContext(auth.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/ranks", profileH.HandleRanks)
	r.Get("/api/profile", profileH.HandleProfile)
	r.Get("/api/leaderboard", profileH.HandleLeaderboard)
	r.Post("/api/awaken", awakenH.HandleAwaken)
	r.Post("/api/quests/submit", questH.HandleSubmit)
	r.Post("/api/quests/regenerate", questH.HandleRegenerate)
	r.Get("/api/quests/history", questH.HandleHistory)
	r.Get("/api/skills", skillH.HandleList)
	r.Post("/api/skills/resume", skillH.HandleResume)
	r.Post("/api/skills/{name}/complete", skillH.HandleComplete)
	r.Get("/api/challenges/random", challengeH.HandleRandom)
	r.Get("/api/challenges/{id}", challengeH.HandleGet)
	r.Post("/api/challenges/{id}/attempt", challengeH.HandleAttempt)
	r.Get("/api/goal", goalH.HandleGet)
	r.Put("/api/goal", goalH.HandlePut)
	r.Delete("/api/goal", goalH.HandleDelete)
	env.router = r
	return env
}

type MockFetcher struct{}

func (MockFetcher) FetchProfile(ctx context.Context, username string) (*model.ResumeData, error) {
	return &model.ResumeData{Source: model.SourceGitHub, Languages: []string{"Go"}}, nil
}

var nextGitHubID int64

func (e *testEnv) user(t *testing.T) string {
	t.Helper()
	nextGitHubID++
	u := &model.User{GitHubID: nextGitHubID, Login: fmt.Sprintf("hunter-%d", nextGitHubID)}
	require.NoError(t, e.db.Upsert(context.Background(), u))
	return u.ID
}

// awakened creates a user and awakens them from a short resume.
func (e *testEnv) awakened(t *testing.T) string {
	t.Helper()
	id := e.user(t)
	rr := e.do(t, id, http.MethodPost, "/api/awaken", `{"resumeText":"Go developer"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return id
}

func (e *testEnv) fact(url string, pushedAgo time.Duration) {
	e.verifier.Facts[url] = &model.RepositoryFact{Name: "repo", URL: url, PushedAt: time.Now().Add(-pushedAgo)}
}

func (e *testEnv) do(t *testing.T, userID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
