package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/executor"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/intelligence"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// fakeStore
// =========================================================================

// fakeStore is an in-memory repository.Store. It mirrors the SQLite
// semantics the services rely on: duplicate repo URLs per user fail with
// ErrDuplicate and progress writes compare-and-swap on XP.
type fakeStore struct {
	mu sync.Mutex

	users  map[string]*model.User // keyed by internal ID
	byGHID map[int64]*model.User
	nextID int

	profiles map[string]model.Profile
	skills   map[string]map[string]model.Skill
	history  map[string][]model.QuestHistoryRecord

	// set to a non-nil error to simulate a database failure
	upsertErr   error
	getByIDErr  error
	completeErr error
	awakenErr   error

	// beforeProgressWrite runs (unlocked) at the start of CompleteQuest and
	// CompleteSkillActivity; tests use it to slip in a concurrent write.
	beforeProgressWrite func(f *fakeStore)

	completeCalls int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*model.User),
		byGHID:   make(map[int64]*model.User),
		nextID:   1,
		profiles: make(map[string]model.Profile),
		skills:   make(map[string]map[string]model.Skill),
		history:  make(map[string][]model.QuestHistoryRecord),
	}
}

func (f *fakeStore) Upsert(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Login = user.Login
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		*user = *existing
		return nil
	}
	user.ID = fmt.Sprintf("user-fake-id-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	f.byGHID[user.GitHubID] = &copied
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID)
	}
	return cloneProfile(p), nil
}

func (f *fakeStore) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, *cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].XP > out[j].XP })
	if opts.Offset >= len(out) {
		return []model.Profile{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStore) SetCurrentQuest(ctx context.Context, userID string, quest *model.Quest) error {
	return f.updateProfile(userID, func(p *model.Profile) { p.CurrentQuest = cloneQuest(quest) })
}

func (f *fakeStore) SetGoal(ctx context.Context, userID string, goal *string) error {
	return f.updateProfile(userID, func(p *model.Profile) {
		if goal == nil {
			p.Goal = nil
			return
		}
		g := *goal
		p.Goal = &g
	})
}

func (f *fakeStore) SetResumeData(ctx context.Context, userID string, data *model.ResumeData) error {
	return f.updateProfile(userID, func(p *model.Profile) { p.ResumeData = data })
}

func (f *fakeStore) updateProfile(userID string, fn func(p *model.Profile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return apperror.NotFound("profile", userID)
	}
	fn(&p)
	f.profiles[userID] = p
	return nil
}

func (f *fakeStore) ListSkills(ctx context.Context, userID string) ([]model.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Skill{}
	for _, s := range f.skills[userID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetSkill(ctx context.Context, userID, name string) (*model.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.skills[userID][name]
	if !ok {
		return nil, apperror.NotFound("skill", name)
	}
	return &s, nil
}

func (f *fakeStore) SaveSkills(ctx context.Context, userID string, skills []model.Skill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range skills {
		f.putSkill(userID, s)
	}
	return nil
}

func (f *fakeStore) putSkill(userID string, s model.Skill) {
	if f.skills[userID] == nil {
		f.skills[userID] = make(map[string]model.Skill)
	}
	s.UserID = userID
	if s.ID == "" {
		s.ID = userID + "/" + s.Name
	}
	f.skills[userID][s.Name] = s
}

func (f *fakeStore) ListHistory(ctx context.Context, userID string, opts repository.ListOptions) ([]model.QuestHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.history[userID]
	out := make([]model.QuestHistoryRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		out = append(out, recs[i])
	}
	if opts.Offset >= len(out) {
		return []model.QuestHistoryRecord{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStore) HasSubmitted(ctx context.Context, userID, repoURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submittedLocked(userID, repoURL), nil
}

func (f *fakeStore) submittedLocked(userID, repoURL string) bool {
	for _, r := range f.history[userID] {
		if r.RepoURL == repoURL {
			return true
		}
	}
	return false
}

func (f *fakeStore) Awaken(ctx context.Context, p *model.Profile, skills []model.Skill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awakenErr != nil {
		return f.awakenErr
	}
	if _, ok := f.profiles[p.UserID]; ok {
		return apperror.Conflict("profile", p.UserID)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.profiles[p.UserID] = *cloneProfile(*p)
	for _, s := range skills {
		if old, ok := f.skills[p.UserID][s.Name]; ok {
			s.ID, s.EarnedXP = old.ID, old.EarnedXP
		}
		f.putSkill(p.UserID, s)
	}
	return nil
}

func (f *fakeStore) CompleteQuest(ctx context.Context, c repository.QuestCompletion) error {
	if f.beforeProgressWrite != nil {
		f.beforeProgressWrite(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completeErr != nil {
		return f.completeErr
	}
	if f.submittedLocked(c.UserID, c.Record.RepoURL) {
		return apperror.DuplicateSubmission(c.Record.RepoURL)
	}
	p, ok := f.profiles[c.UserID]
	if !ok || p.XP != c.ExpectedXP {
		return apperror.Conflict("profile", c.UserID)
	}
	rec := c.Record
	rec.ID = fmt.Sprintf("history-%d", len(f.history[c.UserID])+1)
	f.history[c.UserID] = append(f.history[c.UserID], rec)
	p.XP = c.NewXP
	p.Rank = c.NewRank
	p.CurrentQuest = cloneQuest(c.NextQuest)
	f.profiles[c.UserID] = p
	return nil
}

func (f *fakeStore) CompleteSkillActivity(ctx context.Context, a repository.SkillActivity) error {
	if f.beforeProgressWrite != nil {
		f.beforeProgressWrite(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	p, ok := f.profiles[a.UserID]
	if !ok || p.XP != a.ExpectedXP {
		return apperror.Conflict("profile", a.UserID)
	}
	f.putSkill(a.UserID, a.Skill)
	p.XP = a.NewXP
	p.Rank = a.NewRank
	f.profiles[a.UserID] = p
	return nil
}

// bumpXP simulates a concurrent XP write landing between read and CAS.
func (f *fakeStore) bumpXP(userID string, xp int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[userID]
	p.XP += xp
	p.Rank = progression.RankFromXP(p.XP)
	f.profiles[userID] = p
}

func cloneProfile(p model.Profile) *model.Profile {
	p.CurrentQuest = cloneQuest(p.CurrentQuest)
	if p.Goal != nil {
		g := *p.Goal
		p.Goal = &g
	}
	return &p
}

func cloneQuest(q *model.Quest) *model.Quest {
	if q == nil {
		return nil
	}
	c := *q
	c.Requirements = append([]string(nil), q.Requirements...)
	return &c
}

// seedHunter creates a user and an awakened profile at xp.
func seedHunter(f *fakeStore, githubID int64, xp int) string {
	u := &model.User{GitHubID: githubID, Login: fmt.Sprintf("hunter-%d", githubID)}
	_ = f.Upsert(context.Background(), u)
	rank := progression.RankFromXP(xp)
	_ = f.Awaken(context.Background(), &model.Profile{
		UserID:       u.ID,
		Username:     u.Login,
		Rank:         rank,
		XP:           xp,
		CurrentQuest: intelligence.FallbackQuest(rank),
	}, []model.Skill{{Name: progression.SkillDebugging, BaseLevel: 1, Level: 1, Levelable: true}})
	return u.ID
}

// =========================================================================
// stubs
// =========================================================================

type stubVerifier struct {
	facts map[string]*model.RepositoryFact // keyed by submitted URL
	err   error
	calls int
}

func (s *stubVerifier) VerifyRepository(ctx context.Context, rawURL string) (*model.RepositoryFact, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	fact, ok := s.facts[rawURL]
	if !ok {
		return nil, fmt.Errorf("stub: %w", github.ErrNotFound)
	}
	copied := *fact
	return &copied, nil
}

// quests records every context it is asked about and answers with the
// fallback table.
type stubQuests struct {
	contexts []intelligence.QuestContext
}

func (s *stubQuests) Next(ctx context.Context, qc intelligence.QuestContext) *model.Quest {
	s.contexts = append(s.contexts, qc)
	return intelligence.FallbackQuest(qc.Rank)
}

type stubFetcher struct {
	data *model.ResumeData
	err  error
}

func (s *stubFetcher) FetchProfile(ctx context.Context, username string) (*model.ResumeData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubAssessor struct {
	result model.AwakeningResult
	seen   []model.ResumeData
}

func (s *stubAssessor) Awaken(ctx context.Context, data model.ResumeData) model.AwakeningResult {
	s.seen = append(s.seen, data)
	return s.result
}

type stubExecutor struct {
	res *executor.ExecutionResult
	err error
	req executor.ExecutionRequest
}

func (s *stubExecutor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}
