// Package service contains the business logic of shadow-rank.
//
// THE THREE LAYERS:
//
//	Handler (HTTP)       → parses requests, writes responses
//	Service (this package) → validates, enforces progression rules, orchestrates
//	Repository (storage)  → reads/writes SQLite
//
// Services accept primitives and return domain types and apperror values,
// never HTTP types, so the same code backs the HTTP API and the rankctl CLI.
// Every dependency is an interface injected through a NewXxx constructor;
// tests pass in-memory fakes.
//
// PROGRESSION WRITES:
// Anything that changes XP (quest submission, skill activity) reads the
// profile, computes the new state with the pure functions in
// internal/progression, then hands the whole result to one
// ProgressRepository call. That call is transactional and compare-and-swaps
// on the XP it was computed from; a conflict means another write landed in
// between, and the operation is recomputed from a fresh read.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	// maxWriteAttempts bounds the read-compute-CAS loop for XP writes.
	maxWriteAttempts = 3
)

// ProfileView is a profile plus its derived position on the rank ladder.
type ProfileView struct {
	Profile  *model.Profile `json:"profile"`
	Progress model.Progress `json:"progress"`
}

func newProfileView(p *model.Profile) *ProfileView {
	return &ProfileView{Profile: p, Progress: progression.Progress(p.XP, p.Rank)}
}

// ProfileService serves read-only profile views.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

// Get returns apperror.ErrNotFound for users who have not awakened yet.
func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to view your profile")
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: fetching profile %s: %w", userID, err)
	}
	return newProfileView(p), nil
}

// Leaderboard lists profiles by XP. limit is clamped to [1, MaxListLimit].
func (s *ProfileService) Leaderboard(ctx context.Context, limit, offset int) ([]ProfileView, error) {
	opts := clampList(limit, offset)
	profiles, err := s.profiles.ListProfiles(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/profile: listing profiles: %w", err)
	}
	views := make([]ProfileView, 0, len(profiles))
	for i := range profiles {
		p := profiles[i]
		p.ResumeData = nil
		views = append(views, *newProfileView(&p))
	}
	return views, nil
}

// Ranks is the public rank ladder.
func Ranks() []progression.RankEntry {
	return progression.Table()
}

func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
