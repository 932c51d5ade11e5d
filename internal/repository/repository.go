// Package repository defines the storage contracts the services depend on.
// internal/repository/sqlite is the production implementation; service
// tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/shadow-rank/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ProfileRepository covers single-row profile reads and the profile fields
// that carry no progression invariant.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	// ListProfiles orders by XP, highest first.
	ListProfiles(ctx context.Context, opts ListOptions) ([]model.Profile, error)
	SetCurrentQuest(ctx context.Context, userID string, quest *model.Quest) error
	SetGoal(ctx context.Context, userID string, goal *string) error
	SetResumeData(ctx context.Context, userID string, data *model.ResumeData) error
}

type SkillRepository interface {
	ListSkills(ctx context.Context, userID string) ([]model.Skill, error)
	GetSkill(ctx context.Context, userID, name string) (*model.Skill, error)
	// SaveSkills upserts every skill by (user, name) in one transaction.
	SaveSkills(ctx context.Context, userID string, skills []model.Skill) error
}

type QuestHistoryRepository interface {
	ListHistory(ctx context.Context, userID string, opts ListOptions) ([]model.QuestHistoryRecord, error)
	// HasSubmitted is the fast-path duplicate check. The unique index on
	// (user_id, repo_url) is what actually enforces at-most-once.
	HasSubmitted(ctx context.Context, userID, repoURL string) (bool, error)
}

// QuestCompletion is everything an accepted submission writes.
//
// ExpectedXP is the XP the caller read before computing the award; the
// write only applies if the profile still holds it.
type QuestCompletion struct {
	UserID     string
	ExpectedXP int
	NewXP      int
	NewRank    model.Rank
	NextQuest  *model.Quest
	Record     model.QuestHistoryRecord
}

// SkillActivity is everything a completed skill activity writes.
type SkillActivity struct {
	UserID     string
	ExpectedXP int
	NewXP      int
	NewRank    model.Rank
	Skill      model.Skill
}

// ProgressRepository groups the multi-row writes that must be atomic to
// keep XP, rank, history and skills consistent.
type ProgressRepository interface {
	// Awaken creates the profile and writes skills in the same transaction,
	// replacing the levels of skills that already exist. Fails with
	// apperror.ErrConflict, writing nothing, if the profile already exists.
	Awaken(ctx context.Context, profile *model.Profile, skills []model.Skill) error
	// CompleteQuest appends the history record and applies the XP, rank and
	// next quest. Fails with apperror.ErrDuplicate when the repository URL
	// was already recorded and apperror.ErrConflict when the profile moved
	// underneath the caller. Nothing is written on failure.
	CompleteQuest(ctx context.Context, c QuestCompletion) error
	// CompleteSkillActivity saves the skill and applies the XP and rank.
	CompleteSkillActivity(ctx context.Context, a SkillActivity) error
}

// Store is the full storage surface.
type Store interface {
	UserRepository
	ProfileRepository
	SkillRepository
	QuestHistoryRepository
	ProgressRepository
}
