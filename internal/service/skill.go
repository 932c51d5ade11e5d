package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository"
	"github.com/sakif/shadow-rank/internal/resume"
)

// SkillActivityResult reports a completed skill activity.
type SkillActivityResult struct {
	Skill    model.Skill  `json:"skill"`
	XPGained int          `json:"xpGained"`
	RankUp   bool         `json:"rankUp"`
	NewRank  *model.Rank  `json:"newRank,omitempty"`
	Profile  *ProfileView `json:"profile"`
}

// ResumeResult is the outcome of applying a resume to the skill set.
type ResumeResult struct {
	Resume model.ResumeData    `json:"resume"`
	Parsed []model.ParsedSkill `json:"parsed"`
	Skills []model.Skill       `json:"skills"`
}

// SkillService manages per-user skills.
type SkillService struct {
	store     repository.Store
	levelable map[string]bool
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewSkillService(store repository.Store, levelable map[string]bool, m *metrics.Metrics, logger *slog.Logger) *SkillService {
	return &SkillService{store: store, levelable: levelable, metrics: m, logger: logger}
}

// Levelable reports whether name earns XP from in-app activities.
func (s *SkillService) Levelable(name string) bool {
	return s.levelable[name]
}

func (s *SkillService) List(ctx context.Context, userID string) ([]model.Skill, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to view skills")
	}
	skills, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/skill: listing skills %s: %w", userID, err)
	}
	return skills, nil
}

// ApplyResume re-parses resume text and merges it into the skill set.
// Earned XP always survives; skills the new resume does not mention are
// left alone.
func (s *SkillService) ApplyResume(ctx context.Context, userID, text string) (*ResumeResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to upload a resume")
	}
	if resume.Empty(text) {
		return nil, apperror.ValidationFailed("resumeText", "resume text is required")
	}
	if len(text) > resume.MaxTextBytes {
		return nil, apperror.ValidationFailed("resumeText", fmt.Sprintf("resume text must be at most %d bytes", resume.MaxTextBytes))
	}

	data, parsed := resume.Parse(text)

	existing, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/skill: listing skills %s: %w", userID, err)
	}
	merged := progression.MergeSkills(userID, existing, parsed, s.levelable)
	if err := s.store.SaveSkills(ctx, userID, merged); err != nil {
		return nil, fmt.Errorf("service/skill: saving skills %s: %w", userID, err)
	}

	// Hunters may upload a resume before awakening; there is no profile to
	// attach it to yet.
	if err := s.store.SetResumeData(ctx, userID, &data); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/skill: saving resume data %s: %w", userID, err)
	}

	skills, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/skill: listing skills %s: %w", userID, err)
	}

	s.logger.Info("resume applied",
		slog.String("userID", userID),
		slog.Int("parsed", len(parsed)),
		slog.Int("skills", len(skills)),
	)
	if parsed == nil {
		parsed = []model.ParsedSkill{}
	}
	return &ResumeResult{Resume: data, Parsed: parsed, Skills: skills}, nil
}

// CompleteChallenge credits xpReward to a levelable skill and to the
// hunter's cumulative XP, which may rank them up. The current quest is not
// touched.
func (s *SkillService) CompleteChallenge(ctx context.Context, userID, skillName string, xpReward int) (*SkillActivityResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to complete a challenge")
	}
	name, ok := progression.CanonicalSkill(skillName)
	if !ok {
		return nil, apperror.ValidationFailed("skill", fmt.Sprintf("unknown skill %q", skillName))
	}
	if !s.levelable[name] {
		return nil, apperror.ValidationFailed("skill", fmt.Sprintf("%s cannot be leveled through activities", name))
	}
	if xpReward < 1 || xpReward > progression.MaxChallengeXP {
		return nil, apperror.ValidationFailed("xpReward", fmt.Sprintf("xp reward must be between 1 and %d", progression.MaxChallengeXP))
	}

	for attempt := 1; ; attempt++ {
		profile, err := s.store.GetProfile(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("service/skill: fetching profile %s: %w", userID, err)
		}

		current, err := s.store.GetSkill(ctx, userID, name)
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			current = &model.Skill{UserID: userID, Name: name}
		case err != nil:
			return nil, fmt.Errorf("service/skill: fetching skill %s for %s: %w", name, userID, err)
		}
		current.Levelable = true
		updated := progression.AddSkillXP(*current, xpReward)

		gain := progression.ApplyXPGain(profile.XP, profile.Rank, xpReward)
		newRank := gain.RankAfter(profile.Rank)

		err = s.store.CompleteSkillActivity(ctx, repository.SkillActivity{
			UserID:     userID,
			ExpectedXP: profile.XP,
			NewXP:      gain.NewTotal,
			NewRank:    newRank,
			Skill:      updated,
		})
		if errors.Is(err, apperror.ErrConflict) && attempt < maxWriteAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("service/skill: saving activity for %s: %w", userID, err)
		}

		profile.XP = gain.NewTotal
		profile.Rank = newRank
		s.metrics.SkillActivity(name)
		if gain.RankedUp {
			s.metrics.RankUp(string(newRank))
		}
		s.logger.Info("skill activity completed",
			slog.String("userID", userID),
			slog.String("skill", name),
			slog.Int("skillLevel", updated.Level),
			slog.Int("xp", profile.XP),
			slog.String("rank", string(profile.Rank)),
		)

		return &SkillActivityResult{
			Skill:    updated,
			XPGained: xpReward,
			RankUp:   gain.RankedUp,
			NewRank:  gain.NewRank,
			Profile:  newProfileView(profile),
		}, nil
	}
}
