package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository"
	"github.com/sakif/shadow-rank/internal/resume"
)

// ProfileFetcher builds profile facts from a public GitHub account.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, username string) (*model.ResumeData, error)
}

// Assessor produces the initial assessment. It never fails: AI problems
// are replaced by a deterministic fallback.
type Assessor interface {
	Awaken(ctx context.Context, data model.ResumeData) model.AwakeningResult
}

// AwakenInput carries exactly one source of profile facts.
type AwakenInput struct {
	ResumeText     string `json:"resumeText"`
	GitHubUsername string `json:"githubUsername"`
}

// AwakenOutcome is returned by a successful awakening.
type AwakenOutcome struct {
	Result  model.AwakeningResult `json:"result"`
	Profile *ProfileView          `json:"profile"`
	Skills  []model.Skill         `json:"skills"`
}

// AwakeningService bootstraps a new hunter.
type AwakeningService struct {
	store     repository.Store
	fetcher   ProfileFetcher
	assessor  Assessor
	levelable map[string]bool
	logger    *slog.Logger
}

func NewAwakeningService(
	store repository.Store,
	fetcher ProfileFetcher,
	assessor Assessor,
	levelable map[string]bool,
	logger *slog.Logger,
) *AwakeningService {
	return &AwakeningService{
		store:     store,
		fetcher:   fetcher,
		assessor:  assessor,
		levelable: levelable,
		logger:    logger,
	}
}

// Awaken assesses the hunter, creates their profile with an initial rank
// and quest, and bootstraps the Debugging skill.
//
// A profile is created once: awakening an existing profile fails with
// apperror.ErrConflict so XP can never be reset.
func (s *AwakeningService) Awaken(ctx context.Context, userID string, in AwakenInput) (*AwakenOutcome, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to awaken")
	}

	text := in.ResumeText
	username := strings.TrimSpace(in.GitHubUsername)
	hasResume := !resume.Empty(text)
	switch {
	case hasResume && username != "":
		return nil, apperror.ValidationFailed("resumeText", "provide either resume text or a GitHub username, not both")
	case !hasResume && username == "":
		return nil, apperror.ValidationFailed("resumeText", "resume text or a GitHub username is required")
	case len(text) > resume.MaxTextBytes:
		return nil, apperror.ValidationFailed("resumeText", fmt.Sprintf("resume text must be at most %d bytes", resume.MaxTextBytes))
	}

	// Fast path; the profile insert below is what actually enforces it.
	if _, err := s.store.GetProfile(ctx, userID); err == nil {
		return nil, apperror.Conflict("profile", userID)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/awakening: checking profile %s: %w", userID, err)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/awakening: fetching user %s: %w", userID, err)
	}

	var (
		data   model.ResumeData
		parsed []model.ParsedSkill
	)
	if hasResume {
		data, parsed = resume.Parse(text)
	} else {
		fetched, err := s.fetcher.FetchProfile(ctx, username)
		if err != nil {
			return nil, githubProfileError(username, err)
		}
		data = *fetched
	}

	result := s.assessor.Awaken(ctx, data)

	profile := &model.Profile{
		UserID:    userID,
		Username:  user.Login,
		AvatarURL: user.AvatarURL,
		Rank:      result.Rank,
		// Seeded at the rank's threshold so rank == RankFromXP(xp) holds
		// from the first write.
		XP:           progression.Threshold(result.Rank),
		CurrentQuest: &result.Quest,
		ResumeData:   &data,
	}

	skills, err := s.initialSkills(ctx, userID, parsed)
	if err != nil {
		return nil, err
	}
	if err := s.store.Awaken(ctx, profile, skills); err != nil {
		return nil, fmt.Errorf("service/awakening: creating profile %s: %w", userID, err)
	}

	s.logger.Info("hunter awakened",
		slog.String("userID", userID),
		slog.String("rank", string(profile.Rank)),
		slog.Int("xp", profile.XP),
		slog.String("source", string(data.Source)),
	)

	skills, err = s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/awakening: listing skills %s: %w", userID, err)
	}

	return &AwakenOutcome{
		Result:  result,
		Profile: newProfileView(profile),
		Skills:  skills,
	}, nil
}

// initialSkills merges the resume parse into whatever skills the hunter
// already has and adds the Debugging bootstrap when it is missing. The
// result is written together with the profile.
func (s *AwakeningService) initialSkills(ctx context.Context, userID string, parsed []model.ParsedSkill) ([]model.Skill, error) {
	existing, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/awakening: listing skills %s: %w", userID, err)
	}
	merged := progression.MergeSkills(userID, existing, parsed, s.levelable)
	for _, sk := range merged {
		if sk.Name == progression.SkillDebugging {
			return merged, nil
		}
	}
	return append(merged, model.Skill{
		UserID:    userID,
		Name:      progression.SkillDebugging,
		BaseLevel: progression.MinSkillLevel,
		Level:     progression.MinSkillLevel,
		Levelable: s.levelable[progression.SkillDebugging],
	}), nil
}

// githubProfileError maps profile-fetch failures to the error taxonomy.
func githubProfileError(username string, err error) error {
	switch {
	case errors.Is(err, github.ErrNotFound):
		return apperror.ValidationFailed("githubUsername", fmt.Sprintf("GitHub user %q was not found", username))
	case errors.Is(err, github.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return apperror.Unavailable("GitHub", err)
	default:
		return fmt.Errorf("service/awakening: fetching GitHub profile %s: %w", username, err)
	}
}
