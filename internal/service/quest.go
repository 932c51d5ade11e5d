package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/github"
	"github.com/sakif/shadow-rank/internal/intelligence"
	"github.com/sakif/shadow-rank/internal/metrics"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
	"github.com/sakif/shadow-rank/internal/repository"
)

// RepositoryVerifier resolves a submitted URL to the canonical repository
// fact.
type RepositoryVerifier interface {
	VerifyRepository(ctx context.Context, rawURL string) (*model.RepositoryFact, error)
}

// QuestSource picks the next quest for a rank. It returns nil at the
// terminal rank and never fails.
type QuestSource interface {
	Next(ctx context.Context, qc intelligence.QuestContext) *model.Quest
}

// SubmitResult is everything an accepted submission reports back.
type SubmitResult struct {
	Repository *model.RepositoryFact `json:"repository"`
	XP         model.XPBreakdown     `json:"xp"`
	RankUp     bool                  `json:"rankUp"`
	Profile    *ProfileView          `json:"profile"`
}

// QuestService runs the quest lifecycle: submit, regenerate, history.
type QuestService struct {
	store    repository.Store
	verifier RepositoryVerifier
	quests   QuestSource
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewQuestService(
	store repository.Store,
	verifier RepositoryVerifier,
	quests QuestSource,
	m *metrics.Metrics,
	logger *slog.Logger,
) *QuestService {
	return &QuestService{
		store:    store,
		verifier: verifier,
		quests:   quests,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit verifies a repository, awards quest XP and moves the hunter to
// their next quest.
//
// Nothing is written unless every step succeeds. A repository URL counts
// once per hunter: the canonical URL reported by GitHub is the key, and the
// storage layer's unique index is the final word when two submissions race.
func (s *QuestService) Submit(ctx context.Context, userID, repoURL string) (*SubmitResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to submit a quest")
	}
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return nil, apperror.ValidationFailed("repoUrl", "repository URL is required")
	}
	if _, ok := github.ParseRepoURL(repoURL); !ok {
		return nil, apperror.ValidationFailed("repoUrl", "repository URL must look like https://github.com/owner/repo")
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/quest: fetching profile %s: %w", userID, err)
	}

	fact, err := s.verifier.VerifyRepository(ctx, repoURL)
	if err != nil {
		return nil, verificationError(repoURL, err)
	}
	canonical := fact.URL

	// Fast path for a friendly error; CompleteQuest enforces it for real.
	dup, err := s.store.HasSubmitted(ctx, userID, canonical)
	if err != nil {
		return nil, fmt.Errorf("service/quest: checking history %s: %w", userID, err)
	}
	if dup {
		s.metrics.DuplicateSubmission()
		return nil, apperror.DuplicateSubmission(canonical)
	}

	now := s.now().UTC()
	reward := progression.QuestCompletionXP(progression.IsRecentlyPushed(fact.PushedAt, now))

	var (
		gain      progression.Gain
		next      *model.Quest
		nextFor   model.Rank
		completed = profile.CurrentQuest
	)
	for attempt := 1; ; attempt++ {
		gain = progression.ApplyXPGain(profile.XP, profile.Rank, reward.Total)
		newRank := gain.RankAfter(profile.Rank)
		if nextFor != newRank {
			next = s.quests.Next(ctx, s.questContext(ctx, profile, newRank, completed))
			nextFor = newRank
		}

		record := model.QuestHistoryRecord{
			UserID:      userID,
			RepoURL:     canonical,
			XPEarned:    reward.Total,
			CompletedAt: now,
		}
		if completed != nil {
			record.QuestTitle = completed.Title
			record.QuestDescription = completed.Description
		}

		err = s.store.CompleteQuest(ctx, repository.QuestCompletion{
			UserID:     userID,
			ExpectedXP: profile.XP,
			NewXP:      gain.NewTotal,
			NewRank:    newRank,
			NextQuest:  next,
			Record:     record,
		})
		if err == nil {
			profile.XP = gain.NewTotal
			profile.Rank = newRank
			profile.CurrentQuest = next
			profile.UpdatedAt = now
			break
		}
		if errors.Is(err, apperror.ErrDuplicate) {
			s.metrics.DuplicateSubmission()
			return nil, err
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt == maxWriteAttempts {
			return nil, fmt.Errorf("service/quest: completing quest for %s: %w", userID, err)
		}

		s.logger.Debug("quest completion raced, retrying", slog.String("userID", userID), slog.Int("attempt", attempt))
		if profile, err = s.store.GetProfile(ctx, userID); err != nil {
			return nil, fmt.Errorf("service/quest: re-reading profile %s: %w", userID, err)
		}
		// The concurrent write may have moved the hunter to another quest.
		if !sameQuest(completed, profile.CurrentQuest) {
			completed = profile.CurrentQuest
			nextFor = ""
		}
	}

	s.metrics.QuestCompleted()
	breakdown := model.XPBreakdown{
		BaseXP:       reward.Base,
		RecencyBonus: reward.RecencyBonus,
		TotalXP:      reward.Total,
		NewTotal:     gain.NewTotal,
		RankUp:       gain.RankedUp,
		NewRank:      gain.NewRank,
	}
	if gain.RankedUp {
		s.metrics.RankUp(string(profile.Rank))
	}

	s.logger.Info("quest completed",
		slog.String("userID", userID),
		slog.String("repoURL", canonical),
		slog.Int("xp", profile.XP),
		slog.String("rank", string(profile.Rank)),
		slog.Bool("rankUp", gain.RankedUp),
	)

	return &SubmitResult{
		Repository: fact,
		XP:         breakdown,
		RankUp:     gain.RankedUp,
		Profile:    newProfileView(profile),
	}, nil
}

func sameQuest(a, b *model.Quest) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Title == b.Title
}

// Regenerate replaces the current quest with a fresh one for the hunter's
// rank. At the terminal rank the quest slot is cleared.
func (s *QuestService) Regenerate(ctx context.Context, userID string) (*model.Quest, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to generate a quest")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/quest: fetching profile %s: %w", userID, err)
	}

	quest := s.quests.Next(ctx, s.questContext(ctx, profile, profile.Rank, nil))
	if err := s.store.SetCurrentQuest(ctx, userID, quest); err != nil {
		return nil, fmt.Errorf("service/quest: saving quest for %s: %w", userID, err)
	}
	return quest, nil
}

// History lists accepted submissions, newest first.
func (s *QuestService) History(ctx context.Context, userID string, limit, offset int) ([]model.QuestHistoryRecord, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to view quest history")
	}
	records, err := s.store.ListHistory(ctx, userID, clampList(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("service/quest: listing history %s: %w", userID, err)
	}
	return records, nil
}

// questContext gathers what quest generation may use. Lookups are best
// effort: a missing piece only makes the prompt less specific.
func (s *QuestService) questContext(ctx context.Context, p *model.Profile, rank model.Rank, justCompleted *model.Quest) intelligence.QuestContext {
	qc := intelligence.QuestContext{Rank: rank}
	if p.Goal != nil {
		qc.Goal = *p.Goal
	}

	history, err := s.store.ListHistory(ctx, p.UserID, repository.ListOptions{Limit: 10})
	if err != nil {
		s.logger.Warn("quest context: history unavailable", slog.String("userID", p.UserID), slog.String("error", err.Error()))
	}
	for _, h := range history {
		if h.QuestTitle != "" {
			qc.CompletedTitles = append(qc.CompletedTitles, h.QuestTitle)
		}
	}
	if justCompleted != nil && justCompleted.Title != "" {
		qc.CompletedTitles = append([]string{justCompleted.Title}, qc.CompletedTitles...)
	}

	skills, err := s.store.ListSkills(ctx, p.UserID)
	if err != nil {
		s.logger.Warn("quest context: skills unavailable", slog.String("userID", p.UserID), slog.String("error", err.Error()))
	}
	qc.Skills = skills
	return qc
}

// verificationError maps repository fact source failures to the error
// taxonomy. Only outages are retryable.
func verificationError(repoURL string, err error) error {
	switch {
	case errors.Is(err, github.ErrInvalidURL):
		return apperror.ValidationFailed("repoUrl", "repository URL must look like https://github.com/owner/repo")
	case errors.Is(err, github.ErrNotFound):
		return apperror.VerificationFailed(fmt.Sprintf("repository %s was not found or is private; submit a public repository", repoURL))
	case errors.Is(err, github.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return apperror.Unavailable("GitHub", err)
	default:
		return fmt.Errorf("service/quest: verifying %s: %w", repoURL, err)
	}
}
