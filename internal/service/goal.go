package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/repository"
)

// MaxGoalLength is counted in runes after trimming.
const MaxGoalLength = 500

// GoalService manages the hunter's free-text career goal, which only
// steers quest generation.
type GoalService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

func NewGoalService(profiles repository.ProfileRepository, logger *slog.Logger) *GoalService {
	return &GoalService{profiles: profiles, logger: logger}
}

// Get returns nil when no goal is set.
func (s *GoalService) Get(ctx context.Context, userID string) (*string, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to view your goal")
	}
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/goal: fetching profile %s: %w", userID, err)
	}
	return p.Goal, nil
}

func (s *GoalService) Set(ctx context.Context, userID, goal string) (string, error) {
	if userID == "" {
		return "", apperror.Unauthorized("sign in to set a goal")
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", apperror.ValidationFailed("goal", "goal is required")
	}
	if utf8.RuneCountInString(goal) > MaxGoalLength {
		return "", apperror.ValidationFailed("goal", fmt.Sprintf("goal must be at most %d characters", MaxGoalLength))
	}

	if err := s.profiles.SetGoal(ctx, userID, &goal); err != nil {
		return "", fmt.Errorf("service/goal: saving goal %s: %w", userID, err)
	}
	s.logger.Info("goal set", slog.String("userID", userID))
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("sign in to clear your goal")
	}
	if err := s.profiles.SetGoal(ctx, userID, nil); err != nil {
		return fmt.Errorf("service/goal: clearing goal %s: %w", userID, err)
	}
	return nil
}
