package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/challenge"
	"github.com/sakif/shadow-rank/internal/executor"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/progression"
)

// MaxSolutionBytes bounds submitted challenge code.
const MaxSolutionBytes = 16 << 10

// AttemptResult is the outcome of running a challenge solution.
//
// Expected is only filled in on a pass, so clients never see the answer
// before they earn it.
type AttemptResult struct {
	Passed   bool                 `json:"passed"`
	Result   string               `json:"result"`
	Output   string               `json:"output"`
	Stderr   string               `json:"stderr,omitempty"`
	TimedOut bool                 `json:"timedOut"`
	Duration time.Duration        `json:"duration"`
	Expected string               `json:"expected,omitempty"`
	Reward   *SkillActivityResult `json:"reward,omitempty"`
}

// ChallengeService serves the debugging dungeon.
type ChallengeService struct {
	exec   executor.Executor
	skills *SkillService
	rng    *rand.Rand
	logger *slog.Logger
}

// NewChallengeService wires the dungeon. rng may be nil for the global
// source.
func NewChallengeService(exec executor.Executor, skills *SkillService, rng *rand.Rand, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{exec: exec, skills: skills, rng: rng, logger: logger}
}

// Random picks a challenge the caller has not just seen.
func (s *ChallengeService) Random(exclude []string) model.Challenge {
	return challenge.Random(exclude, s.rng)
}

func (s *ChallengeService) ByID(id string) (model.Challenge, error) {
	c, ok := challenge.ByID(id)
	if !ok {
		return model.Challenge{}, apperror.NotFound("challenge", id)
	}
	return c, nil
}

// Attempt runs code in the sandbox and compares its return value with the
// challenge's expected output. A pass credits the challenge XP to the
// Debugging skill (and to the hunter's total) when Debugging is levelable.
func (s *ChallengeService) Attempt(ctx context.Context, userID, id, code string) (*AttemptResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to attempt a challenge")
	}
	c, err := s.ByID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > MaxSolutionBytes {
		return nil, apperror.ValidationFailed("code", fmt.Sprintf("code must be at most %d bytes", MaxSolutionBytes))
	}

	res, err := s.exec.Execute(ctx, executor.ExecutionRequest{Code: challenge.Harness(code)})
	if err != nil {
		if errors.Is(err, executor.ErrDisabled) {
			return nil, apperror.Unavailable("code execution", err)
		}
		return nil, fmt.Errorf("service/challenge: executing %s: %w", id, err)
	}

	value, ok := challenge.ReturnValue(res.Stdout)
	out := &AttemptResult{
		Result:   value,
		Output:   challenge.ConsoleOutput(res.Stdout),
		Stderr:   res.Stderr,
		TimedOut: res.TimedOut(),
		Duration: res.Duration,
	}
	out.Passed = ok && !out.TimedOut && res.ExitCode == 0 && challenge.Matches(c.ExpectedOutput, value)

	s.logger.Info("challenge attempted",
		slog.String("userID", userID),
		slog.String("challenge", id),
		slog.Bool("passed", out.Passed),
		slog.Int("exitCode", res.ExitCode),
	)
	if !out.Passed {
		return out, nil
	}

	out.Expected = c.ExpectedOutput
	if !s.skills.Levelable(progression.SkillDebugging) {
		return out, nil
	}
	reward, err := s.skills.CompleteChallenge(ctx, userID, progression.SkillDebugging, c.XPReward)
	if err != nil {
		return nil, fmt.Errorf("service/challenge: awarding %s: %w", id, err)
	}
	out.Reward = reward
	return out, nil
}
