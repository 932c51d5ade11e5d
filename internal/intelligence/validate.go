package intelligence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/shadow-rank/internal/model"
)

// maxQuestXP bounds AI-proposed rewards so one quest cannot skip several
// ranks at once.
const maxQuestXP = 500

var (
	gapCurrentLevels     = []string{"none", "beginner", "intermediate", "advanced"}
	gapRecommendedLevels = []string{"beginner", "intermediate", "advanced", "expert"}
	gapPriorities        = []string{"low", "medium", "high"}
)

// awakeningOutput is the exact shape requested from the model.
type awakeningOutput struct {
	Rank          string           `json:"rank"`
	RankReasoning string           `json:"rank_reasoning"`
	Gaps          []model.SkillGap `json:"gaps"`
	Quest         *model.Quest     `json:"quest"`
	Message       string           `json:"message"`
}

type questOutput struct {
	Quest *model.Quest `json:"quest"`
}

func validateAwakening(out awakeningOutput) error {
	if !model.Rank(out.Rank).Valid() {
		return fmt.Errorf("rank %q is not one of E, D, C, B, A", out.Rank)
	}
	if strings.TrimSpace(out.RankReasoning) == "" {
		return errors.New("rank_reasoning is required")
	}
	if strings.TrimSpace(out.Message) == "" {
		return errors.New("message is required")
	}
	for i, g := range out.Gaps {
		if err := validateGap(g); err != nil {
			return fmt.Errorf("gaps[%d]: %w", i, err)
		}
	}
	if out.Quest == nil {
		return errors.New("quest is required")
	}
	return validateQuest(*out.Quest)
}

func validateQuestOutput(out questOutput) error {
	if out.Quest == nil {
		return errors.New("quest is required")
	}
	return validateQuest(*out.Quest)
}

func validateGap(g model.SkillGap) error {
	if strings.TrimSpace(g.Skill) == "" {
		return errors.New("skill is required")
	}
	if !oneOf(g.CurrentLevel, gapCurrentLevels) {
		return fmt.Errorf("current_level %q is invalid", g.CurrentLevel)
	}
	if !oneOf(g.RecommendedLevel, gapRecommendedLevels) {
		return fmt.Errorf("recommended_level %q is invalid", g.RecommendedLevel)
	}
	if !oneOf(g.Priority, gapPriorities) {
		return fmt.Errorf("priority %q is invalid", g.Priority)
	}
	return nil
}

func validateQuest(q model.Quest) error {
	if strings.TrimSpace(q.Title) == "" {
		return errors.New("quest.title is required")
	}
	if strings.TrimSpace(q.Description) == "" {
		return errors.New("quest.description is required")
	}
	if len(q.Requirements) == 0 {
		return errors.New("quest.requirements must not be empty")
	}
	for _, r := range q.Requirements {
		if strings.TrimSpace(r) == "" {
			return errors.New("quest.requirements must not contain blanks")
		}
	}
	if q.XPReward <= 0 || q.XPReward > maxQuestXP {
		return fmt.Errorf("quest.xp_reward %d out of range", q.XPReward)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("quest.difficulty %q is invalid", q.Difficulty)
	}
	if strings.TrimSpace(q.SkillFocus) == "" {
		return errors.New("quest.skill_focus is required")
	}
	return nil
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
