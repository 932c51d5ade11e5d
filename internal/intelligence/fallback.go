package intelligence

import (
	"github.com/sakif/shadow-rank/internal/model"
)

// fallbackQuests is the single table of deterministic quests, one per
// non-terminal rank. Both awakening and quest rotation read from it.
var fallbackQuests = map[model.Rank]model.Quest{
	model.RankE: {
		ID:          "quest-e-rank",
		Title:       "First Gate: Build Your Foundation",
		Description: "Create a simple full-stack application that demonstrates your coding abilities. This could be a todo app, blog, or any project that shows clean code structure and basic CRUD operations.",
		Requirements: []string{
			"Create a public GitHub repository",
			"Include a README with setup instructions",
			"Implement at least one API endpoint",
			"Add basic error handling",
		},
		XPReward:   50,
		SkillFocus: "Full-Stack Development",
		Difficulty: model.DifficultyEasy,
	},
	model.RankD: {
		ID:          "quest-d-rank",
		Title:       "The Second Gate: Strengthen Your Arsenal",
		Description: "Build a more complex project that demonstrates multiple skills. Include user authentication, data persistence, and a polished UI.",
		Requirements: []string{
			"Implement user authentication",
			"Add database integration",
			"Create a responsive design",
			"Write comprehensive README",
		},
		XPReward:   75,
		SkillFocus: "Full-Stack Development",
		Difficulty: model.DifficultyMedium,
	},
	model.RankC: {
		ID:          "quest-c-rank",
		Title:       "Gate of Mastery: Build for Scale",
		Description: "Create a project that handles real-world complexity. Focus on clean architecture, testing, and performance optimization.",
		Requirements: []string{
			"Implement proper error handling",
			"Add unit tests",
			"Optimize for performance",
			"Document your architecture decisions",
		},
		XPReward:   100,
		SkillFocus: "Software Architecture",
		Difficulty: model.DifficultyMedium,
	},
	model.RankB: {
		ID:          "quest-b-rank",
		Title:       "Elite Challenge: Lead the Way",
		Description: "Contribute to open source or build a tool that helps other developers. Show leadership and community impact.",
		Requirements: []string{
			"Create or contribute to open source",
			"Write technical documentation",
			"Include contribution guidelines",
			"Engage with the community",
		},
		XPReward:   150,
		SkillFocus: "Technical Leadership",
		Difficulty: model.DifficultyHard,
	},
}

// FallbackQuest returns a copy of the template quest for rank, or nil at
// the terminal rank. Calling it twice yields equal quests.
func FallbackQuest(rank model.Rank) *model.Quest {
	q, ok := fallbackQuests[rank]
	if !ok {
		return nil
	}
	q.Requirements = append([]string(nil), q.Requirements...)
	return &q
}

const (
	fallbackReasoning = "Unable to fully analyze your profile. Starting at base rank."
	fallbackMessage   = "Hunter, you have awakened! Though the system could not fully analyze your potential, your journey begins now. Complete your first quest to prove your worth."
)

// FallbackAwakening is the deterministic result used whenever the AI is
// unconfigured, fails, or returns something unusable.
func FallbackAwakening() model.AwakeningResult {
	return model.AwakeningResult{
		Rank:          model.RankE,
		RankReasoning: fallbackReasoning,
		Gaps: []model.SkillGap{
			{
				Skill:            "Portfolio Projects",
				CurrentLevel:     "none",
				RecommendedLevel: "intermediate",
				Priority:         "high",
			},
		},
		Quest:   *FallbackQuest(model.RankE),
		Message: fallbackMessage,
	}
}
