package model

import "time"

// Skill is a named competency for one user.
//
// BaseLevel comes from the most recent resume parse, EarnedXP accumulates
// from in-app activities and Level is derived from both
// (progression.FinalSkillLevel). 1 <= BaseLevel <= Level <= 10.
type Skill struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"skill_name"`
	BaseLevel int       `json:"base_level"`
	EarnedXP  int       `json:"earned_xp"`
	Level     int       `json:"level"`
	Levelable bool      `json:"is_levelable"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ParsedSkill is a skill level extracted from a resume.
type ParsedSkill struct {
	Name       string  `json:"name"`
	Level      int     `json:"level"`
	Confidence float64 `json:"confidence"`
}

// Challenge is a debugging dungeon puzzle. ExpectedOutput is never sent to
// clients before a successful attempt.
type Challenge struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	BuggyCode      string     `json:"buggy_code"`
	ExpectedOutput string     `json:"-"`
	Hint           string     `json:"hint"`
	Difficulty     Difficulty `json:"difficulty"`
	XPReward       int        `json:"xp_reward"`
}
