package progression

import (
	"strings"

	"github.com/sakif/shadow-rank/internal/model"
)

const (
	MinSkillLevel = 1
	MaxSkillLevel = 10
	// XPPerSkillLevel is how much activity XP buys one bonus level.
	XPPerSkillLevel = 100
	// MaxChallengeXP caps a single skill-activity reward.
	MaxChallengeXP = 100
)

// Canonical skill names.
const (
	SkillFrontend     = "Frontend"
	SkillBackend      = "Backend"
	SkillDebugging    = "Debugging"
	SkillDevOps       = "DevOps"
	SkillTesting      = "Testing"
	SkillDatabase     = "Database"
	SkillSystemDesign = "System Design"
)

// SkillNames is the canonical skill-name set in display order.
var SkillNames = []string{
	SkillFrontend,
	SkillBackend,
	SkillDebugging,
	SkillDevOps,
	SkillTesting,
	SkillDatabase,
	SkillSystemDesign,
}

// DefaultLevelable are the skills that earn XP from in-app activity when
// nothing else is configured.
var DefaultLevelable = []string{SkillDebugging}

// CanonicalSkill returns the canonical spelling of name (case-insensitive).
func CanonicalSkill(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, s := range SkillNames {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// ClampLevel forces level into [MinSkillLevel, MaxSkillLevel].
func ClampLevel(level int) int {
	return max(MinSkillLevel, min(MaxSkillLevel, level))
}

// FinalSkillLevel derives a skill's level from its resume base level and
// earned activity XP: base + floor(earned/100), clamped to [1, 10].
func FinalSkillLevel(baseLevel, earnedXP int) int {
	if earnedXP < 0 {
		earnedXP = 0
	}
	return ClampLevel(baseLevel + earnedXP/XPPerSkillLevel)
}

// MergeSkills combines a fresh resume parse with the user's persisted skills.
//
// For every parsed skill, an existing skill with the same name keeps its
// earned XP and gets the new base level. Existing skills missing from the
// parse are returned unchanged. The result is ordered: parsed skills first
// (in parse order), then untouched existing skills.
func MergeSkills(userID string, existing []model.Skill, parsed []model.ParsedSkill, levelable map[string]bool) []model.Skill {
	byName := make(map[string]model.Skill, len(existing))
	for _, s := range existing {
		byName[s.Name] = s
	}

	merged := make([]model.Skill, 0, len(existing)+len(parsed))
	seen := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true

		s, ok := byName[p.Name]
		if !ok {
			s = model.Skill{UserID: userID, Name: p.Name}
		}
		s.BaseLevel = ClampLevel(p.Level)
		s.Level = FinalSkillLevel(s.BaseLevel, s.EarnedXP)
		s.Levelable = levelable[s.Name]
		merged = append(merged, s)
	}

	for _, s := range existing {
		if !seen[s.Name] {
			merged = append(merged, s)
		}
	}
	return merged
}

// AddSkillXP returns s with xp added to its earned XP and its level
// recomputed. A new skill starts at base level 1.
func AddSkillXP(s model.Skill, xp int) model.Skill {
	if s.BaseLevel < MinSkillLevel {
		s.BaseLevel = MinSkillLevel
	}
	if xp > 0 {
		s.EarnedXP += xp
	}
	s.Level = FinalSkillLevel(s.BaseLevel, s.EarnedXP)
	return s
}

// LevelableSet turns a list of skill names into a lookup set of canonical
// names. Unknown names are kept verbatim.
func LevelableSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if c, ok := CanonicalSkill(n); ok {
			set[c] = true
		} else if n = strings.TrimSpace(n); n != "" {
			set[n] = true
		}
	}
	return set
}
