package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/model"
)

func TestFinalSkillLevel(t *testing.T) {
	tests := []struct {
		base, earned, want int
	}{
		{6, 250, 8},
		{9, 500, 10},
		{1, 0, 1},
		{1, 99, 1},
		{1, 100, 2},
		{0, 0, 1},
		{10, 0, 10},
		{12, 0, 10},
		{3, -50, 3},
	}

	for _, tt := range tests {
		got := FinalSkillLevel(tt.base, tt.earned)
		assert.Equal(t, tt.want, got, "FinalSkillLevel(%d, %d)", tt.base, tt.earned)
	}
}

func TestFinalSkillLevelNeverBelowBase(t *testing.T) {
	for base := 1; base <= 10; base++ {
		for earned := 0; earned <= 2000; earned += 37 {
			lvl := FinalSkillLevel(base, earned)
			assert.GreaterOrEqual(t, lvl, base)
			assert.LessOrEqual(t, lvl, MaxSkillLevel)
		}
	}
}

func TestMergeSkillsPreservesEarnedXP(t *testing.T) {
	existing := []model.Skill{
		{ID: "s1", UserID: "u1", Name: "Debugging", BaseLevel: 5, EarnedXP: 120, Level: 6},
		{ID: "s2", UserID: "u1", Name: "Database", BaseLevel: 7, EarnedXP: 0, Level: 7},
	}
	parsed := []model.ParsedSkill{
		{Name: "Debugging", Level: 3},
		{Name: "Frontend", Level: 4},
	}

	merged := MergeSkills("u1", existing, parsed, LevelableSet(DefaultLevelable))
	require.Len(t, merged, 3)

	debugging := merged[0]
	assert.Equal(t, "s1", debugging.ID)
	assert.Equal(t, 3, debugging.BaseLevel)
	assert.Equal(t, 120, debugging.EarnedXP)
	assert.Equal(t, 4, debugging.Level)
	assert.True(t, debugging.Levelable)

	frontend := merged[1]
	assert.Equal(t, "Frontend", frontend.Name)
	assert.Equal(t, "u1", frontend.UserID)
	assert.Equal(t, 4, frontend.BaseLevel)
	assert.Equal(t, 0, frontend.EarnedXP)
	assert.False(t, frontend.Levelable)

	// absent from the parse: untouched
	assert.Equal(t, existing[1], merged[2])
}

func TestMergeSkillsClampsParsedLevels(t *testing.T) {
	merged := MergeSkills("u1", nil, []model.ParsedSkill{
		{Name: "Backend", Level: 0},
		{Name: "DevOps", Level: 42},
		{Name: "Backend", Level: 9},
	}, nil)

	require.Len(t, merged, 2)
	assert.Equal(t, 1, merged[0].BaseLevel)
	assert.Equal(t, 10, merged[1].BaseLevel)
}

func TestAddSkillXP(t *testing.T) {
	s := AddSkillXP(model.Skill{Name: "Debugging"}, 15)
	assert.Equal(t, 1, s.BaseLevel)
	assert.Equal(t, 15, s.EarnedXP)
	assert.Equal(t, 1, s.Level)

	s = AddSkillXP(model.Skill{Name: "Debugging", BaseLevel: 9, EarnedXP: 180}, 20)
	assert.Equal(t, 200, s.EarnedXP)
	assert.Equal(t, 10, s.Level)

	s = AddSkillXP(s, 5000)
	assert.Equal(t, 10, s.Level)
}

func TestCanonicalSkill(t *testing.T) {
	name, ok := CanonicalSkill("  system design ")
	assert.True(t, ok)
	assert.Equal(t, "System Design", name)

	_, ok = CanonicalSkill("Cooking")
	assert.False(t, ok)
}

func TestLevelableSet(t *testing.T) {
	set := LevelableSet([]string{"debugging", "Testing", " ", "Custom"})
	assert.Equal(t, map[string]bool{"Debugging": true, "Testing": true, "Custom": true}, set)
}
