package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shadow-rank/internal/model"
)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name string
		xp   int
		rank model.Rank
		want int
	}{
		{"zero at E", 0, model.RankE, 0},
		{"half way at E", 50, model.RankE, 50},
		{"terminal is always 100", 1000, model.RankA, 100},
		{"terminal ignores xp", 5, model.RankA, 100},
		{"floors", 175, model.RankD, 50},
		{"below threshold clamps to 0", 50, model.RankD, 0},
		{"above next threshold clamps to 100", 400, model.RankD, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercent(tt.xp, tt.rank))
		})
	}
}

func TestApplyXPGainZeroIsNoop(t *testing.T) {
	for _, r := range model.RankOrder {
		for _, xp := range []int{0, 99, 100, 500, 1000, 4242} {
			g := ApplyXPGain(xp, r, 0)
			assert.Equal(t, xp, g.NewTotal)
			assert.False(t, g.RankedUp)
			assert.Nil(t, g.NewRank)
		}
	}
}

func TestApplyXPGain(t *testing.T) {
	tests := []struct {
		name      string
		xp        int
		rank      model.Rank
		gain      int
		wantTotal int
		wantUp    bool
		wantRank  model.Rank
	}{
		{"E to D", 75, model.RankE, 50, 125, true, model.RankD},
		{"B to A", 950, model.RankB, 100, 1050, true, model.RankA},
		{"already terminal", 1000, model.RankA, 50, 1050, false, ""},
		{"stays within rank", 0, model.RankE, 75, 75, false, ""},
		{"exact boundary ranks up", 50, model.RankE, 50, 100, true, model.RankD},
		{"skips ranks", 0, model.RankE, 600, 600, true, model.RankB},
		{"negative gain ignored", 300, model.RankC, -100, 300, false, ""},
		{"zero gain on a lagging rank", 500, model.RankE, 0, 500, false, ""},
		{"negative gain on a lagging rank", 1200, model.RankD, -5, 1200, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ApplyXPGain(tt.xp, tt.rank, tt.gain)
			assert.Equal(t, tt.wantTotal, g.NewTotal)
			assert.Equal(t, tt.wantUp, g.RankedUp)
			if tt.wantUp {
				require.NotNil(t, g.NewRank)
				assert.Equal(t, tt.wantRank, *g.NewRank)
			} else {
				assert.Nil(t, g.NewRank)
			}
			// invariant: the rank held after the gain always matches the XP
			assert.Equal(t, RankFromXP(g.NewTotal), g.RankAfter(RankFromXP(tt.xp)))
		})
	}
}

func TestQuestCompletionXP(t *testing.T) {
	assert.Equal(t, QuestReward{Base: 50, RecencyBonus: 25, Total: 75}, QuestCompletionXP(true))
	assert.Equal(t, QuestReward{Base: 50, RecencyBonus: 0, Total: 50}, QuestCompletionXP(false))
}

func TestIsRecentlyPushed(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		pushedAt time.Time
		want     bool
	}{
		{"seven days and one second ago", now.Add(-7*24*time.Hour - time.Second), false},
		{"exactly seven days ago", now.Add(-7 * 24 * time.Hour), false},
		{"six days 23 hours ago", now.Add(-6*24*time.Hour - 23*time.Hour), true},
		{"two days ago", now.Add(-48 * time.Hour), true},
		{"ten days ago", now.Add(-240 * time.Hour), false},
		{"zero time", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecentlyPushed(tt.pushedAt, now))
		})
	}
}

func TestQuestScenario(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	xp, rank := 0, model.RankE

	first := QuestCompletionXP(IsRecentlyPushed(now.Add(-48*time.Hour), now))
	assert.Equal(t, 25, first.RecencyBonus)
	assert.Equal(t, 75, first.Total)
	g := ApplyXPGain(xp, rank, first.Total)
	xp, rank = g.NewTotal, g.RankAfter(rank)
	assert.Equal(t, 75, xp)
	assert.Equal(t, model.RankE, rank)
	assert.False(t, g.RankedUp)

	second := QuestCompletionXP(IsRecentlyPushed(now.Add(-240*time.Hour), now))
	assert.Equal(t, 0, second.RecencyBonus)
	assert.Equal(t, 50, second.Total)
	g = ApplyXPGain(xp, rank, second.Total)
	assert.Equal(t, 125, g.NewTotal)
	assert.True(t, g.RankedUp)
	assert.Equal(t, model.RankD, g.RankAfter(rank))
}
