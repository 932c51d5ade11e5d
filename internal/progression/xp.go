package progression

import (
	"time"

	"github.com/sakif/shadow-rank/internal/model"
)

const (
	// QuestBaseXP is awarded for every accepted quest submission.
	QuestBaseXP = 50
	// RecencyBonusXP is added when the repository was pushed recently.
	RecencyBonusXP = 25
	// RecencyWindow is the trailing window for the recency bonus.
	RecencyWindow = 7 * 24 * time.Hour
)

// ProgressPercent returns how far xp is between rank r and the next rank,
// floored and clamped to [0, 100]. The terminal rank is always 100.
func ProgressPercent(xp int, r model.Rank) int {
	next, ok := NextRank(r)
	if !ok {
		return 100
	}
	lo, hi := thresholds[r], thresholds[next]
	// integer division floors for non-negative operands; clamp handles the rest
	pct := 100 * (xp - lo)
	if pct < 0 {
		return 0
	}
	return min(100, pct/(hi-lo))
}

// Gain is the result of applying an XP gain.
//
// NewRank is only set when RankedUp is true. Callers keep their current
// rank otherwise.
type Gain struct {
	NewTotal int
	RankedUp bool
	NewRank  *model.Rank
}

// ApplyXPGain adds gain to currentXP and reports whether the rank moved up.
// A non-positive gain changes nothing, even when currentXP and currentRank
// disagree.
func ApplyXPGain(currentXP int, currentRank model.Rank, gain int) Gain {
	if gain <= 0 {
		return Gain{NewTotal: currentXP}
	}
	total := currentXP + gain
	newRank := RankFromXP(total)
	if currentRank.Less(newRank) {
		return Gain{NewTotal: total, RankedUp: true, NewRank: &newRank}
	}
	return Gain{NewTotal: total}
}

// RankAfter resolves the rank a profile should hold after g.
func (g Gain) RankAfter(current model.Rank) model.Rank {
	if g.RankedUp && g.NewRank != nil {
		return *g.NewRank
	}
	return current
}

// QuestReward is the XP awarded for one accepted quest submission.
type QuestReward struct {
	Base         int
	RecencyBonus int
	Total        int
}

// QuestCompletionXP computes the reward for an accepted submission.
func QuestCompletionXP(recentlyPushed bool) QuestReward {
	r := QuestReward{Base: QuestBaseXP}
	if recentlyPushed {
		r.RecencyBonus = RecencyBonusXP
	}
	r.Total = r.Base + r.RecencyBonus
	return r
}

// IsRecentlyPushed reports whether pushedAt is strictly after now minus the
// recency window. Exactly seven days ago does not count.
func IsRecentlyPushed(pushedAt, now time.Time) bool {
	if pushedAt.IsZero() {
		return false
	}
	return pushedAt.After(now.Add(-RecencyWindow))
}
