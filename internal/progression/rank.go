// Package progression holds the rank table, the XP engine and the skill
// leveling engine. Everything here is pure: no I/O, no clocks, no globals
// that change after init.
package progression

import "github.com/sakif/shadow-rank/internal/model"

// thresholds is the minimum cumulative XP needed to hold each rank.
// Strictly increasing in model.RankOrder.
var thresholds = map[model.Rank]int{
	model.RankE: 0,
	model.RankD: 100,
	model.RankC: 250,
	model.RankB: 500,
	model.RankA: 1000,
}

// Threshold returns the minimum XP for rank r. Unknown ranks return 0.
func Threshold(r model.Rank) int {
	return thresholds[r]
}

// RankFromXP returns the highest rank whose threshold is <= xp.
// Negative XP is treated as 0. Boundaries are inclusive.
func RankFromXP(xp int) model.Rank {
	if xp < 0 {
		xp = 0
	}
	rank := model.RankOrder[0]
	for _, r := range model.RankOrder {
		if xp >= thresholds[r] {
			rank = r
		}
	}
	return rank
}

// NextRank returns the successor of r, or false when r is terminal.
func NextRank(r model.Rank) (model.Rank, bool) {
	i := r.Index()
	if i < 0 || i+1 >= len(model.RankOrder) {
		return "", false
	}
	return model.RankOrder[i+1], true
}

// XPToNextRank returns how much XP is still needed to reach the next rank,
// or 0 at the terminal rank.
func XPToNextRank(xp int, r model.Rank) int {
	next, ok := NextRank(r)
	if !ok {
		return 0
	}
	return max(0, thresholds[next]-xp)
}

// RankEntry is one row of the rank table.
type RankEntry struct {
	Rank      model.Rank `json:"rank"`
	Threshold int        `json:"threshold"`
}

// Table returns the rank table in rank order.
func Table() []RankEntry {
	table := make([]RankEntry, 0, len(model.RankOrder))
	for _, r := range model.RankOrder {
		table = append(table, RankEntry{Rank: r, Threshold: thresholds[r]})
	}
	return table
}

// Progress builds the read-only progress view for a profile.
func Progress(xp int, r model.Rank) model.Progress {
	p := model.Progress{
		Percent:   ProgressPercent(xp, r),
		XPToNext:  XPToNextRank(xp, r),
		Threshold: Threshold(r),
	}
	if next, ok := NextRank(r); ok {
		p.NextRank = &next
	}
	return p
}
