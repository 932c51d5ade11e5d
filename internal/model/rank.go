package model

import "fmt"

// Rank is a hunter's overall progression tier.
//
// Ranks are totally ordered E < D < C < B < A. Comparisons always go through
// Index, never through the letters themselves.
type Rank string

const (
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
)

// RankOrder lists every rank from lowest to highest.
var RankOrder = []Rank{RankE, RankD, RankC, RankB, RankA}

// Index returns the rank's position in RankOrder, or -1 for an unknown rank.
func (r Rank) Index() int {
	for i, candidate := range RankOrder {
		if candidate == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the known ranks.
func (r Rank) Valid() bool {
	return r.Index() >= 0
}

// Less reports whether r is strictly below other in rank order.
func (r Rank) Less(other Rank) bool {
	return r.Index() < other.Index()
}

// Terminal reports whether r is the highest rank.
func (r Rank) Terminal() bool {
	return r == RankOrder[len(RankOrder)-1]
}

// ParseRank converts a user- or AI-supplied label into a Rank.
func ParseRank(s string) (Rank, error) {
	r := Rank(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rank %q", s)
	}
	return r, nil
}
