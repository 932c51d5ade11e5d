package model

import "time"

// Profile is a hunter's progression state: the UserProgress entity.
//
// Invariant: Rank == progression.RankFromXP(XP) after every mutation.
// XP never decreases over the profile's lifetime.
//
// CurrentQuest is nil before a new quest is assigned at the terminal rank
// (the Completed state). Goal is advisory context for quest generation.
type Profile struct {
	UserID       string      `json:"userId"`
	Username     string      `json:"username"`
	AvatarURL    string      `json:"avatarUrl,omitempty"`
	Rank         Rank        `json:"rank"`
	XP           int         `json:"xp"`
	CurrentQuest *Quest      `json:"currentQuest"`
	Goal         *string     `json:"goal"`
	ResumeData   *ResumeData `json:"resumeData,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Progress is the read-only view of where a profile sits between ranks.
type Progress struct {
	Percent   int   `json:"percent"`
	NextRank  *Rank `json:"nextRank"`
	XPToNext  int   `json:"xpToNext"`
	Threshold int   `json:"threshold"`
}
