package model

import "time"

// Difficulty of a quest or challenge.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Quest is a unit of externally verifiable work: a GitHub repository
// submission. The current quest on a profile is replaced wholesale on each
// completion; once snapshotted into history it never changes.
type Quest struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements"`
	XPReward     int        `json:"xp_reward"`
	SkillFocus   string     `json:"skill_focus"`
	Difficulty   Difficulty `json:"difficulty"`
	RepoURL      string     `json:"repo_url,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// QuestHistoryRecord is the append-only log of accepted submissions.
//
// (UserID, RepoURL) is unique: a canonical repository URL may be submitted
// at most once per user.
type QuestHistoryRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	QuestTitle       string    `json:"questTitle"`
	QuestDescription string    `json:"questDescription"`
	RepoURL          string    `json:"repoUrl"`
	XPEarned         int       `json:"xpEarned"`
	CompletedAt      time.Time `json:"completedAt"`
}

// RepositoryFact is what the repository fact source knows about a
// submitted repository. URL is the canonical form used for deduplication.
type RepositoryFact struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	URL         string    `json:"html_url"`
	PushedAt    time.Time `json:"pushed_at"`
	CreatedAt   time.Time `json:"created_at"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
}

// XPBreakdown reports how a quest reward was computed and what it did to
// the profile. NewRank is set only when RankUp is true.
type XPBreakdown struct {
	BaseXP       int   `json:"base_xp"`
	RecencyBonus int   `json:"recency_bonus"`
	TotalXP      int   `json:"total_xp"`
	NewTotal     int   `json:"new_total"`
	RankUp       bool  `json:"rank_up"`
	NewRank      *Rank `json:"new_rank,omitempty"`
}
