// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an authenticated account.
//
// Identity is delegated to GitHub OAuth, so the primary external identifier
// is the GitHub user ID. We still generate our own internal string ID (xid)
// and every other table (profiles, skills, quest_history) references it.
//
// Login doubles as the default hunter name shown on the profile.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID
	Login     string    `json:"login"     db:"login"`     // GitHub username, e.g. "sakif"
	Email     string    `json:"email"     db:"email"`     // Primary public email (may be empty)
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
