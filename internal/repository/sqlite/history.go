package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/repository"
)

var _ repository.QuestHistoryRepository = (*DB)(nil)

// ListHistory returns the user's accepted submissions, newest first.
func (db *DB) ListHistory(ctx context.Context, userID string, opts repository.ListOptions) ([]model.QuestHistoryRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, quest_title, quest_description, repo_url, xp_earned, completed_at
		 FROM quest_history WHERE user_id = ?
		 ORDER BY completed_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, max(0, opts.Offset),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing history for %s: %w", userID, err)
	}
	defer rows.Close()

	records := []model.QuestHistoryRecord{}
	for rows.Next() {
		var r model.QuestHistoryRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.QuestTitle, &r.QuestDescription, &r.RepoURL, &r.XPEarned, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning history: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating history: %w", err)
	}
	return records, nil
}

func (db *DB) HasSubmitted(ctx context.Context, userID, repoURL string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM quest_history WHERE user_id = ? AND repo_url = ?)`,
		userID, repoURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking submission %s for %s: %w", repoURL, userID, err)
	}
	return exists, nil
}
