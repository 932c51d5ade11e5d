package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

const profileColumns = `id, username, avatar_url, rank, xp, current_quest, goal, resume_data, created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*model.Profile, error) {
	var (
		p      model.Profile
		rank   string
		quest  sql.NullString
		goal   sql.NullString
		resume sql.NullString
	)
	if err := row.Scan(&p.UserID, &p.Username, &p.AvatarURL, &rank, &p.XP, &quest, &goal, &resume, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Rank = model.Rank(rank)

	if quest.Valid && quest.String != "" {
		var q model.Quest
		if err := json.Unmarshal([]byte(quest.String), &q); err != nil {
			return nil, fmt.Errorf("decoding current_quest: %w", err)
		}
		p.CurrentQuest = &q
	}
	if goal.Valid {
		g := goal.String
		p.Goal = &g
	}
	if resume.Valid && resume.String != "" {
		var r model.ResumeData
		if err := json.Unmarshal([]byte(resume.String), &r); err != nil {
			return nil, fmt.Errorf("decoding resume_data: %w", err)
		}
		p.ResumeData = &r
	}
	return &p, nil
}

// nullJSON encodes v as a nullable JSON column. A nil pointer is NULL.
func nullJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// GetProfile returns apperror.ErrNotFound before the user has awakened.
func (db *DB) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", userID, err)
	}
	return p, nil
}

func (db *DB) SetCurrentQuest(ctx context.Context, userID string, quest *model.Quest) error {
	q, err := nullJSON(quest)
	if err != nil {
		return fmt.Errorf("sqlite: encoding quest: %w", err)
	}
	return db.updateProfileColumn(ctx, userID, "current_quest", q)
}

func (db *DB) SetGoal(ctx context.Context, userID string, goal *string) error {
	var g sql.NullString
	if goal != nil {
		g = sql.NullString{String: *goal, Valid: true}
	}
	return db.updateProfileColumn(ctx, userID, "goal", g)
}

func (db *DB) SetResumeData(ctx context.Context, userID string, data *model.ResumeData) error {
	r, err := nullJSON(data)
	if err != nil {
		return fmt.Errorf("sqlite: encoding resume data: %w", err)
	}
	return db.updateProfileColumn(ctx, userID, "resume_data", r)
}

// updateProfileColumn sets one column. column is always a literal from
// this file, never user input.
func (db *DB) updateProfileColumn(ctx context.Context, userID, column string, value any) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE profiles SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile %s %s: %w", userID, column, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("profile", userID)
	}
	return nil
}

// ListProfiles caps the page at 100 rows and defaults to 20.
func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY xp DESC, created_at ASC LIMIT ? OFFSET ?`,
		limit, max(0, opts.Offset),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}
	return profiles, nil
}
