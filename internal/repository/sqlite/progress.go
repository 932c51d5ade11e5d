package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/repository"
)

var _ repository.ProgressRepository = (*DB)(nil)

func (db *DB) Awaken(ctx context.Context, p *model.Profile, skills []model.Skill) error {
	quest, err := nullJSON(p.CurrentQuest)
	if err != nil {
		return fmt.Errorf("sqlite: encoding quest: %w", err)
	}
	resume, err := nullJSON(p.ResumeData)
	if err != nil {
		return fmt.Errorf("sqlite: encoding resume data: %w", err)
	}
	var goal sql.NullString
	if p.Goal != nil {
		goal = sql.NullString{String: *p.Goal, Valid: true}
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, username, avatar_url, rank, xp, current_quest, goal, resume_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Username, p.AvatarURL, string(p.Rank), p.XP, quest, goal, resume, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile", p.UserID)
		}
		return fmt.Errorf("sqlite: inserting profile %s: %w", p.UserID, err)
	}

	// Earned XP already stored for a skill is never overwritten.
	for _, s := range skills {
		if s.ID == "" {
			s.ID = xid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO skills (id, user_id, skill_name, base_level, earned_xp, level, is_levelable, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, skill_name) DO UPDATE SET
				base_level   = excluded.base_level,
				level        = excluded.level,
				is_levelable = excluded.is_levelable,
				updated_at   = excluded.updated_at`,
			s.ID, p.UserID, s.Name, s.BaseLevel, s.EarnedXP, s.Level, s.Levelable, now,
		)
		if err != nil {
			return fmt.Errorf("sqlite: writing skill %s for %s: %w", s.Name, p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing awakening: %w", err)
	}
	return nil
}

func (db *DB) CompleteQuest(ctx context.Context, c repository.QuestCompletion) error {
	next, err := nullJSON(c.NextQuest)
	if err != nil {
		return fmt.Errorf("sqlite: encoding next quest: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rec := &c.Record
	if rec.ID == "" {
		rec.ID = xid.New().String()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quest_history (id, user_id, quest_title, quest_description, repo_url, xp_earned, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, c.UserID, rec.QuestTitle, rec.QuestDescription, rec.RepoURL, rec.XPEarned, rec.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateSubmission(rec.RepoURL)
		}
		return fmt.Errorf("sqlite: inserting quest history for %s: %w", c.UserID, err)
	}

	if err := casProfile(ctx, tx, c.UserID, c.ExpectedXP, c.NewXP, c.NewRank, &next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing quest completion: %w", err)
	}
	return nil
}

func (db *DB) CompleteSkillActivity(ctx context.Context, a repository.SkillActivity) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	a.Skill.UserID = a.UserID
	if err := upsertSkill(ctx, tx, &a.Skill, now); err != nil {
		return err
	}

	if err := casProfile(ctx, tx, a.UserID, a.ExpectedXP, a.NewXP, a.NewRank, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing skill activity: %w", err)
	}
	return nil
}

// casProfile moves xp from expected to newXP. A nil quest leaves
// current_quest untouched. Zero rows matched means another writer got there
// first (or the profile is gone); both surface as a conflict.
func casProfile(ctx context.Context, tx *sql.Tx, userID string, expected, newXP int, rank model.Rank, quest *sql.NullString) error {
	var (
		result sql.Result
		err    error
		now    = time.Now().UTC()
	)
	if quest != nil {
		result, err = tx.ExecContext(ctx,
			`UPDATE profiles SET xp = ?, rank = ?, current_quest = ?, updated_at = ?
			 WHERE id = ? AND xp = ?`,
			newXP, string(rank), *quest, now, userID, expected,
		)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE profiles SET xp = ?, rank = ?, updated_at = ?
			 WHERE id = ? AND xp = ?`,
			newXP, string(rank), now, userID, expected,
		)
	}
	if err != nil {
		return fmt.Errorf("sqlite: updating progress for %s: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.Conflict("profile", userID)
	}
	return nil
}
