package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/shadow-rank/internal/apperror"
	"github.com/sakif/shadow-rank/internal/model"
	"github.com/sakif/shadow-rank/internal/repository"
)

var _ repository.SkillRepository = (*DB)(nil)

const skillColumns = `id, user_id, skill_name, base_level, earned_xp, level, is_levelable, updated_at`

func scanSkill(row scanner) (*model.Skill, error) {
	var s model.Skill
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.BaseLevel, &s.EarnedXP, &s.Level, &s.Levelable, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) ListSkills(ctx context.Context, userID string) ([]model.Skill, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE user_id = ? ORDER BY skill_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing skills for %s: %w", userID, err)
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning skill: %w", err)
		}
		skills = append(skills, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating skills: %w", err)
	}
	return skills, nil
}

// GetSkill returns apperror.ErrNotFound when the user has no such skill yet.
func (db *DB) GetSkill(ctx context.Context, userID, name string) (*model.Skill, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE user_id = ? AND skill_name = ?`, userID, name)
	s, err := scanSkill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("skill", name)
		}
		return nil, fmt.Errorf("sqlite: getting skill %s for %s: %w", name, userID, err)
	}
	return s, nil
}

func (db *DB) SaveSkills(ctx context.Context, userID string, skills []model.Skill) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for i := range skills {
		skills[i].UserID = userID
		if err := upsertSkill(ctx, tx, &skills[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing skills: %w", err)
	}
	return nil
}

// upsertSkill writes s by (user_id, skill_name) and fills in its ID.
func upsertSkill(ctx context.Context, tx *sql.Tx, s *model.Skill, now time.Time) error {
	if s.ID == "" {
		s.ID = xid.New().String()
	}
	s.UpdatedAt = now

	err := tx.QueryRowContext(ctx,
		`INSERT INTO skills (id, user_id, skill_name, base_level, earned_xp, level, is_levelable, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, skill_name) DO UPDATE SET
			base_level   = excluded.base_level,
			earned_xp    = excluded.earned_xp,
			level        = excluded.level,
			is_levelable = excluded.is_levelable,
			updated_at   = excluded.updated_at
		 RETURNING id`,
		s.ID, s.UserID, s.Name, s.BaseLevel, s.EarnedXP, s.Level, s.Levelable, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("sqlite: upserting skill %s for %s: %w", s.Name, s.UserID, err)
	}
	return nil
}
