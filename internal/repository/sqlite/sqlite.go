// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database that lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage, and
// ":memory:" gives every test its own throwaway database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of the SQLite C code, so no CGo and no C
// compiler are needed.
//
// CONSISTENCY MODEL:
// Every multi-row write (quest completion, skill activity, awakening) runs in
// one transaction. Transactions start with BEGIN IMMEDIATE (`_txlock`), so
// two writers never interleave; the second waits on busy_timeout and then
// sees the first one's rows. Duplicate submissions are stopped by the
// UNIQUE(user_id, repo_url) index, and lost updates by a compare-and-swap on
// profiles.xp.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the database and runs migrations.
//
// dbPath examples:
//   - "data/shadow-rank.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is its own database, so the pool must
	// never grow past one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping verifies the connection actually works.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends the per-connection pragmas. PRAGMAs run through Exec would
// only reach whichever pooled connection served that call.
func dsn(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if path != ":memory:" {
		// WAL lets readers proceed while a quest completion is writing.
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping backs the readiness check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS keeps this idempotent; column additions go
// through addColumnIfNotExists.
func (db *DB) migrate() error {
	// github_id is UNIQUE: each GitHub account maps to exactly one row.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One profile per user, keyed by the user id. current_quest and
	// resume_data are JSON documents.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id            TEXT PRIMARY KEY REFERENCES users(id),
			username      TEXT NOT NULL,
			avatar_url    TEXT NOT NULL DEFAULT '',
			rank          TEXT NOT NULL DEFAULT 'E' CHECK (rank IN ('E','D','C','B','A')),
			xp            INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
			current_quest TEXT,
			goal          TEXT,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	if err := db.addColumnIfNotExists("profiles", "resume_data", "TEXT"); err != nil {
		return fmt.Errorf("adding resume_data to profiles: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS skills (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			skill_name   TEXT NOT NULL,
			base_level   INTEGER NOT NULL DEFAULT 1 CHECK (base_level BETWEEN 1 AND 10),
			earned_xp    INTEGER NOT NULL DEFAULT 0 CHECK (earned_xp >= 0),
			level        INTEGER NOT NULL DEFAULT 1 CHECK (level BETWEEN 1 AND 10),
			is_levelable INTEGER NOT NULL DEFAULT 0,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, skill_name)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating skills table: %w", err)
	}

	// UNIQUE(user_id, repo_url) is the duplicate-submission guarantee.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS quest_history (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL REFERENCES users(id),
			quest_title       TEXT NOT NULL DEFAULT '',
			quest_description TEXT NOT NULL DEFAULT '',
			repo_url          TEXT NOT NULL,
			xp_earned         INTEGER NOT NULL CHECK (xp_earned >= 0),
			completed_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, repo_url)
		);
		CREATE INDEX IF NOT EXISTS idx_quest_history_user_completed
			ON quest_history(user_id, completed_at);
	`)
	if err != nil {
		return fmt.Errorf("creating quest_history table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent: safe to run multiple times.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
