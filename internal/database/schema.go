package database

import (
	"database/sql"
	"fmt"
	"time"
)

type migration struct {
	version int
	up      []string
}

// Times are stored as unix milliseconds.
var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at INTEGER NOT NULL
			)`,
			`CREATE TABLE runs (
				id TEXT PRIMARY KEY,
				command TEXT NOT NULL,
				dry_run INTEGER NOT NULL DEFAULT 0,
				started_at INTEGER NOT NULL,
				finished_at INTEGER,

				total INTEGER NOT NULL DEFAULT 0,
				renamed INTEGER NOT NULL DEFAULT 0,
				already_named INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				resolved INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX idx_runs_started ON runs(started_at)`,
			`CREATE TABLE renames (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,

				source_path TEXT NOT NULL,
				target_path TEXT NOT NULL DEFAULT '',
				outcome TEXT NOT NULL,
				media_type TEXT NOT NULL,

				title TEXT NOT NULL DEFAULT '',
				title_normalized TEXT NOT NULL DEFAULT '',
				year INTEGER NOT NULL DEFAULT 0,
				season INTEGER NOT NULL DEFAULT 0,
				episode INTEGER NOT NULL DEFAULT 0,
				provider_tag TEXT NOT NULL DEFAULT '',
				resolved INTEGER NOT NULL DEFAULT 0,
				confidence REAL NOT NULL DEFAULT 0,

				error TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX idx_renames_run ON renames(run_id)`,
			`CREATE INDEX idx_renames_title ON renames(title_normalized)`,
		},
	},
	{
		version: 2,
		up: []string{
			`ALTER TABLE renames ADD COLUMN sidecar_path TEXT NOT NULL DEFAULT ''`,
			`CREATE INDEX idx_renames_target ON renames(target_path)`,
		},
	},
}

func currentVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}

// applyMigrations runs every migration above the recorded version, each in its own
// transaction.
func applyMigrations(db *sql.DB) error {
	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", m.version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
