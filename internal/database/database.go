// Package database stores the rename history in SQLite: one row per organize run and
// one row per file outcome.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// HistoryDB is the handle to the history database.
type HistoryDB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(db, path)
}

// OpenInMemory opens a private in-memory database for tests.
func OpenInMemory() (*HistoryDB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would get its own empty database.
	db.SetMaxOpenConns(1)
	return open(db, ":memory:")
}

func open(db *sql.DB, path string) (*HistoryDB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &HistoryDB{db: db, path: path}, nil
}

func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path, or ":memory:".
func (h *HistoryDB) Path() string {
	return h.path
}

// SchemaVersion returns the highest applied migration.
func (h *HistoryDB) SchemaVersion() (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return currentVersion(h.db)
}
