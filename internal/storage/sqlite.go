// Package storage is the local SQLite bookkeeping for AutoPR: known
// users and per-installation usage records for the cycle quota.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path and runs migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id          INTEGER PRIMARY KEY,
		user_name        TEXT NOT NULL,
		first_issue_done INTEGER NOT NULL DEFAULT 0,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS usage_records (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		installation_id INTEGER NOT NULL,
		owner_id        INTEGER NOT NULL,
		user_id         INTEGER NOT NULL,
		issue_id        TEXT NOT NULL,
		source          TEXT NOT NULL,
		completed       INTEGER NOT NULL DEFAULT 0,
		created_at      DATETIME NOT NULL,
		completed_at    DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_usage_installation ON usage_records(installation_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_usage_issue ON usage_records(issue_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
