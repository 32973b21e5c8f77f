// Package sqlite is the local device storage: settings (theme flag),
// append-only transaction history, and the notification inbox.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go driver, no CGO
)

// DB wraps the sqlite handle.
type DB struct {
	db *sql.DB
}

// Migrations returns the schema statements in apply order.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Device-local settings (theme flag and friends)
		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Append-only earnings history
		`CREATE TABLE IF NOT EXISTS transactions (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			amount     REAL NOT NULL,
			time       TEXT NOT NULL,
			date       TEXT NOT NULL,
			week_id    TEXT NOT NULL,
			status     TEXT NOT NULL,
			details    TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_week ON transactions(week_id)`,

		// Notification inbox
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			type       TEXT NOT NULL,
			date       TEXT NOT NULL,
			read       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(read)`,
	}
}

// Open creates or opens the database under dir and applies migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, "papaleguas.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the driver serializes access anyway.
	db.SetMaxOpenConns(1)

	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close releases the database handle.
func (d *DB) Close() error { return d.db.Close() }
