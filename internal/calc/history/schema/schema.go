// Package schema handles SQLite schema creation for the calculation tape.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// CurrentVersion is the current schema version.
const CurrentVersion = 1

// Schema contains all DDL statements for the tape database.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    expression TEXT NOT NULL,
    result REAL NOT NULL DEFAULT 0,
    error TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
`

// Initialize creates the database schema if it doesn't exist.
// Returns the current schema version.
func Initialize(ctx context.Context, db *sql.DB) (int, error) {
	version, err := GetVersion(ctx, db)
	if err != nil {
		// Table doesn't exist yet
		version = 0
	}

	if version >= CurrentVersion {
		return version, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		return 0, fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO schema_version (version) VALUES (?)",
		CurrentVersion); err != nil {
		return 0, fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return CurrentVersion, nil
}

// GetVersion returns the highest applied schema version.
func GetVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}
