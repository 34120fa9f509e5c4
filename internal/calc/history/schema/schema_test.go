package schema

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	return db
}

func TestInitialize(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	ctx := context.Background()

	version, err := Initialize(ctx, db)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if version != CurrentVersion {
		t.Errorf("Expected version %d, got %d", CurrentVersion, version)
	}

	// Idempotent
	version, err = Initialize(ctx, db)
	if err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}
	if version != CurrentVersion {
		t.Errorf("Expected version %d, got %d", CurrentVersion, version)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO entries (kind, expression, result, created_at) VALUES (?, ?, ?, ?)",
		"calculate", "2 + 3", 5.0, "2026-01-01T00:00:00Z"); err != nil {
		t.Errorf("entries table not usable: %v", err)
	}
}

func TestGetVersion_NoSchema(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, err := GetVersion(context.Background(), db); err == nil {
		t.Error("expected error before schema exists")
	}
}
