package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samestrin/llm-calc/internal/calc/history/schema"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite store, creating the file and schema if needed.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidPath
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".db" && ext != ".sqlite" && ext != ".sqlite3" {
		return nil, &UnsupportedBackendError{Extension: ext}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; concurrent Record calls queue on the pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := schema.Initialize(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Record appends an entry.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	if s.isClosed() {
		return ErrStorageClosed
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (kind, expression, result, error, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Kind, entry.Expression, entry.Result, nullableString(entry.Error),
		entry.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// List returns entries newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if s.isClosed() {
		return nil, ErrStorageClosed
	}

	query := "SELECT id, kind, expression, result, error, created_at FROM entries"
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.FailedOnly {
		conditions = append(conditions, "error IS NOT NULL AND error != ''")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			errText   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Expression, &e.Result, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Error = errText.String
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns tape statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	if s.isClosed() {
		return nil, ErrStorageClosed
	}

	stats := &Stats{ByKind: map[string]int{}, Backend: string(StorageTypeSQLite)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*), SUM(CASE WHEN error IS NOT NULL AND error != '' THEN 1 ELSE 0 END)
		FROM entries GROUP BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind            string
			count, failures int
		)
		if err := rows.Scan(&kind, &count, &failures); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByKind[kind] = count
		stats.Entries += count
		stats.Failures += failures
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Entries > 0 {
		var oldest, newest string
		if err := s.db.QueryRowContext(ctx,
			"SELECT MIN(created_at), MAX(created_at) FROM entries").Scan(&oldest, &newest); err != nil {
			return nil, fmt.Errorf("failed to query time range: %w", err)
		}
		if t, err := time.Parse(timeLayout, oldest); err == nil {
			stats.Oldest = &t
		}
		if t, err := time.Parse(timeLayout, newest); err == nil {
			stats.Newest = &t
		}
	}

	return stats, nil
}

// Clear removes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	if s.isClosed() {
		return 0, ErrStorageClosed
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("failed to clear entries: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// nullableString returns nil for empty strings, otherwise the string.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
