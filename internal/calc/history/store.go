package history

import (
	"context"
	"path/filepath"
	"strings"
)

// Store defines the interface for calculation tape persistence.
// Implementations must be safe for concurrent use from multiple goroutines.
type Store interface {
	// Record appends an entry, assigning ID and CreatedAt when unset.
	Record(ctx context.Context, entry *Entry) error

	// List returns entries newest first.
	// Returns an empty slice (not nil) if no entries match.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Stats returns tape statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int64, error)

	// Close releases resources.
	// After Close, all operations return ErrStorageClosed.
	Close() error
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	// StorageTypeYAML represents YAML file storage.
	StorageTypeYAML StorageType = "yaml"
	// StorageTypeSQLite represents SQLite database storage.
	StorageTypeSQLite StorageType = "sqlite"
)

// NewStore creates a Store based on the file extension.
// Supported extensions:
//   - .yaml, .yml -> YAMLStore
//   - .db, .sqlite, .sqlite3 -> SQLiteStore
func NewStore(ctx context.Context, path string) (Store, error) {
	storageType, err := DetectStorageType(path)
	if err != nil {
		return nil, err
	}

	switch storageType {
	case StorageTypeYAML:
		return NewYAMLStore(ctx, path)
	default:
		return NewSQLiteStore(ctx, path)
	}
}

// DetectStorageType determines the storage type from the file path extension.
func DetectStorageType(path string) (StorageType, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return StorageTypeYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return StorageTypeSQLite, nil
	default:
		return "", &UnsupportedBackendError{Extension: ext}
	}
}
