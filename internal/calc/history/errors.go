// Package history records calculations to an opt-in tape backed by SQLite or YAML.
package history

import (
	"errors"
	"fmt"
)

// Sentinel errors for history operations
var (
	// ErrStorageClosed indicates an operation was attempted on a closed store.
	ErrStorageClosed = errors.New("history store is closed")

	// ErrUnsupportedBackend indicates the storage backend is not supported.
	ErrUnsupportedBackend = errors.New("unsupported history backend")

	// ErrInvalidPath indicates an invalid file path was provided.
	ErrInvalidPath = errors.New("invalid path")
)

// UnsupportedBackendError wraps ErrUnsupportedBackend with context.
type UnsupportedBackendError struct {
	Extension string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("extension '%s' is not supported (use .yaml, .yml, .db, .sqlite)", e.Extension)
}

func (e *UnsupportedBackendError) Unwrap() error {
	return ErrUnsupportedBackend
}
