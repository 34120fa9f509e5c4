package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// tapeFile is the on-disk layout of a YAML tape
type tapeFile struct {
	Version int     `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// YAMLStore implements Store using a YAML file.
// A mutex serialises goroutines and a flock on <path>.lock serialises processes;
// the file is re-read under the lock before every change.
type YAMLStore struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	closed bool
}

// NewYAMLStore creates a YAML store, creating an empty tape if the file is missing.
func NewYAMLStore(ctx context.Context, path string) (*YAMLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrInvalidPath
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, &UnsupportedBackendError{Extension: ext}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	y := &YAMLStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}

	err := y.withLock(ctx, func() error {
		if _, err := os.Stat(path); err == nil {
			_, err := y.load()
			return err
		}
		return y.save(&tapeFile{Version: 1, Entries: []Entry{}})
	})
	if err != nil {
		return nil, err
	}

	return y, nil
}

// withLock runs fn holding both the mutex and the file lock.
func (y *YAMLStore) withLock(ctx context.Context, fn func() error) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.closed {
		return ErrStorageClosed
	}

	locked, err := y.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", y.path)
	}
	defer y.lock.Unlock()

	return fn()
}

func (y *YAMLStore) load() (*tapeFile, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tape: %w", err)
	}

	tf := &tapeFile{}
	if err := yaml.Unmarshal(data, tf); err != nil {
		return nil, fmt.Errorf("failed to parse tape %s: %w", y.path, err)
	}
	if tf.Entries == nil {
		tf.Entries = []Entry{}
	}
	return tf, nil
}

// save writes atomically via a temp file and rename.
func (y *YAMLStore) save(tf *tapeFile) error {
	data, err := yaml.Marshal(tf)
	if err != nil {
		return fmt.Errorf("failed to encode tape: %w", err)
	}

	tmp := y.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write tape: %w", err)
	}
	if err := os.Rename(tmp, y.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace tape: %w", err)
	}
	return nil
}

// Record appends an entry.
func (y *YAMLStore) Record(ctx context.Context, entry *Entry) error {
	return y.withLock(ctx, func() error {
		tf, err := y.load()
		if err != nil {
			return err
		}

		var maxID int64
		for _, e := range tf.Entries {
			if e.ID > maxID {
				maxID = e.ID
			}
		}
		entry.ID = maxID + 1
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = time.Now().UTC()
		}

		tf.Entries = append(tf.Entries, *entry)
		return y.save(tf)
	})
}

// List returns entries newest first.
func (y *YAMLStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var result []Entry
	err := y.withLock(ctx, func() error {
		tf, err := y.load()
		if err != nil {
			return err
		}

		result = make([]Entry, 0, len(tf.Entries))
		for _, e := range tf.Entries {
			if filter.Kind != "" && e.Kind != filter.Kind {
				continue
			}
			if filter.FailedOnly && !e.Failed() {
				continue
			}
			result = append(result, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Stats returns tape statistics.
func (y *YAMLStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByKind: map[string]int{}, Backend: string(StorageTypeYAML)}
	err := y.withLock(ctx, func() error {
		tf, err := y.load()
		if err != nil {
			return err
		}

		for _, e := range tf.Entries {
			stats.Entries++
			stats.ByKind[e.Kind]++
			if e.Failed() {
				stats.Failures++
			}
			created := e.CreatedAt
			if stats.Oldest == nil || created.Before(*stats.Oldest) {
				stats.Oldest = &created
			}
			if stats.Newest == nil || created.After(*stats.Newest) {
				stats.Newest = &created
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear removes all entries.
func (y *YAMLStore) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := y.withLock(ctx, func() error {
		tf, err := y.load()
		if err != nil {
			return err
		}
		removed = int64(len(tf.Entries))
		tf.Entries = []Entry{}
		return y.save(tf)
	})
	return removed, err
}

// Close marks the store closed. The tape file stays on disk.
func (y *YAMLStore) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.closed = true
	return nil
}
