// Package cache saves and restores install directories by cache key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gofrs/flock"
)

// Store persists install directories under a cache key.
type Store interface {
	// Restore replaces path with the entry stored under key. It reports
	// false, and leaves path untouched, when there is no such entry.
	Restore(ctx context.Context, key, path string) (bool, error)
	// Save stores the contents of path under key, replacing any entry.
	Save(ctx context.Context, key, path string) error
}

const lockRetryDelay = 100 * time.Millisecond

// DirStore is a Store backed by a local directory, one subdirectory per key.
// Entries are written to a temporary directory and renamed into place, so a
// reader never observes a partial entry.
type DirStore struct {
	Dir string
}

// NewDirStore creates a DirStore rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir}
}

func (s *DirStore) entry(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty cache key")
	}
	if key == "." || key == ".." || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	path, err := securejoin.SecureJoin(s.Dir, key)
	if err != nil {
		return "", fmt.Errorf("resolving cache entry %s: %w", key, err)
	}
	if filepath.Dir(path) != filepath.Clean(s.Dir) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return path, nil
}

func (s *DirStore) lock(ctx context.Context, entry string) (*flock.Flock, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	l := flock.New(entry + ".lock")
	if _, err := l.TryLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("locking cache entry: %w", err)
	}
	return l, nil
}

// Restore copies the entry for key to path.
func (s *DirStore) Restore(ctx context.Context, key, path string) (bool, error) {
	entry, err := s.entry(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(entry); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("cache miss", "key", key)
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("checking cache entry: %w", err)
	}

	l, err := s.lock(ctx, entry)
	if err != nil {
		return false, err
	}
	defer l.Unlock()

	if err := replaceDir(os.DirFS(entry), path); err != nil {
		return false, fmt.Errorf("restoring %s: %w", key, err)
	}

	slog.Debug("restored cache entry", "key", key, "path", path)
	return true, nil
}

// Save copies path into the entry for key.
func (s *DirStore) Save(ctx context.Context, key, path string) error {
	entry, err := s.entry(key)
	if err != nil {
		return err
	}

	l, err := s.lock(ctx, entry)
	if err != nil {
		return err
	}
	defer l.Unlock()

	if err := replaceDir(os.DirFS(path), entry); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	slog.Debug("saved cache entry", "key", key, "path", path)
	return nil
}

// replaceDir copies src to a sibling of dst and renames it over dst.
func replaceDir(src fs.FS, dst string) error {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return err
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dst)+"-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	// CopyFS refuses to overwrite, so copy into a fresh child directory.
	staged := filepath.Join(tmp, "data")
	if err := os.CopyFS(staged, src); err != nil {
		return err
	}

	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.Rename(staged, dst)
}
