// Package storage provides the snapshot stores that persist catalog and
// recommendation history snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pension/backend/internal/domain/shared"
)

var _ shared.SnapshotStore = (*FileStore)(nil)

// ErrInvalidKey is returned for empty keys or keys that escape the store root
var ErrInvalidKey = errors.New("invalid snapshot key")

// FileStore keeps each snapshot as a file under a directory
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// FileStoreOption configures a FileStore
type FileStoreOption func(*FileStore)

// WithFileLogger sets the logger of a FileStore
func WithFileLogger(logger *zap.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	s := &FileStore{dir: dir, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the root directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes data to a temporary file and renames it over the target,
// so a crash never leaves a half-written snapshot behind.
func (s *FileStore) Save(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", shared.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", shared.ErrPersistence, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", shared.ErrPersistence, key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", shared.ErrPersistence, key, err)
	}
	s.logger.Debug("snapshot written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Load reads the snapshot stored under key
func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrPersistence, path, err)
	}
	return data, nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}
