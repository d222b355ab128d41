package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pension/backend/internal/domain/shared"
	"github.com/pension/backend/internal/infrastructure/config"
)

// NewSnapshotStore builds the store selected by cfg.Snapshot.Backend.
// The none backend returns a nil store and a nil error.
func NewSnapshotStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.SnapshotStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendNone:
		return nil, nil
	case config.SnapshotBackendFile, "":
		return NewFileStore(cfg.Snapshot.Dir, WithFileLogger(logger))
	case config.SnapshotBackendS3:
		store, err := NewS3SnapshotStore(ctx, &cfg.Storage, WithS3Logger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.SnapshotBackendRedis:
		return NewRedisSnapshotStore(ctx, cfg.Redis, WithRedisLogger(logger))
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}
