package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pension/backend/internal/domain/shared"
	infraconfig "github.com/pension/backend/internal/infrastructure/config"
)

var _ shared.SnapshotStore = (*RedisSnapshotStore)(nil)

// DefaultRedisKeyPrefix namespaces snapshot keys in a shared Redis
const DefaultRedisKeyPrefix = "pension:snapshot:"

// RedisSnapshotStore keeps each snapshot as a Redis string value, so several
// server instances can share one recommendation history.
type RedisSnapshotStore struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// RedisOption configures a RedisSnapshotStore
type RedisOption func(*RedisSnapshotStore)

// WithRedisLogger sets the logger of a RedisSnapshotStore
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(s *RedisSnapshotStore) {
		s.logger = logger
	}
}

// NewRedisSnapshotStore connects to Redis and verifies the connection
func NewRedisSnapshotStore(ctx context.Context, cfg infraconfig.RedisConfig, opts ...RedisOption) (*RedisSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisSnapshotStoreWithClient(client, cfg.KeyPrefix, opts...), nil
}

// NewRedisSnapshotStoreWithClient wraps an existing client
func NewRedisSnapshotStoreWithClient(client redis.UniversalClient, keyPrefix string, opts ...RedisOption) *RedisSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	s := &RedisSnapshotStore{client: client, keyPrefix: keyPrefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the Redis key a snapshot key maps to
func (s *RedisSnapshotStore) Key(key string) string {
	return s.keyPrefix + key
}

// Save stores data without expiry
func (s *RedisSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if err := s.client.Set(ctx, s.Key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", shared.ErrPersistence, key, err)
	}
	s.logger.Debug("snapshot stored in redis", zap.String("key", s.Key(key)), zap.Int("bytes", len(data)))
	return nil
}

// Load returns the stored snapshot
func (s *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	data, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, s.Key(key))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", shared.ErrPersistence, key, err)
	}
	return data, nil
}

// Close closes the Redis client
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}
