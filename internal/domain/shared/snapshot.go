package shared

import "context"

// SnapshotStore persists flat serialized snapshots (catalog records, recommendation history)
// under string keys. Implementations live in the storage infrastructure package.
type SnapshotStore interface {
	// Save writes data under key, replacing any previous snapshot
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key.
	// Returns an error wrapping ErrSnapshotNotFound when nothing is stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// Close releases resources held by the store
	Close() error
}

// CodeSnapshotNotFound is the code of ErrSnapshotNotFound
const CodeSnapshotNotFound = "SNAPSHOT_NOT_FOUND"

// ErrSnapshotNotFound is returned by SnapshotStore.Load for a missing key
var ErrSnapshotNotFound = NewDomainError(CodeSnapshotNotFound, "Snapshot not found")
