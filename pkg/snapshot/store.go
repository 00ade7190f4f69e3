package snapshot

import (
	"context"
	"errors"
)

// Store is a snapshot persistence backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save writes data under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key.
	// Returns (nil, nil) if there is none.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot under key.
	// Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("snapshot: store is closed")

	// ErrNotFound is returned by Restore when no snapshot exists.
	ErrNotFound = errors.New("snapshot: not found")

	// ErrVersion is returned by Restore for envelopes written by a newer
	// format version.
	ErrVersion = errors.New("snapshot: unsupported version")

	// ErrUnnamed is returned when saving or restoring a container without a
	// name, since the name is the storage key.
	ErrUnnamed = errors.New("snapshot: container has no name")
)
