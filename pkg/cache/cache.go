// Package cache stores computed layouts and rendered artifacts.
//
// Layout is deterministic: the same network and options always produce the
// same positions. Results are therefore keyed by a content hash of the
// network plus the options that influence the output, and a cached entry
// never goes stale for its key. TTLs bound disk and memory use only.
//
// Backends:
//   - [NullCache]: never stores (caching disabled)
//   - [FileCache]: JSON entries under a directory (CLI, XDG cache dir)
//   - [RedisCache]: a shared redis server (API server, several instances)
//
// Keys are produced by a [Keyer]; wrap one with [NewScopedKeyer] to give a
// tenant its own namespace.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired and corrupt entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Entry lifetimes. Keys are content hashes, so these only bound storage.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
