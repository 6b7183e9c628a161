// Package cache stores fetched hierarchy records between runs.
//
// # Overview
//
// Querying a hierarchy database can be slow compared to laying out and
// drawing the chart. A [Cache] keeps the raw record bytes keyed by source,
// so repeated renders (and the serve command) can skip the round trip.
// Computed layouts are never cached; they are cheap and always rebuilt.
//
// # Backends
//
//   - [FileCache]: JSON entries on disk, the CLI default
//   - [RedisCache]: shared cache for several hosts or the serve command
//   - [NullCache]: disables caching
//
// All backends honor a per-entry TTL; a zero TTL means no expiry.
//
// # Keys
//
// [SourceKey] derives a stable key from a source DSN without leaking
// credentials into file names or Redis key space.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}
