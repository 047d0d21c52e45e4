// Package cache stores results of expensive computations between runs.
//
// Entries are opaque byte slices addressed by string keys. Keys are built
// with [Key] from a prefix and the parameters that determine the result, so
// the same computation always maps to the same entry.
//
// [FileCache] keeps entries as JSON files under a directory, typically
// ~/.cache/fealgraph. [NullCache] stores nothing and is used when caching is
// disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with optional expiry.
type Cache interface {
	// Get returns the entry for key and whether it was found. Expired or
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
