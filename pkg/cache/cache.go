// Package cache stores computed records between runs so unchanged networks
// are not re-analyzed.
//
// A [Cache] is a byte-oriented key-value store with expiry. Keys come from a
// [Keyer], which hashes a network's artifacts together with every option
// that affects its record, so a change to either invalidates the entry.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for batches split across machines
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// TTLRecord is how long a cached record stays valid. Records are a pure
// function of their key, so the TTL only bounds disk usage.
const TTLRecord = 30 * 24 * time.Hour

// Cache is a key-value store for serialized records.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
