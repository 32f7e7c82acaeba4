// Package cache stores analysis results, layouts and rendered artifacts by
// content hash.
//
// Backends:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI;
//   - [MemoryCache]: a bounded in-process LRU, for the HTTP server;
//   - [RedisCache]: shared across server instances;
//   - [NullCache]: stores nothing, for --no-cache and tests.
//
// Keys come from a [Keyer]. [DefaultKeyer] derives them from a content hash
// plus the options that influence the cached value, so changing any option
// misses instead of returning stale data.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/flowlens/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default time-to-live per entry kind.
const (
	TTLAnalysis = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Lookup is Get with observability: hits and misses are reported to the
// registered cache hooks. Backend errors count as misses.
func Lookup(ctx context.Context, c Cache, key string) ([]byte, bool) {
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return data, true
}

// Store is Set with observability. Errors are returned for the caller to log.
func Store(ctx context.Context, c Cache, key string, data []byte, ttl time.Duration) error {
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}
