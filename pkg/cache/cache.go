// Package cache provides caching for rendered plot artifacts.
//
// The package defines a backend-agnostic Cache interface with three
// implementations:
//   - FileCache: file-based cache for CLI usage (default under the user
//     cache directory, e.g. ~/.cache/forestplot)
//   - RedisCache: Redis-backed cache for server deployments
//   - NullCache: no-op cache for tests and --no-cache runs
//
// Keys are built by a Keyer from the spec content hash plus every render
// option that affects output bytes, so a cached artifact can be reused
// across runs and across processes whenever spec and options match.
//
// # Usage
//
// Create a cache and store an artifact:
//
//	dir, _ := cache.DefaultDir()
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(specHash, cache.ArtifactKeyOpts{Format: "svg", Width: 800})
//	c.Set(ctx, key, svg, cache.TTLArtifact)
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero or negative TTL stores
	// the value without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per key type.
const (
	// TTLArtifact is how long rendered artifacts are kept. Artifacts are
	// keyed by content hash so entries never go stale; the TTL only bounds
	// storage growth.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLDefault is the fallback TTL for uncategorized entries.
	TTLDefault = 24 * time.Hour
)

// DefaultDir returns the default cache directory for the current user,
// typically ~/.cache/forestplot on Linux (honors XDG_CACHE_HOME).
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "forestplot"), nil
}
