// Package cache provides persistent caching for exported artifacts.
//
// The generation context memoizes cells in memory for the lifetime of one
// context; this package covers the slower outer loop: exported artifacts
// (netlists, layout databases, rendered graphs) keyed by cell identity and
// format, stored across process runs.
//
// Three backends are provided:
//   - FileCache: directory-based cache for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching (testing, --no-cache)
//
// Keys are derived with a [Keyer] so that multi-tenant deployments can
// namespace entries via [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with optional TTLs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second result reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// CellKeyOpts parameterizes cell cache keys.
type CellKeyOpts struct {
	Schema string // target schema tag
	View   string // "schematic" or "layout"
}

// ArtifactKeyOpts parameterizes exported-artifact cache keys.
type ArtifactKeyOpts struct {
	Format string // output format, e.g. "json", "dot", "svg"
}

// Keyer derives cache keys from domain identities.
type Keyer interface {
	// CellKey returns the key for a generated cell.
	CellKey(blockKey string, opts CellKeyOpts) string

	// ArtifactKey returns the key for an exported artifact.
	ArtifactKey(cellKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// CellKey generates a key for a generated cell.
func (k *DefaultKeyer) CellKey(blockKey string, opts CellKeyOpts) string {
	return hashKey("cell", blockKey, opts.Schema, opts.View)
}

// ArtifactKey generates a key for an exported artifact.
func (k *DefaultKeyer) ArtifactKey(cellKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", cellKey, opts.Format)
}
