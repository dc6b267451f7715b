package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in shared deployments where different users or projects
// need separate cache namespaces.
//
// Example usage:
//
//	// Project-specific keys for private PDK artifacts
//	projKeyer := NewScopedKeyer(NewDefaultKeyer(), "proj:chip-a:")
//
//	// Global keys for shared standard cells
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CellKey generates a prefixed key for a generated cell.
func (k *ScopedKeyer) CellKey(blockKey string, opts CellKeyOpts) string {
	return k.prefix + k.inner.CellKey(blockKey, opts)
}

// ArtifactKey generates a prefixed key for an exported artifact.
func (k *ScopedKeyer) ArtifactKey(cellKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(cellKey, opts)
}
