package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores exported artifacts on the local filesystem, one record
// per key under a hash fan-out directory tree. It backs the CLI's artifact
// cache in ~/.cache/cellforge. Keys are content-derived (cell key plus
// format), so a record can never be wrong for its key; the TTL only bounds
// disk growth.
type FileCache struct {
	root string
}

// NewFileCache opens an artifact cache rooted at dir, creating the
// directory if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

// record is the on-disk envelope around cached artifact bytes.
type record struct {
	Data      []byte    `json:"data"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get retrieves the artifact stored under key. Expired or unreadable
// records are dropped and reported as a miss; the caller re-exports and
// overwrites them.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !rec.ExpiresAt.IsZero() && time.Now().After(rec.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return rec.Data, true, nil
}

// Set stores artifact bytes under key. A zero ttl stores without
// expiration.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	rec := record{Data: data, StoredAt: time.Now().UTC()}
	if ttl > 0 {
		rec.ExpiresAt = rec.StoredAt.Add(ttl)
	}

	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

// Delete removes the record stored under key, if any.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; every operation goes straight through the filesystem.
func (c *FileCache) Close() error { return nil }

// path maps a key to its record file. The key is hashed and fanned out over
// two-character subdirectories so a project's artifacts do not pile up in
// one directory.
func (c *FileCache) path(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.root, sum[:2], sum[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
