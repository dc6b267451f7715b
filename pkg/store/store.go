// Package store persists exported artifacts.
//
// An [ArtifactStore] keeps the outputs of pipeline runs: one record per
// (target, format) with the artifact bytes and enough metadata to find it
// again. Two implementations are provided: an in-memory store for tests and
// single-shot CLI runs, and a MongoDB store for server deployments.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cellforge/cellforge/pkg/errors"
)

// Artifact is one exported result.
type Artifact struct {
	ID        string    `json:"id" bson:"_id"`
	RunID     string    `json:"run_id" bson:"run_id"`
	Project   string    `json:"project" bson:"project"`
	Target    string    `json:"target" bson:"target"`
	CellKey   string    `json:"cell_key" bson:"cell_key"`
	Schema    string    `json:"schema" bson:"schema"`
	View      string    `json:"view" bson:"view"`
	Format    string    `json:"format" bson:"format"`
	Data      []byte    `json:"data" bson:"data"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ArtifactStore persists artifacts. Implementations must be safe for
// concurrent use.
type ArtifactStore interface {
	// Put stores an artifact. Storing an existing ID overwrites it.
	Put(ctx context.Context, a Artifact) error

	// Get retrieves an artifact by ID. Missing IDs fail with NOT_FOUND.
	Get(ctx context.Context, id string) (Artifact, error)

	// ListRun returns the artifacts of one run, oldest first.
	ListRun(ctx context.Context, runID string) ([]Artifact, error)

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// MemoryStore is an in-process ArtifactStore.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Artifact
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Artifact)}
}

// Put stores an artifact.
func (s *MemoryStore) Put(_ context.Context, a Artifact) error {
	if a.ID == "" {
		return errors.New(errors.ErrCodeInternal, "artifact has no ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[a.ID] = a
	return nil
}

// Get retrieves an artifact by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}
	return a, nil
}

// ListRun returns the artifacts of one run, oldest first.
func (s *MemoryStore) ListRun(_ context.Context, runID string) ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Artifact
	for _, a := range s.byID {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }
