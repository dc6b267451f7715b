package store

import (
	"context"
	"testing"
	"time"

	"github.com/cellforge/cellforge/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	arts := []Artifact{
		{ID: "a2", RunID: "run1", Target: "inv", Format: "dot", CreatedAt: base.Add(time.Second)},
		{ID: "a1", RunID: "run1", Target: "inv", Format: "json", CreatedAt: base},
		{ID: "b1", RunID: "run2", Target: "buf", Format: "json", CreatedAt: base},
	}
	for _, a := range arts {
		if err := s.Put(ctx, a); err != nil {
			t.Fatalf("put %s: %v", a.ID, err)
		}
	}

	got, err := s.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Format != "json" {
		t.Errorf("got %+v", got)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}

	run1, err := s.ListRun(ctx, "run1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(run1) != 2 || run1[0].ID != "a1" || run1[1].ID != "a2" {
		t.Errorf("run1 = %+v", run1)
	}

	if err := s.Put(ctx, Artifact{}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("empty ID should fail, got %v", err)
	}
}
