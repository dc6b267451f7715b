package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cellforge/cellforge/pkg/cache"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/project"
	"github.com/cellforge/cellforge/pkg/store"
)

func manifest(t *testing.T, src string) *project.Manifest {
	t.Helper()
	m, err := project.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	return m
}

const demoManifest = `
[project]
name = "demo"
schema = "spice"
formats = ["json", "dot"]

[[targets]]
name = "inv_x1"
block = "inverter"
[targets.params]
nw = 12
pw = 24
l = 2

[[targets]]
name = "div"
block = "vdivider"
`

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), manifest(t, demoManifest), Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run ID")
	}
	if len(res.Targets) != 2 {
		t.Fatalf("got %d targets", len(res.Targets))
	}
	for _, tr := range res.Targets {
		for _, format := range []string{"json", "dot"} {
			if len(tr.Artifacts[format]) == 0 {
				t.Errorf("target %q: empty %s artifact", tr.Target, format)
			}
		}
		if tr.CellKey == "" {
			t.Errorf("target %q: missing cell key", tr.Target)
		}
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("file cache: %v", err)
	}
	defer fc.Close()

	m := manifest(t, demoManifest)

	r1 := NewRunner(fc, nil, nil)
	if _, err := r1.Execute(context.Background(), m, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A fresh runner shares no in-memory state, only the artifact cache.
	r2 := NewRunner(fc, nil, nil)
	res, err := r2.Execute(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, tr := range res.Targets {
		if len(tr.CacheHits) != 2 {
			t.Errorf("target %q cache hits = %v, want both formats", tr.Target, tr.CacheHits)
		}
	}

	// Refresh bypasses reads.
	res, err = r2.Execute(context.Background(), m, Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	for _, tr := range res.Targets {
		if len(tr.CacheHits) != 0 {
			t.Errorf("refresh run should not hit cache, got %v", tr.CacheHits)
		}
	}
}

func TestExecuteStoresArtifacts(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	st := store.NewMemoryStore()
	r.Store = st

	res, err := r.Execute(context.Background(), manifest(t, demoManifest), Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	arts, err := st.ListRun(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("list run: %v", err)
	}
	// Two targets times two formats.
	if len(arts) != 4 {
		t.Errorf("stored %d artifacts, want 4", len(arts))
	}
}

func TestWrapTarget(t *testing.T) {
	// Coded causes keep their code through the target wrapper.
	coded := errors.New(errors.ErrCodeUnsupportedSchema, "no exporter")
	if err := wrapTarget(coded, "inv"); !errors.Is(err, errors.ErrCodeUnsupportedSchema) {
		t.Errorf("coded cause lost its code: %v", err)
	}

	// Plain causes surface as INTERNAL_ERROR instead of an empty code.
	plain := fmt.Errorf("context canceled")
	err := wrapTarget(plain, "inv")
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("plain cause should wrap as INTERNAL_ERROR, got %v", err)
	}
	if got := errors.GetCode(err); got == "" {
		t.Error("wrapped target error has an empty code")
	}
	if !strings.Contains(err.Error(), `target "inv"`) {
		t.Errorf("wrapped error should name the target: %v", err)
	}
}

func TestExecuteUnknownBlock(t *testing.T) {
	src := `
[project]
name = "demo"
schema = "spice"

[[targets]]
name = "x"
block = "ghost"
`
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), manifest(t, src), Options{})
	if !errors.Is(err, errors.ErrCodeBlockNotFound) {
		t.Fatalf("want BLOCK_NOT_FOUND, got %v", err)
	}
}

func TestExecuteLayoutView(t *testing.T) {
	src := `
[project]
name = "demo"
schema = "gds"
formats = ["json"]

[[targets]]
name = "inv_tile"
block = "inverter"
view = "layout"
`
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), manifest(t, src), Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.Targets[0].Artifacts["json"]) == 0 {
		t.Error("empty layout artifact")
	}
}

func TestExecuteViewWithoutGenerator(t *testing.T) {
	src := `
[project]
name = "demo"
schema = "gds"

[[targets]]
name = "div"
block = "vdivider"
view = "layout"
`
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), manifest(t, src), Options{})
	if !errors.Is(err, errors.ErrCodeUnsupportedSchema) {
		t.Fatalf("want UNSUPPORTED_SCHEMA, got %v", err)
	}
}
