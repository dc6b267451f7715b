// Package pipeline runs manifests end to end: build blocks, generate cells,
// export artifacts.
//
// The [Runner] is the shared execution engine behind the CLI and the HTTP
// server. It wires the generation context, the artifact cache, the export
// registry, and an optional artifact store; callers hand it a manifest and
// receive the exported artifacts of every target.
//
// The Runner is stateless except for its collaborators: multiple goroutines
// can safely execute different manifests on the same Runner, sharing the
// generation context's memoization.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/cache"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/export"
	"github.com/cellforge/cellforge/pkg/forge"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/observability"
	"github.com/cellforge/cellforge/pkg/project"
	"github.com/cellforge/cellforge/pkg/schematic"
	"github.com/cellforge/cellforge/pkg/stdcell"
	"github.com/cellforge/cellforge/pkg/store"
)

// TTLArtifact is the cache lifetime of exported artifacts. Cell keys are
// content-derived, so stale entries cannot be wrong; the TTL only bounds
// disk growth.
const TTLArtifact = 30 * 24 * time.Hour

// Runner executes manifests.
type Runner struct {
	Forge    *forge.Context
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *export.Registry
	Store    store.ArtifactStore // optional
	Logger   *log.Logger
}

// NewRunner creates a runner with the given collaborators. Nil arguments
// select defaults: a fresh generation context, a NullCache, the default
// keyer, and the bundled exporter registry.
func NewRunner(c cache.Cache, reg *export.Registry, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if reg == nil {
		reg = export.DefaultRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Forge:    forge.NewContext(logger),
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Registry: reg,
		Logger:   logger,
	}
}

// Options adjusts one execution.
type Options struct {
	// Refresh bypasses artifact cache reads; results are still written back.
	Refresh bool
}

// TargetResult is the outcome of one manifest target.
type TargetResult struct {
	Target  string
	CellKey string
	View    string
	// Artifacts maps format to exported bytes.
	Artifacts map[string][]byte
	// CacheHits lists the formats served from the artifact cache.
	CacheHits []string
}

// Result is the outcome of one manifest execution.
type Result struct {
	RunID   string
	Project string
	Targets []TargetResult
	Elapsed time.Duration
}

// Execute runs every target of the manifest and returns the exported
// artifacts. The first failing target aborts the run.
func (r *Runner) Execute(ctx context.Context, m *project.Manifest, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:   uuid.NewString(),
		Project: m.Project.Name,
	}
	schema := block.Schema(m.Project.Schema)

	for _, target := range m.Targets {
		tr, err := r.runTarget(ctx, m, target, schema, result.RunID, opts)
		if err != nil {
			return nil, wrapTarget(err, target.Name)
		}
		result.Targets = append(result.Targets, *tr)
	}

	result.Elapsed = time.Since(start)
	r.Logger.Info("run complete",
		"run", result.RunID,
		"targets", len(result.Targets),
		"duration", result.Elapsed)
	return result, nil
}

func (r *Runner) runTarget(ctx context.Context, m *project.Manifest, target project.Target, schema block.Schema, runID string, opts Options) (*TargetResult, error) {
	raw, err := target.RawParams()
	if err != nil {
		return nil, err
	}
	blk, err := stdcell.Build(target.Block, raw)
	if err != nil {
		return nil, err
	}

	genStart := time.Now()
	var (
		cellKey  string
		exportFn func(format string) ([]byte, error)
	)
	switch target.View {
	case project.ViewSchematic:
		src, ok := blk.(schematic.Source)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupportedSchema, "block %q has no schematic generator", target.Block)
		}
		cell, err := r.Forge.GenerateSchematic(ctx, src, schema)
		if err != nil {
			return nil, err
		}
		cellKey = cell.Key()
		exportFn = func(format string) ([]byte, error) {
			return r.Registry.ExportSchematic(ctx, cell, format)
		}
	case project.ViewLayout:
		src, ok := blk.(layout.Source)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupportedSchema, "block %q has no layout generator", target.Block)
		}
		cell, err := r.Forge.GenerateLayout(ctx, src, schema)
		if err != nil {
			return nil, err
		}
		cellKey = cell.Key()
		exportFn = func(format string) ([]byte, error) {
			return r.Registry.ExportLayout(ctx, cell, format)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown view %q", target.View)
	}

	r.Logger.Info("generated cell",
		"target", target.Name,
		"view", target.View,
		"duration", time.Since(genStart))

	tr := &TargetResult{
		Target:    target.Name,
		CellKey:   cellKey,
		View:      target.View,
		Artifacts: make(map[string][]byte, len(m.Project.Formats)),
	}
	for _, format := range m.Project.Formats {
		data, hit, err := r.export(ctx, cellKey, format, opts, exportFn)
		if err != nil {
			return nil, err
		}
		tr.Artifacts[format] = data
		if hit {
			tr.CacheHits = append(tr.CacheHits, format)
		}
		if r.Store != nil {
			err := r.Store.Put(ctx, store.Artifact{
				ID:        uuid.NewString(),
				RunID:     runID,
				Project:   m.Project.Name,
				Target:    target.Name,
				CellKey:   cellKey,
				Schema:    m.Project.Schema,
				View:      target.View,
				Format:    format,
				Data:      data,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return tr, nil
}

// wrapTarget attaches the failing target's name while keeping the cause's
// error code. Causes that carry no code surface as INTERNAL_ERROR.
func wrapTarget(err error, name string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "target %q", name)
}

// export serves one format from the artifact cache or the exporter.
func (r *Runner) export(ctx context.Context, cellKey, format string, opts Options, exportFn func(string) ([]byte, error)) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(cellKey, cache.ArtifactKeyOpts{Format: format})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	data, err := exportFn(format)
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, key, data, TTLArtifact)
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	return data, false, nil
}
