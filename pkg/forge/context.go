package forge

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/observability"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// View selects which representation of a block an entry holds.
type View string

// The two generated views of a block.
const (
	ViewSchematic View = "schematic"
	ViewLayout    View = "layout"
)

// entryKey identifies one memoized construction.
type entryKey struct {
	key    string
	schema block.Schema
	view   View
}

// entry is one memoization slot. done is closed when the construction
// finishes; cell and err are immutable afterwards.
type entry struct {
	done chan struct{}
	cell any
	err  error
}

// Context is the shared generation context. It is safe for concurrent use;
// any number of goroutines may request overlapping block trees.
//
// The zero value is not usable; create contexts with [NewContext].
type Context struct {
	mu      sync.Mutex
	entries map[entryKey]*entry
	gens    atomic.Int64
	logger  *log.Logger
}

// NewContext creates an empty generation context.
// If logger is nil, the default logger is used.
func NewContext(logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{
		entries: make(map[entryKey]*entry),
		logger:  logger,
	}
}

// Generations returns the number of cell constructions this context has
// begun. Requests deduplicated against an existing entry do not count, so
// the counter measures actual generator work.
func (c *Context) Generations() int64 { return c.gens.Load() }

// GenerateSchematic returns the schematic cell for the block in the given
// schema, constructing it on first request and reusing it afterwards.
func (c *Context) GenerateSchematic(ctx context.Context, blk schematic.Source, schema block.Schema) (*schematic.Cell, error) {
	v, err := c.generate(ctx, blk, schema, ViewSchematic, nil, c.schematicBuilder(blk, schema))
	if err != nil {
		return nil, err
	}
	return v.(*schematic.Cell), nil
}

// GenerateLayout returns the layout cell for the block in the given schema,
// constructing it on first request and reusing it afterwards.
func (c *Context) GenerateLayout(ctx context.Context, blk layout.Source, schema block.Schema) (*layout.Cell, error) {
	v, err := c.generate(ctx, blk, schema, ViewLayout, nil, c.layoutBuilder(blk, schema))
	if err != nil {
		return nil, err
	}
	return v.(*layout.Cell), nil
}

// buildFunc constructs one cell. The path parameter is the generation path
// including the entry being built, for cycle detection in nested requests.
type buildFunc func(ctx context.Context, path []entryKey) (any, error)

// generate resolves one entry: dedup against the table, or construct.
func (c *Context) generate(ctx context.Context, blk block.Block, schema block.Schema, view View, path []entryKey, build buildFunc) (any, error) {
	ek := entryKey{key: block.Key(blk), schema: schema, view: view}

	for _, p := range path {
		if p == ek {
			return nil, errors.New(errors.ErrCodeRecursion,
				"generation cycle: %s", cycleString(path, ek))
		}
	}
	if !block.Supports(blk, schema) {
		return nil, errors.New(errors.ErrCodeUnsupportedSchema,
			"block %s (%s) does not support schema %q", blk.Name(), blk.BlockID(), schema)
	}

	c.mu.Lock()
	if e, ok := c.entries[ek]; ok {
		c.mu.Unlock()
		observability.Generate().OnGenerateDedup(ctx, ek.key, string(schema), string(view))
		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return e.cell, e.err
	}
	e := &entry{done: make(chan struct{})}
	c.entries[ek] = e
	c.mu.Unlock()

	c.gens.Add(1)
	observability.Generate().OnGenerateStart(ctx, ek.key, string(schema), string(view))
	c.logger.Debug("generating cell", "key", ek.key, "schema", schema, "view", view)

	// Extend the path with a private copy: sibling constructions must not
	// share the backing array.
	next := make([]entryKey, len(path)+1)
	copy(next, path)
	next[len(path)] = ek

	start := time.Now()
	e.cell, e.err = c.construct(ctx, blk, next, build)
	close(e.done)

	observability.Generate().OnGenerateComplete(ctx, ek.key, string(schema), string(view), time.Since(start), e.err)
	if e.err != nil {
		c.logger.Debug("generation failed", "key", ek.key, "view", view, "err", e.err)
	} else {
		c.logger.Debug("generated cell", "key", ek.key, "view", view, "duration", time.Since(start))
	}
	return e.cell, e.err
}

// construct runs the build function with panic containment. A recovered
// panic becomes the entry's terminal error.
func (c *Context) construct(ctx context.Context, blk block.Block, path []entryKey, build buildFunc) (cell any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cell = nil
			err = errors.New(errors.ErrCodeInternal, "panic generating %s: %v", blk.Name(), r)
		}
	}()
	return build(ctx, path)
}

// schematicBuilder adapts a schematic source into a buildFunc. Nested
// instantiations re-enter generate with the extended path.
func (c *Context) schematicBuilder(blk schematic.Source, schema block.Schema) buildFunc {
	return func(ctx context.Context, path []entryKey) (any, error) {
		b := schematic.NewBuilder(blk.Name(), block.Key(blk), schema, blk.IO(), func(child schematic.Source) (*schematic.Cell, error) {
			v, err := c.generate(ctx, child, schema, ViewSchematic, path, c.schematicBuilder(child, schema))
			if err != nil {
				return nil, err
			}
			return v.(*schematic.Cell), nil
		})
		data, err := blk.Schematic(schema, b)
		if err != nil {
			return nil, err
		}
		b.SetData(data)
		return b.Finalize()
	}
}

// layoutBuilder adapts a layout source into a buildFunc.
func (c *Context) layoutBuilder(blk layout.Source, schema block.Schema) buildFunc {
	return func(ctx context.Context, path []entryKey) (any, error) {
		b := layout.NewBuilder(blk.Name(), block.Key(blk), schema, blk.IO(), func(child layout.Source) (*layout.Cell, error) {
			v, err := c.generate(ctx, child, schema, ViewLayout, path, c.layoutBuilder(child, schema))
			if err != nil {
				return nil, err
			}
			return v.(*layout.Cell), nil
		})
		data, err := blk.Layout(schema, b)
		if err != nil {
			return nil, err
		}
		b.SetData(data)
		return b.Finalize()
	}
}

// cycleString renders the generation path from the repeated entry onward.
func cycleString(path []entryKey, repeat entryKey) string {
	var sb strings.Builder
	started := false
	for _, p := range path {
		if p == repeat {
			started = true
		}
		if started {
			sb.WriteString(p.key)
			sb.WriteString(" -> ")
		}
	}
	sb.WriteString(repeat.key)
	return sb.String()
}
