// Package export lowers finalized cells into backend artifacts.
//
// Exporters are registered in a [Registry] keyed by (schema, format). A
// request with no matching exporter fails with an UNSUPPORTED_SCHEMA error,
// never a default or empty artifact. Exporters traverse cells only through
// their public accessors; builder state is gone by the time a cell reaches
// an exporter.
package export

import (
	"context"
	"sync"
	"time"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/observability"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// Built-in artifact formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// AnySchema registers an exporter for every schema that has no
// schema-specific exporter for the format.
const AnySchema block.Schema = "*"

// SchematicExporter lowers a finalized schematic cell into one format.
type SchematicExporter interface {
	ExportSchematic(ctx context.Context, cell *schematic.Cell) ([]byte, error)
}

// LayoutExporter lowers a finalized layout cell into one format.
type LayoutExporter interface {
	ExportLayout(ctx context.Context, cell *layout.Cell) ([]byte, error)
}

// regKey is one registration slot.
type regKey struct {
	schema block.Schema
	format string
}

// Registry maps (schema, format) pairs to exporters. It is safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	mu        sync.RWMutex
	schematic map[regKey]SchematicExporter
	layout    map[regKey]LayoutExporter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schematic: make(map[regKey]SchematicExporter),
		layout:    make(map[regKey]LayoutExporter),
	}
}

// DefaultRegistry returns a registry with the bundled exporters installed
// for every schema: JSON cell libraries, and DOT/SVG netlist diagrams.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterSchematic(AnySchema, FormatJSON, JSONExporter{})
	r.RegisterLayout(AnySchema, FormatJSON, JSONExporter{})
	r.RegisterSchematic(AnySchema, FormatDOT, DOTExporter{})
	r.RegisterSchematic(AnySchema, FormatSVG, SVGExporter{})
	r.RegisterLayout(AnySchema, FormatSVG, SVGLayoutExporter{})
	return r
}

// RegisterSchematic installs a schematic exporter for the (schema, format)
// pair, replacing any previous registration.
func (r *Registry) RegisterSchematic(schema block.Schema, format string, e SchematicExporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schematic[regKey{schema, format}] = e
}

// RegisterLayout installs a layout exporter for the (schema, format) pair,
// replacing any previous registration.
func (r *Registry) RegisterLayout(schema block.Schema, format string, e LayoutExporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layout[regKey{schema, format}] = e
}

// SchematicFor returns the exporter registered for the schema and format,
// falling back to the AnySchema registration.
func (r *Registry) SchematicFor(schema block.Schema, format string) (SchematicExporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.schematic[regKey{schema, format}]; ok {
		return e, true
	}
	e, ok := r.schematic[regKey{AnySchema, format}]
	return e, ok
}

// LayoutFor returns the exporter registered for the schema and format,
// falling back to the AnySchema registration.
func (r *Registry) LayoutFor(schema block.Schema, format string) (LayoutExporter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.layout[regKey{schema, format}]; ok {
		return e, true
	}
	e, ok := r.layout[regKey{AnySchema, format}]
	return e, ok
}

// ExportSchematic lowers the cell into the given format.
func (r *Registry) ExportSchematic(ctx context.Context, cell *schematic.Cell, format string) ([]byte, error) {
	e, ok := r.SchematicFor(cell.Schema(), format)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedSchema,
			"no schematic exporter for schema %q format %q", cell.Schema(), format)
	}
	observability.Export().OnExportStart(ctx, string(cell.Schema()), format)
	start := time.Now()
	data, err := e.ExportSchematic(ctx, cell)
	observability.Export().OnExportComplete(ctx, string(cell.Schema()), format, len(data), time.Since(start), err)
	return data, err
}

// ExportLayout lowers the cell into the given format.
func (r *Registry) ExportLayout(ctx context.Context, cell *layout.Cell, format string) ([]byte, error) {
	e, ok := r.LayoutFor(cell.Schema(), format)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedSchema,
			"no layout exporter for schema %q format %q", cell.Schema(), format)
	}
	observability.Export().OnExportStart(ctx, string(cell.Schema()), format)
	start := time.Now()
	data, err := e.ExportLayout(ctx, cell)
	observability.Export().OnExportComplete(ctx, string(cell.Schema()), format, len(data), time.Since(start), err)
	return data, err
}
