package layout

import (
	"fmt"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/geometry"
)

// Source is a block that can generate a layout.
type Source interface {
	block.Block

	// Layout populates the builder for the given schema. Its first return
	// value becomes the cell's auxiliary Data.
	Layout(schema block.Schema, b *Builder) (any, error)
}

// GenerateFunc resolves a child block to its generated layout cell. The
// generation context supplies this callback so that nested placement
// re-enters the shared cache (and its cycle detection).
type GenerateFunc func(child Source) (*Cell, error)

// Builder accumulates the contents of one layout cell. It is created by the
// generation context, handed to a single generator invocation, and consumed
// by Finalize. Builders are not safe for concurrent use.
type Builder struct {
	name   string
	key    string
	schema block.Schema
	ioType *bundle.Type
	gen    GenerateFunc

	shapes    []geometry.Shape
	ports     map[string][]geometry.Shape
	leafPaths map[string]bool
	instances []*Instance
	nameSeq   map[string]int
	data      any

	errs      []error
	finalized bool
}

// NewBuilder creates a builder for one generation of the named block.
// It is exported for the generation context; block generators never
// construct builders themselves.
func NewBuilder(name, key string, schema block.Schema, io *bundle.Type, gen GenerateFunc) *Builder {
	b := &Builder{
		name:      name,
		key:       key,
		schema:    schema,
		ioType:    io,
		gen:       gen,
		ports:     make(map[string][]geometry.Shape),
		leafPaths: make(map[string]bool),
		nameSeq:   make(map[string]int),
	}
	for _, leaf := range io.Flatten() {
		b.leafPaths[leaf.Path] = true
	}
	return b
}

// Schema returns the schema this cell is being generated in.
func (b *Builder) Schema() block.Schema { return b.schema }

// Draw adds a rectangle on the given layer in the cell's local coordinates.
// Degenerate rectangles record an error reported at finalize.
func (b *Builder) Draw(layer geometry.LayerID, r geometry.Rect) {
	if b.finalized {
		b.deferErr(errors.New(errors.ErrCodeInternal, "Draw called on finalized builder of %s", b.name))
		return
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		b.deferErr(errors.New(errors.ErrCodeGeometry, "cell %s: degenerate rect %s on layer %s", b.name, r, layer))
		return
	}
	b.shapes = append(b.shapes, geometry.Shape{Layer: layer, Rect: r})
}

// ExposePort binds a rectangle on the given layer to the IO leaf at path.
// Every IO leaf must be exposed at least once before finalize. The shape
// also contributes to the cell's drawn geometry.
func (b *Builder) ExposePort(path string, layer geometry.LayerID, r geometry.Rect) {
	if b.finalized {
		b.deferErr(errors.New(errors.ErrCodeInternal, "ExposePort called on finalized builder of %s", b.name))
		return
	}
	if !b.leafPaths[path] {
		b.deferErr(errors.New(errors.ErrCodeGeometry, "cell %s has no IO leaf %q to expose", b.name, path))
		return
	}
	if r.Width() <= 0 || r.Height() <= 0 {
		b.deferErr(errors.New(errors.ErrCodeGeometry, "cell %s: degenerate port rect %s for %q", b.name, r, path))
		return
	}
	b.ports[path] = append(b.ports[path], geometry.Shape{Layer: layer, Rect: r})
}

// Place generates the child block (through the shared generation context)
// and adds an instance of its cell under the given transform. The child's
// failure, including recursion errors, propagates unchanged.
func (b *Builder) Place(child Source, t geometry.Transform) (*Instance, error) {
	if b.finalized {
		return nil, errors.New(errors.ErrCodeInternal, "Place called on finalized builder of %s", b.name)
	}
	cell, err := b.gen(child)
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		name:  b.uniqueName(child.Name()),
		cell:  cell,
		trans: t,
	}
	b.instances = append(b.instances, inst)
	return inst, nil
}

// PlaceAt is shorthand for Place with a pure translation.
func (b *Builder) PlaceAt(child Source, x, y int64) (*Instance, error) {
	return b.Place(child, geometry.Translate(x, y))
}

// SetData attaches the generator's auxiliary payload. The generation
// context calls this with the generator's return value.
func (b *Builder) SetData(v any) { b.data = v }

// uniqueName appends a sequence number to deduplicate instance names.
func (b *Builder) uniqueName(base string) string {
	if base == "" {
		base = "x"
	}
	seq := b.nameSeq[base]
	b.nameSeq[base] = seq + 1
	if seq == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, seq)
}

func (b *Builder) deferErr(err error) {
	b.errs = append(b.errs, err)
}

// Instance is a placed occurrence of a child cell within a parent builder.
// The child cell is shared, never owned; the instance carries only the
// placement transform.
type Instance struct {
	name  string
	cell  *Cell
	trans geometry.Transform
}

// Name returns the instance name, unique within the parent cell.
func (i *Instance) Name() string { return i.name }

// Cell returns the shared child cell.
func (i *Instance) Cell() *Cell { return i.cell }

// Transform returns the placement transform mapping the child's local
// coordinates into the parent's.
func (i *Instance) Transform() geometry.Transform { return i.trans }

// Bounds returns the child's bounding box projected into the parent's
// coordinates. Axis-aligned orientations keep the box exact.
func (i *Instance) Bounds() geometry.Rect {
	return i.trans.ApplyRect(i.cell.Bounds())
}

// Port returns the child's port geometry at the given IO leaf path,
// projected into the parent's coordinates.
func (i *Instance) Port(path string) []geometry.Shape {
	return geometry.TransformShapes(i.cell.Port(path), i.trans)
}
