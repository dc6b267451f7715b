package layout

import (
	"sort"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/geometry"
)

// Cell is the immutable result of generating a block's layout in one schema.
// Cells are created once per (block, schema) key and shared read-only by
// every parent that places them.
type Cell struct {
	name      string
	key       string
	schema    block.Schema
	ioType    *bundle.Type
	shapes    []geometry.Shape
	ports     map[string][]geometry.Shape
	instances []*Instance
	bbox      geometry.Rect
	data      any
}

// Name returns the cell name.
func (c *Cell) Name() string { return c.name }

// Key returns the block identity key this cell was generated from.
func (c *Cell) Key() string { return c.key }

// Schema returns the schema the cell was generated in.
func (c *Cell) Schema() block.Schema { return c.schema }

// IOType returns the cell's port interface declaration.
func (c *Cell) IOType() *bundle.Type { return c.ioType }

// Shapes returns the cell's own drawn geometry, port shapes included,
// in local coordinates.
func (c *Cell) Shapes() []geometry.Shape {
	out := make([]geometry.Shape, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Port returns the port geometry bound to the IO leaf at the given path,
// in local coordinates. Unknown paths return nil.
func (c *Cell) Port(path string) []geometry.Shape {
	ps := c.ports[path]
	out := make([]geometry.Shape, len(ps))
	copy(out, ps)
	return out
}

// PortPaths returns the exposed IO leaf paths in sorted order.
func (c *Cell) PortPaths() []string {
	paths := make([]string, 0, len(c.ports))
	for p := range c.ports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Instances returns the placed child instances in placement order.
func (c *Cell) Instances() []*Instance {
	out := make([]*Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// Bounds returns the bounding box of the cell's own geometry and every
// placed instance.
func (c *Cell) Bounds() geometry.Rect { return c.bbox }

// Data returns the generator's auxiliary payload.
func (c *Cell) Data() any { return c.data }

// FlatShapes returns the cell's geometry with every instance recursively
// flattened into local coordinates. Intended for exporters and tests, not
// the hot path: shared cells are expanded per placement.
func (c *Cell) FlatShapes() []geometry.Shape {
	var out []geometry.Shape
	c.flatten(geometry.Identity, &out)
	return out
}

func (c *Cell) flatten(t geometry.Transform, out *[]geometry.Shape) {
	*out = append(*out, geometry.TransformShapes(c.shapes, t)...)
	for _, inst := range c.instances {
		inst.cell.flatten(geometry.Compose(t, inst.trans), out)
	}
}

// Finalize validates the geometry and produces the immutable cell. It is
// called by the generation context exactly once per builder.
//
// Every IO leaf must have at least one exposed port shape, and the cell
// must contain some geometry (own shapes or placed instances); violations
// surface as GEOMETRY errors.
func (b *Builder) Finalize() (*Cell, error) {
	if b.finalized {
		return nil, errors.New(errors.ErrCodeInternal, "builder of %s already finalized", b.name)
	}
	b.finalized = true

	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	for _, leaf := range b.ioType.Flatten() {
		if len(b.ports[leaf.Path]) == 0 {
			return nil, errors.New(errors.ErrCodeGeometry,
				"cell %s: IO leaf %q has no exposed port geometry", b.name, leaf.Path)
		}
	}

	shapes := b.shapes
	for _, leaf := range b.ioType.Flatten() {
		shapes = append(shapes, b.ports[leaf.Path]...)
	}
	if len(shapes) == 0 && len(b.instances) == 0 {
		return nil, errors.New(errors.ErrCodeGeometry, "cell %s is empty", b.name)
	}

	var bounds []geometry.Rect
	for _, s := range shapes {
		bounds = append(bounds, s.Rect)
	}
	for _, inst := range b.instances {
		bounds = append(bounds, inst.Bounds())
	}
	bbox, _ := geometry.BoundRects(bounds)

	return &Cell{
		name:      b.name,
		key:       b.key,
		schema:    b.schema,
		ioType:    b.ioType,
		shapes:    shapes,
		ports:     b.ports,
		instances: b.instances,
		bbox:      bbox,
		data:      b.data,
	}, nil
}
