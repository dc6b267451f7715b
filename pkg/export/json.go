package export

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/geometry"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// JSONExporter serializes a cell and its transitive children into a
// deterministic JSON library document. Shared children appear once,
// referenced by key from each instantiation site.
type JSONExporter struct {
	// Compact disables indentation; the zero value exports pretty-printed
	// output.
	Compact bool
}

// SchematicDoc is the root of an exported schematic library.
type SchematicDoc struct {
	Top    string             `json:"top" bson:"top"`
	Schema string             `json:"schema" bson:"schema"`
	Cells  []SchematicCellDoc `json:"cells" bson:"cells"`
}

// SchematicCellDoc is one schematic cell in a library document.
type SchematicCellDoc struct {
	Name      string            `json:"name" bson:"name"`
	Key       string            `json:"key" bson:"key"`
	IO        []IOLeafDoc       `json:"io" bson:"io"`
	Nets      []schematic.Net   `json:"nets" bson:"nets"`
	Instances []InstanceDoc     `json:"instances,omitempty" bson:"instances,omitempty"`
	Primitive bool              `json:"primitive,omitempty" bson:"primitive,omitempty"`
	Params    any               `json:"params,omitempty" bson:"params,omitempty"`
	Data      any               `json:"data,omitempty" bson:"data,omitempty"`
}

// IOLeafDoc describes one IO leaf and the net it resolves to.
type IOLeafDoc struct {
	Path string `json:"path" bson:"path"`
	Dir  string `json:"dir" bson:"dir"`
	Net  string `json:"net,omitempty" bson:"net,omitempty"`
}

// InstanceDoc references a child cell by key with its port bindings.
type InstanceDoc struct {
	Name  string            `json:"name" bson:"name"`
	Cell  string            `json:"cell" bson:"cell"`
	Conns map[string]string `json:"conns" bson:"conns"`
}

// ExportSchematic serializes the cell library rooted at cell.
func (e JSONExporter) ExportSchematic(_ context.Context, cell *schematic.Cell) ([]byte, error) {
	seen := make(map[string]*schematic.Cell)
	collectSchematic(cell, seen)

	doc := SchematicDoc{
		Top:    cell.Key(),
		Schema: string(cell.Schema()),
	}
	for _, key := range sortedKeys(seen) {
		c := seen[key]
		cd := SchematicCellDoc{
			Name:      c.Name(),
			Key:       c.Key(),
			Nets:      c.Nets(),
			Primitive: c.IsPrimitive(),
			Params:    c.PrimitiveParams(),
			Data:      c.Data(),
		}
		for _, leaf := range c.IOType().Flatten() {
			d := IOLeafDoc{Path: leaf.Path, Dir: leaf.Dir.String()}
			if net, ok := c.IONet(leaf.Path); ok {
				d.Net = net.Name
			}
			cd.IO = append(cd.IO, d)
		}
		for _, inst := range c.Instances() {
			cd.Instances = append(cd.Instances, InstanceDoc{
				Name:  inst.Name(),
				Cell:  inst.Cell().Key(),
				Conns: inst.Conns(),
			})
		}
		doc.Cells = append(doc.Cells, cd)
	}
	return e.marshal(doc)
}

func collectSchematic(c *schematic.Cell, seen map[string]*schematic.Cell) {
	if _, ok := seen[c.Key()]; ok {
		return
	}
	seen[c.Key()] = c
	for _, inst := range c.Instances() {
		collectSchematic(inst.Cell(), seen)
	}
}

// LayoutDoc is the root of an exported layout library.
type LayoutDoc struct {
	Top    string          `json:"top" bson:"top"`
	Schema string          `json:"schema" bson:"schema"`
	Cells  []LayoutCellDoc `json:"cells" bson:"cells"`
}

// LayoutCellDoc is one layout cell in a library document.
type LayoutCellDoc struct {
	Name      string                      `json:"name" bson:"name"`
	Key       string                      `json:"key" bson:"key"`
	Bounds    geometry.Rect               `json:"bounds" bson:"bounds"`
	Shapes    []geometry.Shape            `json:"shapes,omitempty" bson:"shapes,omitempty"`
	Ports     map[string][]geometry.Shape `json:"ports,omitempty" bson:"ports,omitempty"`
	Instances []PlacementDoc              `json:"instances,omitempty" bson:"instances,omitempty"`
	Data      any                         `json:"data,omitempty" bson:"data,omitempty"`
}

// PlacementDoc references a placed child cell by key with its transform.
type PlacementDoc struct {
	Name      string             `json:"name" bson:"name"`
	Cell      string             `json:"cell" bson:"cell"`
	Transform geometry.Transform `json:"transform" bson:"transform"`
}

// ExportLayout serializes the cell library rooted at cell.
func (e JSONExporter) ExportLayout(_ context.Context, cell *layout.Cell) ([]byte, error) {
	seen := make(map[string]*layout.Cell)
	collectLayout(cell, seen)

	doc := LayoutDoc{
		Top:    cell.Key(),
		Schema: string(cell.Schema()),
	}
	for _, key := range sortedKeys(seen) {
		c := seen[key]
		cd := LayoutCellDoc{
			Name:   c.Name(),
			Key:    c.Key(),
			Bounds: c.Bounds(),
			Shapes: c.Shapes(),
			Data:   c.Data(),
		}
		if paths := c.PortPaths(); len(paths) > 0 {
			cd.Ports = make(map[string][]geometry.Shape, len(paths))
			for _, p := range paths {
				cd.Ports[p] = c.Port(p)
			}
		}
		for _, inst := range c.Instances() {
			cd.Instances = append(cd.Instances, PlacementDoc{
				Name:      inst.Name(),
				Cell:      inst.Cell().Key(),
				Transform: inst.Transform(),
			})
		}
		doc.Cells = append(doc.Cells, cd)
	}
	return e.marshal(doc)
}

func collectLayout(c *layout.Cell, seen map[string]*layout.Cell) {
	if _, ok := seen[c.Key()]; ok {
		return
	}
	seen[c.Key()] = c
	for _, inst := range c.Instances() {
		collectLayout(inst.Cell(), seen)
	}
}

func (e JSONExporter) marshal(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if !e.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode cell library")
	}
	return buf.Bytes(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
