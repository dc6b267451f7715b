package export

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/geometry"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/schematic"
)

const testSchema block.Schema = "spice"

// buildPair returns a cell with two instances of one shared primitive.
func buildPair(t *testing.T) *schematic.Cell {
	t.Helper()

	io := bundle.Struct(bundle.F("a", bundle.InOutOf(bundle.Signal())))
	leafCell := func() *schematic.Cell {
		b := schematic.NewBuilder("res", "res:1", testSchema, io, nil)
		b.SetPrimitive(map[string]any{"r": 1000})
		cell, err := b.Finalize()
		if err != nil {
			t.Fatalf("finalize leaf: %v", err)
		}
		return cell
	}()

	shared := &stubSource{cell: leafCell}
	b := schematic.NewBuilder("pair", "pair:1", testSchema, io, func(schematic.Source) (*schematic.Cell, error) {
		return shared.cell, nil
	})
	i1, err := b.Instantiate(shared)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	i2, err := b.Instantiate(shared)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	b.Connect(i1.Port("a"), b.IO("a"))
	b.Connect(i2.Port("a"), b.IO("a"))
	cell, err := b.Finalize()
	if err != nil {
		t.Fatalf("finalize pair: %v", err)
	}
	return cell
}

type stubSource struct{ cell *schematic.Cell }

func (s *stubSource) BlockID() string         { return "test/res" }
func (s *stubSource) Name() string            { return "res" }
func (s *stubSource) IO() *bundle.Type        { return s.cell.IOType() }
func (s *stubSource) Schemas() []block.Schema { return []block.Schema{testSchema} }
func (s *stubSource) Params() any             { return nil }
func (s *stubSource) Schematic(block.Schema, *schematic.Builder) (any, error) {
	return nil, nil
}

func TestRegistryUnsupportedSchema(t *testing.T) {
	r := NewRegistry()
	cell := buildPair(t)

	_, err := r.ExportSchematic(context.Background(), cell, FormatJSON)
	if !errors.Is(err, errors.ErrCodeUnsupportedSchema) {
		t.Fatalf("want UNSUPPORTED_SCHEMA from empty registry, got %v", err)
	}
}

func TestRegistryWildcardFallback(t *testing.T) {
	r := DefaultRegistry()
	cell := buildPair(t)

	data, err := r.ExportSchematic(context.Background(), cell, FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty artifact")
	}
	if _, err := r.ExportSchematic(context.Background(), cell, "gds2"); !errors.Is(err, errors.ErrCodeUnsupportedSchema) {
		t.Fatalf("unknown format should fail, got %v", err)
	}
}

type fixedExporter struct{ out string }

func (f fixedExporter) ExportSchematic(context.Context, *schematic.Cell) ([]byte, error) {
	return []byte(f.out), nil
}

func TestSchemaSpecificBeatsWildcard(t *testing.T) {
	r := NewRegistry()
	r.RegisterSchematic(AnySchema, "txt", fixedExporter{out: "generic"})
	r.RegisterSchematic(testSchema, "txt", fixedExporter{out: "specific"})

	data, err := r.ExportSchematic(context.Background(), buildPair(t), "txt")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(data) != "specific" {
		t.Errorf("got %q, want schema-specific exporter", data)
	}
}

func TestJSONSchematicLibrary(t *testing.T) {
	data, err := JSONExporter{}.ExportSchematic(context.Background(), buildPair(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc SchematicDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Top != "pair:1" || doc.Schema != string(testSchema) {
		t.Errorf("doc header = %+v", doc)
	}
	// The shared primitive appears once.
	if len(doc.Cells) != 2 {
		t.Fatalf("got %d cells, want pair plus one shared primitive", len(doc.Cells))
	}
	byKey := make(map[string]SchematicCellDoc)
	for _, c := range doc.Cells {
		byKey[c.Key] = c
	}
	if !byKey["res:1"].Primitive {
		t.Error("leaf cell should be primitive")
	}
	pair := byKey["pair:1"]
	if len(pair.Instances) != 2 || pair.Instances[0].Cell != "res:1" {
		t.Errorf("pair instances = %+v", pair.Instances)
	}
	if len(pair.Nets) != 1 || pair.Nets[0].Name != "a" {
		t.Errorf("pair nets = %+v", pair.Nets)
	}
}

func TestJSONLayoutLibrary(t *testing.T) {
	io := bundle.Struct(bundle.F("a", bundle.InOutOf(bundle.Signal())))
	b := layout.NewBuilder("tile", "tile:1", testSchema, io, nil)
	b.Draw("met1", geometry.RectXYWH(0, 0, 4, 2))
	b.ExposePort("a", "met1", geometry.RectXYWH(0, 0, 1, 1))
	cell, err := b.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	data, err := JSONExporter{Compact: true}.ExportLayout(context.Background(), cell)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc LayoutDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Cells) != 1 {
		t.Fatalf("got %d cells", len(doc.Cells))
	}
	c := doc.Cells[0]
	if c.Bounds != geometry.RectXYWH(0, 0, 4, 2) {
		t.Errorf("bounds = %+v", c.Bounds)
	}
	if len(c.Ports["a"]) != 1 {
		t.Errorf("ports = %+v", c.Ports)
	}
}

func TestSVGLayoutPreview(t *testing.T) {
	io := bundle.Struct(bundle.F("a", bundle.InOutOf(bundle.Signal())))
	b := layout.NewBuilder("tile", "tile:1", testSchema, io, nil)
	b.Draw("met1", geometry.RectXYWH(0, 0, 4, 2))
	b.Draw("unknown_layer", geometry.RectXYWH(4, 0, 2, 2))
	b.ExposePort("a", "met1", geometry.RectXYWH(0, 0, 1, 1))
	cell, err := b.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	data, err := SVGLayoutExporter{}.ExportLayout(context.Background(), cell)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	svg := string(data)
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 6">`,
		`<title>tile</title>`,
		layerColors["met1"],
		defaultLayerColor,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG output missing %q:\n%s", want, svg)
		}
	}
}

func TestDOTNetlist(t *testing.T) {
	dot := ToDOT(buildPair(t))
	for _, want := range []string{
		`graph "pair"`,
		`"inst:res"`,
		`"inst:res_1"`,
		`"io:a"`,
		`"net:a"`,
		` -- `,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
