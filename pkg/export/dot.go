package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// DOTExporter renders a schematic cell as a Graphviz DOT netlist diagram:
// instances as boxes, nets as small points, one edge per port binding.
// Only the top cell is expanded; child cells appear as their instances.
type DOTExporter struct{}

// ExportSchematic converts the cell to DOT format.
func (DOTExporter) ExportSchematic(_ context.Context, cell *schematic.Cell) ([]byte, error) {
	return []byte(ToDOT(cell)), nil
}

// ToDOT converts a schematic cell to Graphviz DOT format. The resulting DOT
// string can be rendered with [RenderSVG].
func ToDOT(cell *schematic.Cell) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", cell.Name())
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=grey40];\n")
	buf.WriteString("\n")

	for _, inst := range cell.Instances() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", "inst:"+inst.Name(),
			inst.Name()+"\n"+inst.Cell().Name())
	}
	for _, leaf := range cell.IOType().Flatten() {
		fmt.Fprintf(&buf, "  %q [shape=cds, style=filled, fillcolor=lightyellow, label=%q];\n",
			"io:"+leaf.Path, leaf.Path)
	}

	buf.WriteString("\n")
	for _, net := range cell.Nets() {
		nid := "net:" + net.Name
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.08, xlabel=%q];\n", nid, net.Name)
		for _, p := range net.Ports {
			if p.Instance == "" {
				fmt.Fprintf(&buf, "  %q -- %q;\n", "io:"+p.Port, nid)
			} else {
				fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=10];\n",
					"inst:"+p.Instance, nid, portLabel(p.Port))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// portLabel shortens nested leaf paths to their last segment.
func portLabel(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// SVGExporter renders a schematic cell's netlist diagram as SVG via
// Graphviz layout of the DOT form.
type SVGExporter struct{}

// ExportSchematic converts the cell to SVG.
func (SVGExporter) ExportSchematic(ctx context.Context, cell *schematic.Cell) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(cell))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return buf.Bytes(), nil
}
