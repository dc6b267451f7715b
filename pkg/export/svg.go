package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/cellforge/cellforge/pkg/geometry"
	"github.com/cellforge/cellforge/pkg/layout"
)

// layerColors assigns preview colors to common layer names. Unknown layers
// fall back to gray.
var layerColors = map[geometry.LayerID]string{
	"diff": "#4e9a06",
	"poly": "#c4a000",
	"met1": "#3465a4",
	"met2": "#75507b",
	"tap":  "#8f5902",
}

const defaultLayerColor = "#888888"

// svgMargin is the whitespace around the drawn bounding box, in layout units.
const svgMargin = 2

// SVGLayoutExporter renders the flattened geometry of a layout cell as an
// SVG preview: one translucent rectangle per shape, colored by layer.
// Coordinates are flipped vertically so the layout's origin sits at the
// bottom left, matching the usual mask convention.
type SVGLayoutExporter struct{}

// ExportLayout renders the cell.
func (SVGLayoutExporter) ExportLayout(_ context.Context, cell *layout.Cell) ([]byte, error) {
	shapes := cell.FlatShapes()
	bbox := cell.Bounds()
	width := bbox.Width() + 2*svgMargin
	height := bbox.Height() + 2*svgMargin

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`+"\n", width, height)
	fmt.Fprintf(&b, `<title>%s</title>`+"\n", xmlEscape(cell.Name()))

	for _, s := range shapes {
		color, ok := layerColors[s.Layer]
		if !ok {
			color = defaultLayerColor
		}
		r := s.Rect
		x := r.X0 - bbox.X0 + svgMargin
		y := bbox.Y1 - r.Y1 + svgMargin
		fmt.Fprintf(&b,
			`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="0.6"><desc>%s</desc></rect>`+"\n",
			x, y, r.Width(), r.Height(), color, xmlEscape(string(s.Layer)))
	}

	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
