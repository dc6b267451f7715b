package stdcell

import (
	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/geometry"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// The schemas the reference library generates into.
const (
	// SchemaSpice is the schematic netlist schema.
	SchemaSpice block.Schema = "spice"
	// SchemaGDS is the layout schema.
	SchemaGDS block.Schema = "gds"
)

// Process layers used by the reference layouts. Layer names are tags the
// geometry engine passes through untouched.
const (
	LayerDiff geometry.LayerID = "diff"
	LayerPoly geometry.LayerID = "poly"
	LayerMet1 geometry.LayerID = "met1"
	LayerTap  geometry.LayerID = "tap"
)

// MosParams sizes a MOS device. Dimensions are in database units.
type MosParams struct {
	W int64 `json:"w"`
	L int64 `json:"l"`
}

// mosIO is the four-terminal MOS interface: drain, gate, source, bulk.
func mosIO() *bundle.Type {
	return bundle.Struct(
		bundle.F("d", bundle.InOutOf(bundle.Signal())),
		bundle.F("g", bundle.In(bundle.Signal())),
		bundle.F("s", bundle.InOutOf(bundle.Signal())),
		bundle.F("b", bundle.InOutOf(bundle.Signal())),
	)
}

// Nmos is an n-channel MOS primitive.
type Nmos struct {
	P MosParams
}

// NewNmos returns an NMOS device with the given width and length.
func NewNmos(w, l int64) *Nmos { return &Nmos{P: MosParams{W: w, L: l}} }

func (n *Nmos) BlockID() string         { return "stdcell/nmos" }
func (n *Nmos) Name() string            { return "mn" }
func (n *Nmos) IO() *bundle.Type        { return mosIO() }
func (n *Nmos) Schemas() []block.Schema { return []block.Schema{SchemaSpice, SchemaGDS} }
func (n *Nmos) Params() any             { return n.P }

// Schematic emits the device as a schema primitive.
func (n *Nmos) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	b.SetPrimitive(map[string]any{"model": "nmos", "w": n.P.W, "l": n.P.L})
	return nil, nil
}

// Layout draws a horizontal transistor: diffusion strip, poly gate crossing
// it, metal pads on source and drain, and a substrate tap below.
func (n *Nmos) Layout(_ block.Schema, b *layout.Builder) (any, error) {
	drawMos(b, n.P)
	return nil, nil
}

// Pmos is a p-channel MOS primitive.
type Pmos struct {
	P MosParams
}

// NewPmos returns a PMOS device with the given width and length.
func NewPmos(w, l int64) *Pmos { return &Pmos{P: MosParams{W: w, L: l}} }

func (p *Pmos) BlockID() string         { return "stdcell/pmos" }
func (p *Pmos) Name() string            { return "mp" }
func (p *Pmos) IO() *bundle.Type        { return mosIO() }
func (p *Pmos) Schemas() []block.Schema { return []block.Schema{SchemaSpice, SchemaGDS} }
func (p *Pmos) Params() any             { return p.P }

// Schematic emits the device as a schema primitive.
func (p *Pmos) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	b.SetPrimitive(map[string]any{"model": "pmos", "w": p.P.W, "l": p.P.L})
	return nil, nil
}

// Layout draws the same footprint as the NMOS; well layers are left to the
// backend schema.
func (p *Pmos) Layout(_ block.Schema, b *layout.Builder) (any, error) {
	drawMos(b, p.P)
	return nil, nil
}

// MOS layout dimensions in database units.
const (
	mosPad    = 4 // source/drain diffusion extension
	mosPadMet = 2 // metal pad width within the extension
	mosPolyWr = 2 // poly wrap beyond the channel
	mosTapGap = 4 // gap between diffusion and tap row
	mosTapH   = 2 // tap row height
)

// drawMos renders the shared four-terminal footprint. Origin is the lower
// left of the diffusion strip.
func drawMos(b *layout.Builder, p MosParams) {
	w, l := p.W, p.L

	b.Draw(LayerDiff, geometry.RectXYWH(0, 0, l+2*mosPad, w))
	b.Draw(LayerPoly, geometry.RectXYWH(mosPad, -mosPolyWr, l, w+2*mosPolyWr))

	b.ExposePort("s", LayerMet1, geometry.RectXYWH(0, 0, mosPadMet, w))
	b.ExposePort("d", LayerMet1, geometry.RectXYWH(l+2*mosPad-mosPadMet, 0, mosPadMet, w))
	b.ExposePort("g", LayerPoly, geometry.RectXYWH(mosPad, w, l, mosPolyWr))
	b.ExposePort("b", LayerTap, geometry.RectXYWH(0, -mosTapGap-mosTapH, l+2*mosPad, mosTapH))
}
