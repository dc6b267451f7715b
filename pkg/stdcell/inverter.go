package stdcell

import (
	"fmt"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/geometry"
	"github.com/cellforge/cellforge/pkg/layout"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// InverterParams sizes the two devices of an inverter.
type InverterParams struct {
	NW int64 `json:"nw"` // NMOS width
	PW int64 `json:"pw"` // PMOS width
	L  int64 `json:"l"`  // channel length, shared
}

// Inverter is a CMOS inverter composed of one NMOS and one PMOS device.
type Inverter struct {
	P InverterParams
}

// NewInverter returns an inverter with the given device sizes.
func NewInverter(nw, pw, l int64) *Inverter {
	return &Inverter{P: InverterParams{NW: nw, PW: pw, L: l}}
}

func invIO() *bundle.Type {
	return bundle.Struct(
		bundle.F("din", bundle.In(bundle.Signal())),
		bundle.F("dout", bundle.Out(bundle.Signal())),
		bundle.F("vdd", bundle.InOutOf(bundle.Signal())),
		bundle.F("vss", bundle.InOutOf(bundle.Signal())),
	)
}

func (v *Inverter) BlockID() string         { return "stdcell/inverter" }
func (v *Inverter) Name() string            { return "inv" }
func (v *Inverter) IO() *bundle.Type        { return invIO() }
func (v *Inverter) Schemas() []block.Schema { return []block.Schema{SchemaSpice, SchemaGDS} }
func (v *Inverter) Params() any             { return v.P }

// Schematic ties the gates to din, the drains to dout, and the sources and
// bulks to the rails.
func (v *Inverter) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	mn, err := b.Instantiate(NewNmos(v.P.NW, v.P.L))
	if err != nil {
		return nil, err
	}
	mp, err := b.Instantiate(NewPmos(v.P.PW, v.P.L))
	if err != nil {
		return nil, err
	}
	b.Connect(mn.Port("g"), b.IO("din"))
	b.Connect(mp.Port("g"), b.IO("din"))
	b.Connect(mn.Port("d"), b.IO("dout"))
	b.Connect(mp.Port("d"), b.IO("dout"))
	b.Connect(mn.Port("s"), b.IO("vss"))
	b.Connect(mn.Port("b"), b.IO("vss"))
	b.Connect(mp.Port("s"), b.IO("vdd"))
	b.Connect(mp.Port("b"), b.IO("vdd"))
	return nil, nil
}

// Inverter layout dimensions in database units.
const (
	invGap  = 6 // vertical gap between the NMOS and PMOS footprints
	invRail = 4 // supply rail height
)

// mosFootprint returns the bounding box drawMos produces for the given
// device, in the device's local coordinates.
func mosFootprint(p MosParams) geometry.Rect {
	return geometry.Rect{
		X0: 0,
		Y0: -(mosTapGap + mosTapH),
		X1: p.L + 2*mosPad,
		Y1: p.W + mosPolyWr,
	}
}

// Layout stacks the NMOS below the PMOS, runs a shared poly gate strip for
// din, a metal drain strip for dout, and supply rails top and bottom.
func (v *Inverter) Layout(_ block.Schema, b *layout.Builder) (any, error) {
	nFoot := mosFootprint(MosParams{W: v.P.NW, L: v.P.L})
	pFoot := mosFootprint(MosParams{W: v.P.PW, L: v.P.L})
	width := v.P.L + 2*mosPad

	// Lift the NMOS so its footprint bottom sits on y=0, then stack the
	// PMOS above with a routing gap.
	nOff := -nFoot.Y0
	nTop := nOff + nFoot.Y1
	pOff := nTop + invGap - pFoot.Y0
	pTop := pOff + pFoot.Y1

	if _, err := b.PlaceAt(NewNmos(v.P.NW, v.P.L), 0, nOff); err != nil {
		return nil, err
	}
	if _, err := b.PlaceAt(NewPmos(v.P.PW, v.P.L), 0, pOff); err != nil {
		return nil, err
	}

	// Gate strip spanning both devices.
	b.ExposePort("din", LayerPoly, geometry.RectXYWH(mosPad, nTop-mosPolyWr, v.P.L, pTop-nTop+mosPolyWr))
	// Drain strip on the right edge.
	b.ExposePort("dout", LayerMet1, geometry.RectXYWH(width-mosPadMet, nOff, mosPadMet, pOff+pFoot.Y1-nOff-mosPolyWr))
	// Supply rails.
	b.ExposePort("vss", LayerMet1, geometry.RectXYWH(0, -invRail, width, invRail))
	b.ExposePort("vdd", LayerMet1, geometry.RectXYWH(0, pTop, width, invRail))
	return nil, nil
}

// BufferParams sizes an inverter chain.
type BufferParams struct {
	Stages int   `json:"stages"`
	NW     int64 `json:"nw"`
	PW     int64 `json:"pw"`
	L      int64 `json:"l"`
}

// Buffer is a chain of identical inverters. An even stage count preserves
// polarity; the block accepts any count of at least one.
type Buffer struct {
	P BufferParams
}

// NewBuffer returns a buffer with the given stage count and device sizes.
func NewBuffer(stages int, nw, pw, l int64) *Buffer {
	return &Buffer{P: BufferParams{Stages: stages, NW: nw, PW: pw, L: l}}
}

func (f *Buffer) BlockID() string         { return "stdcell/buffer" }
func (f *Buffer) Name() string            { return "buf" }
func (f *Buffer) IO() *bundle.Type        { return invIO() }
func (f *Buffer) Schemas() []block.Schema { return []block.Schema{SchemaSpice, SchemaGDS} }
func (f *Buffer) Params() any             { return f.P }

func (f *Buffer) stage() *Inverter { return NewInverter(f.P.NW, f.P.PW, f.P.L) }

// Schematic chains the stages through named intermediate signals.
func (f *Buffer) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	if f.P.Stages < 1 {
		return nil, errors.New(errors.ErrCodeInvalidBlock, "buffer needs at least one stage, got %d", f.P.Stages)
	}
	prev := b.IO("din")
	for i := 0; i < f.P.Stages; i++ {
		inv, err := b.Instantiate(f.stage())
		if err != nil {
			return nil, err
		}
		b.Connect(inv.Port("din"), prev)
		b.Connect(inv.Port("vdd"), b.IO("vdd"))
		b.Connect(inv.Port("vss"), b.IO("vss"))
		if i == f.P.Stages-1 {
			b.Connect(inv.Port("dout"), b.IO("dout"))
		} else {
			mid := b.Signal(fmt.Sprintf("mid%d", i), bundle.Signal())
			b.Connect(inv.Port("dout"), mid.Port(""))
			prev = mid.Port("")
		}
	}
	return nil, nil
}

// Buffer layout dimensions in database units.
const bufGap = 8

// Layout places the stages in a row and pads the chain ends.
func (f *Buffer) Layout(_ block.Schema, b *layout.Builder) (any, error) {
	if f.P.Stages < 1 {
		return nil, errors.New(errors.ErrCodeInvalidBlock, "buffer needs at least one stage, got %d", f.P.Stages)
	}
	var first, last *layout.Instance
	x := int64(0)
	for i := 0; i < f.P.Stages; i++ {
		inst, err := b.PlaceAt(f.stage(), x, 0)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = inst
		}
		last = inst
		x = inst.Bounds().X1 + bufGap
	}

	bb := first.Bounds().Union(last.Bounds())
	b.ExposePort("din", LayerPoly, geometry.RectXYWH(bb.X0-mosPad, bb.Y0, mosPad, bb.Height()))
	b.ExposePort("dout", LayerMet1, geometry.RectXYWH(bb.X1, bb.Y0, mosPad, bb.Height()))
	b.ExposePort("vss", LayerMet1, geometry.RectXYWH(bb.X0, bb.Y0-invRail, bb.Width(), invRail))
	b.ExposePort("vdd", LayerMet1, geometry.RectXYWH(bb.X0, bb.Y1, bb.Width(), invRail))
	return nil, nil
}
