package stdcell

import (
	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/schematic"
)

// ResistorParams sizes a resistor primitive.
type ResistorParams struct {
	// R is the resistance in ohms.
	R int64 `json:"r"`
}

// Resistor is a two-terminal resistor primitive. It is schematic-only;
// requesting its layout fails with UNSUPPORTED_SCHEMA.
type Resistor struct {
	P ResistorParams
}

// NewResistor returns a resistor with the given value in ohms.
func NewResistor(r int64) *Resistor { return &Resistor{P: ResistorParams{R: r}} }

func (r *Resistor) BlockID() string { return "stdcell/resistor" }
func (r *Resistor) Name() string    { return "r" }
func (r *Resistor) IO() *bundle.Type {
	return bundle.Struct(
		bundle.F("p", bundle.InOutOf(bundle.Signal())),
		bundle.F("n", bundle.InOutOf(bundle.Signal())),
	)
}
func (r *Resistor) Schemas() []block.Schema { return []block.Schema{SchemaSpice} }
func (r *Resistor) Params() any             { return r.P }

// Schematic emits the device as a schema primitive.
func (r *Resistor) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	b.SetPrimitive(map[string]any{"model": "res", "r": r.P.R})
	return nil, nil
}

// VDividerParams sizes the two legs of a voltage divider.
type VDividerParams struct {
	R1 int64 `json:"r1"`
	R2 int64 `json:"r2"`
}

// VDivider is a two-resistor voltage divider: R1 from vin to out, R2 from
// out to vss.
type VDivider struct {
	P VDividerParams
}

// NewVDivider returns a divider with the given leg values in ohms.
func NewVDivider(r1, r2 int64) *VDivider {
	return &VDivider{P: VDividerParams{R1: r1, R2: r2}}
}

func (v *VDivider) BlockID() string { return "stdcell/vdivider" }
func (v *VDivider) Name() string    { return "vdiv" }
func (v *VDivider) IO() *bundle.Type {
	return bundle.Struct(
		bundle.F("vin", bundle.In(bundle.Signal())),
		bundle.F("out", bundle.Out(bundle.Signal())),
		bundle.F("vss", bundle.InOutOf(bundle.Signal())),
	)
}
func (v *VDivider) Schemas() []block.Schema { return []block.Schema{SchemaSpice} }
func (v *VDivider) Params() any             { return v.P }

// Schematic chains the two resistor legs through the out node.
func (v *VDivider) Schematic(_ block.Schema, b *schematic.Builder) (any, error) {
	r1, err := b.Instantiate(NewResistor(v.P.R1))
	if err != nil {
		return nil, err
	}
	r2, err := b.Instantiate(NewResistor(v.P.R2))
	if err != nil {
		return nil, err
	}
	b.Connect(r1.Port("p"), b.IO("vin"))
	b.Connect(r1.Port("n"), b.IO("out"))
	b.Connect(r2.Port("p"), b.IO("out"))
	b.Connect(r2.Port("n"), b.IO("vss"))
	return nil, nil
}
