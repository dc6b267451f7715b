package stdcell

import (
	"encoding/json"
	"sort"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/errors"
)

// Factory builds a block from raw JSON parameters. Empty parameters select
// the block's defaults.
type Factory func(params json.RawMessage) (block.Block, error)

// Default device sizes used when a factory receives no parameters.
const (
	defaultW  = 10
	defaultPW = 20
	defaultL  = 4
	defaultR  = 1000
)

var factories = map[string]Factory{
	"nmos": func(raw json.RawMessage) (block.Block, error) {
		p := MosParams{W: defaultW, L: defaultL}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &Nmos{P: p}, nil
	},
	"pmos": func(raw json.RawMessage) (block.Block, error) {
		p := MosParams{W: defaultPW, L: defaultL}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &Pmos{P: p}, nil
	},
	"resistor": func(raw json.RawMessage) (block.Block, error) {
		p := ResistorParams{R: defaultR}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &Resistor{P: p}, nil
	},
	"vdivider": func(raw json.RawMessage) (block.Block, error) {
		p := VDividerParams{R1: defaultR, R2: defaultR}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &VDivider{P: p}, nil
	},
	"inverter": func(raw json.RawMessage) (block.Block, error) {
		p := InverterParams{NW: defaultW, PW: defaultPW, L: defaultL}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &Inverter{P: p}, nil
	},
	"buffer": func(raw json.RawMessage) (block.Block, error) {
		p := BufferParams{Stages: 2, NW: defaultW, PW: defaultPW, L: defaultL}
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &Buffer{P: p}, nil
	},
}

func decode(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBlock, err, "decode block parameters")
	}
	return nil
}

// Lookup returns the factory registered under the given block name.
func Lookup(name string) (Factory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Build constructs the named block with the given raw parameters.
func Build(name string, params json.RawMessage) (block.Block, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeBlockNotFound, "unknown block %q (known: %v)", name, Names())
	}
	return f(params)
}

// Names returns the registered block names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
