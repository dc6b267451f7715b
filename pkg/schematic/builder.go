package schematic

import (
	"fmt"
	"strings"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
)

// Source is a block that can generate a schematic. The generator callback
// must use only the builder it is handed: instantiate children, declare
// signals, and connect ports. Its first return value becomes the cell's
// auxiliary Data.
type Source interface {
	block.Block

	// Schematic populates the builder for the given schema.
	Schematic(schema block.Schema, b *Builder) (any, error)
}

// GenerateFunc resolves a child block to its generated cell. The generation
// context supplies this callback so that nested instantiation re-enters the
// shared cache (and its cycle detection).
type GenerateFunc func(child Source) (*Cell, error)

// Connectable is a set of electrical nodes that can be handed to
// [Builder.Connect]: a signal, an instance port selection, or one of the
// cell's own IO ports.
type Connectable interface {
	nodes() []Node
	label() string
}

// connection records one Connect call for deferred validation.
type connection struct {
	a, b Connectable
}

// Builder accumulates the contents of one schematic cell. It is created by
// the generation context, handed to a single generator invocation, and
// consumed by Finalize. Builders are not safe for concurrent use.
type Builder struct {
	name    string
	key     string
	schema  block.Schema
	ioType  *bundle.Type
	gen     GenerateFunc
	nodes   *nodeTable
	ioPorts []Port // parallel to ioType.Flatten()
	ioIndex map[string]int

	signals   map[string]*Signal
	instances []*Instance
	nameSeq   map[string]int
	connects  []connection

	primitive bool
	primData  any
	data      any

	errs      []error
	finalized bool
}

// NewBuilder creates a builder for one generation of the named block.
// It is exported for the generation context; block generators never
// construct builders themselves.
func NewBuilder(name, key string, schema block.Schema, io *bundle.Type, gen GenerateFunc) *Builder {
	b := &Builder{
		name:    name,
		key:     key,
		schema:  schema,
		ioType:  io,
		gen:     gen,
		nodes:   newNodeTable(),
		ioIndex: make(map[string]int),
		signals: make(map[string]*Signal),
		nameSeq: make(map[string]int),
	}
	leaves := io.Flatten()
	b.ioPorts = make([]Port, len(leaves))
	for i, leaf := range leaves {
		n := b.nodes.add(leaf.Path, priorityIO)
		b.ioPorts[i] = Port{name: leaf.Path, ns: []Node{n}}
		b.ioIndex[leaf.Path] = i
	}
	return b
}

// Schema returns the schema this cell is being generated in.
func (b *Builder) Schema() block.Schema { return b.schema }

// IO returns the cell's own port at the given leaf or subtree path.
// Unknown paths yield an empty port; the error surfaces at finalize.
func (b *Builder) IO(path string) Port {
	var ns []Node
	leaves := b.ioType.Flatten()
	for i, leaf := range leaves {
		if pathSelects(path, leaf.Path) {
			ns = append(ns, b.ioPorts[i].ns...)
		}
	}
	if len(ns) == 0 {
		b.deferErr(errors.New(errors.ErrCodeConnectivity, "cell %s has no IO port %q", b.name, path))
	}
	return Port{name: path, ns: ns}
}

// Signal declares an internal wire bundle with the given name and type.
// Redeclaring a name records an error reported at finalize.
func (b *Builder) Signal(name string, typ *bundle.Type) *Signal {
	if b.finalized {
		b.deferErr(errors.New(errors.ErrCodeInternal, "Signal called on finalized builder of %s", b.name))
	}
	if _, ok := b.signals[name]; ok {
		b.deferErr(errors.New(errors.ErrCodeConnectivity, "duplicate signal %q in cell %s", name, b.name))
	}
	leaves := typ.Flatten()
	s := &Signal{name: name, typ: typ, leaves: leaves, ns: make([]Node, len(leaves))}
	for i, leaf := range leaves {
		s.ns[i] = b.nodes.add(joinPath(name, leaf.Path), priorityNamed)
	}
	b.signals[name] = s
	return s
}

// Instantiate generates the child block (through the shared generation
// context) and adds an instance of its cell. The child's failure, including
// recursion and connectivity errors, propagates unchanged.
func (b *Builder) Instantiate(child Source) (*Instance, error) {
	if b.finalized {
		return nil, errors.New(errors.ErrCodeInternal, "Instantiate called on finalized builder of %s", b.name)
	}
	cell, err := b.gen(child)
	if err != nil {
		return nil, err
	}

	name := b.uniqueName(child.Name())
	leaves := cell.ioType.Flatten()
	inst := &Instance{
		name:   name,
		cell:   cell,
		leaves: leaves,
		ns:     make([]Node, len(leaves)),
	}
	for i, leaf := range leaves {
		inst.ns[i] = b.nodes.add(joinPath(name, leaf.Path), priorityAuto)
	}
	b.instances = append(b.instances, inst)
	return inst, nil
}

// Connect records that a and c are electrically connected. The call is
// always locally valid; width mismatches and unknown ports are validated
// globally at finalize.
func (b *Builder) Connect(a, c Connectable) {
	if b.finalized {
		b.deferErr(errors.New(errors.ErrCodeInternal, "Connect called on finalized builder of %s", b.name))
		return
	}
	b.connects = append(b.connects, connection{a: a, b: c})
}

// SetPrimitive marks the cell as a schema primitive carrying the given
// device payload (e.g. SPICE device parameters). Primitive cells skip
// floating-net validation: their IO leaves terminate in the backend.
func (b *Builder) SetPrimitive(params any) {
	b.primitive = true
	b.primData = params
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

// joinPath appends a leaf path to a base name. A bare signal leaf ("sig")
// collapses to the base name; array indices attach without a dot.
func joinPath(base, leaf string) string {
	switch {
	case leaf == "sig":
		return base
	case strings.HasPrefix(leaf, "["):
		return base + leaf
	default:
		return base + "." + leaf
	}
}

// pathSelects reports whether the selection path covers the leaf path:
// either exactly, or as a struct/array prefix. The empty selection covers
// every leaf.
func pathSelects(sel, leaf string) bool {
	if sel == "" || sel == leaf {
		return true
	}
	return strings.HasPrefix(leaf, sel+".") || strings.HasPrefix(leaf, sel+"[")
}

// Port is a selection of nodes: one leaf or a subtree of leaves.
type Port struct {
	name string
	ns   []Node
}

func (p Port) nodes() []Node { return p.ns }
func (p Port) label() string { return p.name }

// Width returns the number of wires in the selection.
func (p Port) Width() int { return len(p.ns) }

// Signal is an internal wire bundle declared with [Builder.Signal].
type Signal struct {
	name   string
	typ    *bundle.Type
	leaves []bundle.Leaf
	ns     []Node
}

func (s *Signal) nodes() []Node { return s.ns }
func (s *Signal) label() string { return s.name }

// Name returns the declared signal name.
func (s *Signal) Name() string { return s.name }

// Width returns the number of wires in the signal.
func (s *Signal) Width() int { return len(s.ns) }

// Port selects a leaf or subtree of the signal by path relative to the
// signal's type ("" selects the whole signal).
func (s *Signal) Port(path string) Port {
	if path == "" {
		return Port{name: s.name, ns: s.ns}
	}
	var ns []Node
	for i, leaf := range s.leaves {
		if pathSelects(path, leaf.Path) {
			ns = append(ns, s.ns[i])
		}
	}
	return Port{name: s.name + "." + path, ns: ns}
}

// Instance is a placed occurrence of a child cell within a parent builder.
// The child cell is shared, never owned: many parents may reference the
// same generated cell.
type Instance struct {
	name   string
	cell   *Cell
	leaves []bundle.Leaf
	ns     []Node

	// conns is populated at finalize: leaf path -> net name.
	conns map[string]string
}

// Name returns the instance name, unique within the parent cell.
func (i *Instance) Name() string { return i.name }

// Cell returns the shared child cell.
func (i *Instance) Cell() *Cell { return i.cell }

// Port selects the instance's port leaves by path into the child's IO.
// Unknown paths yield an empty selection; the error surfaces at finalize.
func (i *Instance) Port(path string) Port {
	var ns []Node
	for idx, leaf := range i.leaves {
		if pathSelects(path, leaf.Path) {
			ns = append(ns, i.ns[idx])
		}
	}
	return Port{name: i.name + "." + path, ns: ns}
}

// Conns returns the finalized mapping from the child's IO leaf paths to
// parent net names. It is nil before finalize.
func (i *Instance) Conns() map[string]string {
	if i.conns == nil {
		return nil
	}
	out := make(map[string]string, len(i.conns))
	for k, v := range i.conns {
		out[k] = v
	}
	return out
}
