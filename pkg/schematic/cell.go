package schematic

import (
	"sort"

	"github.com/cellforge/cellforge/pkg/block"
	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/errors"
)

// PortRef identifies one port leaf inside a cell: either a leaf of the
// cell's own IO (empty Instance) or a leaf of a child instance's IO.
type PortRef struct {
	Instance string `json:"instance,omitempty" bson:"instance,omitempty"`
	Port     string `json:"port" bson:"port"`
}

// Net is one equivalence class of electrically connected ports.
type Net struct {
	Name  string    `json:"name" bson:"name"`
	Ports []PortRef `json:"ports" bson:"ports"`
}

// Cell is the immutable result of generating a block's schematic in one
// schema. Cells are created once per (block, schema) key and shared
// read-only by every caller that requested the same key.
type Cell struct {
	name      string
	key       string
	schema    block.Schema
	ioType    *bundle.Type
	io        map[string]string // IO leaf path -> net name
	nets      []Net
	netIndex  map[string]int
	instances []*Instance
	primitive bool
	primData  any
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

// Nets returns the net partition, sorted by net name.
func (c *Cell) Nets() []Net {
	out := make([]Net, len(c.nets))
	copy(out, c.nets)
	return out
}

// Net returns the named net.
func (c *Cell) Net(name string) (Net, bool) {
	i, ok := c.netIndex[name]
	if !ok {
		return Net{}, false
	}
	return c.nets[i], true
}

// IONet returns the net bound to the cell's IO leaf at the given path.
func (c *Cell) IONet(path string) (Net, bool) {
	name, ok := c.io[path]
	if !ok {
		return Net{}, false
	}
	return c.Net(name)
}

// Instances returns the child instances in instantiation order.
func (c *Cell) Instances() []*Instance {
	out := make([]*Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// IsPrimitive reports whether the cell is a schema primitive.
func (c *Cell) IsPrimitive() bool { return c.primitive }

// PrimitiveParams returns the device payload of a primitive cell, nil
// otherwise.
func (c *Cell) PrimitiveParams() any { return c.primData }

// Data returns the generator's auxiliary payload.
func (c *Cell) Data() any { return c.data }

// Finalize validates connectivity and produces the immutable cell. It is
// called by the generation context exactly once per builder; calling any
// builder method afterwards is an error.
//
// Validation is global: width mismatches and unknown ports recorded by
// earlier Connect calls, and floating leaves (a port alone in its net),
// all surface here as CONNECTIVITY errors.
func (b *Builder) Finalize() (*Cell, error) {
	if b.finalized {
		return nil, errors.New(errors.ErrCodeInternal, "builder of %s already finalized", b.name)
	}
	b.finalized = true

	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	// Width validation, deferred from Connect.
	for _, c := range b.connects {
		wa, wb := len(c.a.nodes()), len(c.b.nodes())
		if wa == 0 {
			return nil, errors.New(errors.ErrCodeConnectivity, "cell %s: connect: empty or unknown port %q", b.name, c.a.label())
		}
		if wb == 0 {
			return nil, errors.New(errors.ErrCodeConnectivity, "cell %s: connect: empty or unknown port %q", b.name, c.b.label())
		}
		if wa != wb {
			return nil, errors.New(errors.ErrCodeConnectivity,
				"cell %s: width mismatch connecting %q (%d) to %q (%d)", b.name, c.a.label(), wa, c.b.label(), wb)
		}
	}

	// Merge. Order does not matter: union is commutative and idempotent.
	for _, c := range b.connects {
		na, nb := c.a.nodes(), c.b.nodes()
		for i := range na {
			b.nodes.union(na[i], nb[i])
		}
	}

	// Partition all bound port leaves into nets.
	members := make(map[Node][]PortRef)
	leaves := b.ioType.Flatten()
	for i, leaf := range leaves {
		root := b.nodes.find(b.ioPorts[i].ns[0])
		members[root] = append(members[root], PortRef{Port: leaf.Path})
	}
	for _, inst := range b.instances {
		for i, leaf := range inst.leaves {
			root := b.nodes.find(inst.ns[i])
			members[root] = append(members[root], PortRef{Instance: inst.name, Port: leaf.Path})
		}
	}

	// Floating leaves: a port alone in its net. Primitives terminate their
	// IO in the backend, so they are exempt.
	if !b.primitive {
		for root, ports := range members {
			if len(ports) == 1 {
				p := ports[0]
				ref := p.Port
				if p.Instance != "" {
					ref = p.Instance + "." + p.Port
				}
				return nil, errors.New(errors.ErrCodeConnectivity,
					"cell %s: floating port %q (net %s)", b.name, ref, b.nodes.netName(b.nodes.find(root)))
			}
		}
	}

	cell := &Cell{
		name:      b.name,
		key:       b.key,
		schema:    b.schema,
		ioType:    b.ioType,
		io:        make(map[string]string, len(leaves)),
		netIndex:  make(map[string]int),
		instances: b.instances,
		primitive: b.primitive,
		primData:  b.primData,
		data:      b.data,
	}

	for root, ports := range members {
		sort.Slice(ports, func(i, j int) bool {
			if ports[i].Instance != ports[j].Instance {
				return ports[i].Instance < ports[j].Instance
			}
			return ports[i].Port < ports[j].Port
		})
		cell.nets = append(cell.nets, Net{Name: b.nodes.netName(root), Ports: ports})
	}
	sort.Slice(cell.nets, func(i, j int) bool { return cell.nets[i].Name < cell.nets[j].Name })
	for i, n := range cell.nets {
		cell.netIndex[n.Name] = i
	}

	for i, leaf := range leaves {
		cell.io[leaf.Path] = b.nodes.netName(b.ioPorts[i].ns[0])
	}
	for _, inst := range b.instances {
		inst.conns = make(map[string]string, len(inst.leaves))
		for i, leaf := range inst.leaves {
			inst.conns[leaf.Path] = b.nodes.netName(inst.ns[i])
		}
	}

	return cell, nil
}
