package schematic

// Node identifies one electrical node within a single builder. Nodes are
// dense indices into the builder's union-find table; they are meaningless
// outside the cell that created them.
type Node int32

// nodePriority ranks the names competing for a merged net.
// Higher values win; ties go to the earlier-created node.
type nodePriority uint8

const (
	// priorityAuto names come from instance ports ("xn0.d").
	priorityAuto nodePriority = iota + 1
	// priorityNamed names come from explicit signals.
	priorityNamed
	// priorityIO names come from the cell's own IO leaves.
	priorityIO
)

// nodeTable is a union-find over nodes with union by rank, path compression,
// and priority-based name resolution.
type nodeTable struct {
	parent []Node
	rank   []uint8
	name   []string
	pri    []nodePriority
	src    []Node // node that contributed the class name
}

func newNodeTable() *nodeTable {
	return &nodeTable{}
}

// add creates a fresh node carrying a name candidate with the given priority.
func (t *nodeTable) add(name string, pri nodePriority) Node {
	n := Node(len(t.parent))
	t.parent = append(t.parent, n)
	t.rank = append(t.rank, 0)
	t.name = append(t.name, name)
	t.pri = append(t.pri, pri)
	t.src = append(t.src, n)
	return n
}

// find returns the representative of n's equivalence class.
func (t *nodeTable) find(n Node) Node {
	for t.parent[n] != n {
		t.parent[n] = t.parent[t.parent[n]] // path halving
		n = t.parent[n]
	}
	return n
}

// union merges the classes of a and b. The merged class keeps the
// higher-priority name; on equal priority the earlier node's name wins.
// Merging a class with itself is a no-op.
func (t *nodeTable) union(a, b Node) {
	ra, rb := t.find(a), t.find(b)
	if ra == rb {
		return
	}
	// Resolve the winning name before re-rooting.
	winner := ra
	if t.pri[rb] > t.pri[ra] || (t.pri[rb] == t.pri[ra] && t.src[rb] < t.src[ra]) {
		winner = rb
	}

	if t.rank[ra] < t.rank[rb] {
		ra, rb = rb, ra
	}
	t.parent[rb] = ra
	if t.rank[ra] == t.rank[rb] {
		t.rank[ra]++
	}
	t.name[ra] = t.name[winner]
	t.pri[ra] = t.pri[winner]
	t.src[ra] = t.src[winner]
}

// connected reports whether a and b are in the same class.
func (t *nodeTable) connected(a, b Node) bool {
	return t.find(a) == t.find(b)
}

// netName returns the resolved name of n's class.
func (t *nodeTable) netName(n Node) string {
	return t.name[t.find(n)]
}

// size returns the number of nodes in the table.
func (t *nodeTable) size() int { return len(t.parent) }
