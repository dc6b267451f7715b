package bundle

import (
	"fmt"
	"strings"
)

// Direction is the signal direction of a port leaf, as seen by a parent
// cell instantiating the block.
type Direction int

const (
	// Unset marks a leaf whose direction has not been declared yet.
	// Flattening resolves Unset to InOut.
	Unset Direction = iota
	// Input is a signal driven by the parent.
	Input
	// Output is a signal driven by the block.
	Output
	// InOut is a bidirectional or supply signal.
	InOut
)

// String returns the direction as "input", "output", or "inout".
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	default:
		return "unset"
	}
}

// Flip returns the direction as seen from the other side of the interface:
// inputs become outputs and vice versa. InOut is its own flip.
func (d Direction) Flip() Direction {
	switch d {
	case Input:
		return Output
	case Output:
		return Input
	default:
		return d
	}
}

// kind discriminates the Type tree node variants.
type kind int

const (
	kindSignal kind = iota
	kindStruct
	kindArray
)

// Type is a port interface declaration: a tree of named structs, indexed
// arrays, and signal leaves. Types are immutable once built; combinators
// return fresh nodes.
type Type struct {
	kind   kind
	dir    Direction // signal leaves only
	fields []field   // struct nodes only
	n      int       // array nodes only
	elem   *Type     // array nodes only
}

type field struct {
	name string
	typ  *Type
}

// Field names a struct member. Use with [Struct].
type Field struct {
	Name string
	Type *Type
}

// F is shorthand for Field{Name: name, Type: t}.
func F(name string, t *Type) Field { return Field{Name: name, Type: t} }

// Signal returns a single undirected wire.
func Signal() *Type { return &Type{kind: kindSignal} }

// Struct returns a composite type with the given named fields.
// Field order is preserved and significant.
func Struct(fields ...Field) *Type {
	t := &Type{kind: kindStruct, fields: make([]field, len(fields))}
	for i, f := range fields {
		t.fields[i] = field{name: f.Name, typ: f.Type}
	}
	return t
}

// Array returns a composite type of n copies of elem, indexed from 0.
func Array(n int, elem *Type) *Type {
	return &Type{kind: kindArray, n: n, elem: elem}
}

// In marks every undirected leaf beneath t as an input.
func In(t *Type) *Type { return withDir(t, Input) }

// Out marks every undirected leaf beneath t as an output.
func Out(t *Type) *Type { return withDir(t, Output) }

// InOutOf marks every undirected leaf beneath t as inout.
func InOutOf(t *Type) *Type { return withDir(t, InOut) }

// withDir copies the tree, assigning dir to leaves that have none.
func withDir(t *Type, dir Direction) *Type {
	switch t.kind {
	case kindSignal:
		d := t.dir
		if d == Unset {
			d = dir
		}
		return &Type{kind: kindSignal, dir: d}
	case kindArray:
		return &Type{kind: kindArray, n: t.n, elem: withDir(t.elem, dir)}
	default:
		out := &Type{kind: kindStruct, fields: make([]field, len(t.fields))}
		for i, f := range t.fields {
			out.fields[i] = field{name: f.name, typ: withDir(f.typ, dir)}
		}
		return out
	}
}

// Leaf is one wire of a flattened interface.
type Leaf struct {
	// Path is the dotted leaf name, e.g. "din", "data[3]", "pad.clk".
	// The root of a bare Signal type has path "sig".
	Path string
	// Dir is the resolved direction (never Unset).
	Dir Direction
}

// Len returns the number of leaves in the flattened type.
func (t *Type) Len() int {
	if t == nil {
		return 0
	}
	switch t.kind {
	case kindSignal:
		return 1
	case kindArray:
		return t.n * t.elem.Len()
	default:
		total := 0
		for _, f := range t.fields {
			total += f.typ.Len()
		}
		return total
	}
}

// Flatten returns the deterministic pre-order leaf list. Leaves with no
// declared direction resolve to InOut.
func (t *Type) Flatten() []Leaf {
	if t == nil {
		return nil
	}
	out := make([]Leaf, 0, t.Len())
	t.flatten("", &out)
	return out
}

func (t *Type) flatten(prefix string, out *[]Leaf) {
	switch t.kind {
	case kindSignal:
		path := prefix
		if path == "" {
			path = "sig"
		}
		dir := t.dir
		if dir == Unset {
			dir = InOut
		}
		*out = append(*out, Leaf{Path: path, Dir: dir})
	case kindArray:
		for i := 0; i < t.n; i++ {
			t.elem.flatten(fmt.Sprintf("%s[%d]", prefix, i), out)
		}
	default:
		for _, f := range t.fields {
			name := f.name
			if prefix != "" {
				name = prefix + "." + name
			}
			f.typ.flatten(name, out)
		}
	}
}

// Paths returns the flattened leaf paths in order.
func (t *Type) Paths() []string {
	leaves := t.Flatten()
	paths := make([]string, len(leaves))
	for i, l := range leaves {
		paths[i] = l.Path
	}
	return paths
}

// Lookup returns the subtree rooted at the dotted path, or nil when the
// path names nothing. An empty path returns t itself.
func (t *Type) Lookup(path string) *Type {
	if t == nil || path == "" {
		return t
	}
	head, rest, _ := strings.Cut(path, ".")
	name, idx, isIdx := splitIndex(head)
	cur := t
	if name != "" {
		if cur.kind != kindStruct {
			return nil
		}
		found := false
		for _, f := range cur.fields {
			if f.name == name {
				cur, found = f.typ, true
				break
			}
		}
		if !found {
			return nil
		}
	}
	if isIdx {
		if cur.kind != kindArray || idx < 0 || idx >= cur.n {
			return nil
		}
		cur = cur.elem
	}
	if rest == "" {
		return cur
	}
	return cur.Lookup(rest)
}

// splitIndex splits "data[3]" into ("data", 3, true).
func splitIndex(s string) (name string, idx int, ok bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return s, 0, false
	}
	var n int
	if _, err := fmt.Sscanf(s[open:], "[%d]", &n); err != nil {
		return s, 0, false
	}
	return s[:open], n, true
}

// Equal reports whether two types flatten to identical leaf lists
// (same paths, same directions, same order).
func Equal(a, b *Type) bool {
	la, lb := a.Flatten(), b.Flatten()
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}
