// Package geometry provides the exact 2D geometry primitives used by layout
// generation: integer points and rectangles, 90-degree orientations, and
// composable placement transforms.
//
// # Coordinate System
//
// All coordinates are int64 database units (typically nanometers). The x axis
// grows rightward and the y axis grows upward. Working in integer units keeps
// transform equality decidable: two transforms are equal iff their struct
// values are equal, with no floating-point drift.
//
// # Transforms
//
// A [Transform] is an orientation followed by a translation. Orientations
// form the 8-element dihedral group (four rotations, optionally mirrored
// about the x axis), so every transform in the group has an exact inverse:
//
//	t := geometry.Transform{Offset: geometry.Pt(100, 0), Orient: geometry.R90}
//	p := t.Apply(geometry.Pt(10, 20))
//	back := t.Invert().Apply(p) // == Pt(10, 20)
//
// Composition is associative and matches function application:
// Compose(a, b).Apply(p) == a.Apply(b.Apply(p)).
//
// # Rectangles
//
// [Rect] is a closed, axis-aligned box stored in normalized form
// (X0 <= X1, Y0 <= Y1). Transforming a rectangle transforms its corners and
// renormalizes, so mirrored and rotated boxes are recomputed rather than
// translated.
package geometry
