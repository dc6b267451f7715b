package geometry

import "fmt"

// Rotation is a counterclockwise rotation by a multiple of 90 degrees.
type Rotation uint8

// The four rotations, in quarter turns counterclockwise.
const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Degrees returns the rotation angle in degrees (0, 90, 180, or 270).
func (r Rotation) Degrees() int { return int(r%4) * 90 }

// Apply rotates p counterclockwise about the origin.
func (r Rotation) Apply(p Point) Point {
	switch r % 4 {
	case Rot90:
		return Point{X: -p.Y, Y: p.X}
	case Rot180:
		return Point{X: -p.X, Y: -p.Y}
	case Rot270:
		return Point{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Orientation is an element of the dihedral group of the square: an optional
// mirror about the x axis followed by a counterclockwise rotation. Applying
// an orientation first mirrors (if ReflectVert is set), then rotates.
//
// Orientation is a comparable value type; two orientations are equal iff they
// map every point identically.
type Orientation struct {
	// Rot is applied after the optional reflection.
	Rot Rotation `json:"rot" bson:"rot"`
	// ReflectVert mirrors about the x axis (y -> -y) before rotating.
	ReflectVert bool `json:"reflect_vert,omitempty" bson:"reflect_vert,omitempty"`
}

// The eight orientations. MX is a mirror about the x axis; MY (mirror about
// the y axis) is the same reflection followed by a 180-degree rotation.
var (
	R0   = Orientation{Rot: Rot0}
	R90  = Orientation{Rot: Rot90}
	R180 = Orientation{Rot: Rot180}
	R270 = Orientation{Rot: Rot270}
	MX   = Orientation{Rot: Rot0, ReflectVert: true}
	MX90 = Orientation{Rot: Rot90, ReflectVert: true}
	MY   = Orientation{Rot: Rot180, ReflectVert: true}
	MY90 = Orientation{Rot: Rot270, ReflectVert: true}
)

// Apply maps p through the orientation: mirror first, then rotate.
func (o Orientation) Apply(p Point) Point {
	if o.ReflectVert {
		p = Point{X: p.X, Y: -p.Y}
	}
	return o.Rot.Apply(p)
}

// Compose returns the orientation equivalent to applying q first, then o.
func (o Orientation) Compose(q Orientation) Orientation {
	// With o = R(a)·M^m and q = R(b)·M^n, use M·R(b) = R(-b)·M to push the
	// inner rotation past o's reflection.
	rot := o.Rot + q.Rot
	if o.ReflectVert {
		rot = o.Rot + 4 - q.Rot
	}
	return Orientation{Rot: rot % 4, ReflectVert: o.ReflectVert != q.ReflectVert}
}

// Invert returns the orientation that undoes o.
func (o Orientation) Invert() Orientation {
	if o.ReflectVert {
		// Reflections are involutions.
		return o
	}
	return Orientation{Rot: (4 - o.Rot) % 4}
}

// String returns the conventional name of the orientation (e.g. "R90", "MX").
func (o Orientation) String() string {
	if !o.ReflectVert {
		return fmt.Sprintf("R%d", o.Rot.Degrees())
	}
	switch o.Rot % 4 {
	case Rot0:
		return "MX"
	case Rot180:
		return "MY"
	default:
		return fmt.Sprintf("MX%d", o.Rot.Degrees())
	}
}
