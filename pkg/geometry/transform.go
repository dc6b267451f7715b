package geometry

import "fmt"

// Transform is an affine placement map: an orientation about the origin
// followed by an integer translation. Transforms form a group under
// [Compose], and equality of transform values coincides with equality of
// their effect on every point.
//
// The zero value is the identity transform.
type Transform struct {
	Offset Point       `json:"offset" bson:"offset"`
	Orient Orientation `json:"orient" bson:"orient"`
}

// Identity is the transform that maps every point to itself.
var Identity = Transform{}

// Translate returns a pure translation by (x, y).
func Translate(x, y int64) Transform { return Transform{Offset: Pt(x, y)} }

// Rotate returns a pure rotation about the origin.
func Rotate(r Rotation) Transform { return Transform{Orient: Orientation{Rot: r}} }

// Orient returns a transform applying the given orientation with no offset.
func Orient(o Orientation) Transform { return Transform{Orient: o} }

// Apply maps the point p through the transform.
func (t Transform) Apply(p Point) Point {
	return t.Orient.Apply(p).Add(t.Offset)
}

// ApplyRect maps the rectangle r through the transform, transforming its
// corners and renormalizing. Mirrored and rotated boxes are recomputed,
// never just translated.
func (t Transform) ApplyRect(r Rect) Rect {
	return NewRect(t.Apply(r.LowerLeft()), t.Apply(r.UpperRight()))
}

// Compose returns the transform equivalent to applying b first, then a:
// Compose(a, b).Apply(p) == a.Apply(b.Apply(p)).
func Compose(a, b Transform) Transform {
	return Transform{
		Offset: a.Orient.Apply(b.Offset).Add(a.Offset),
		Orient: a.Orient.Compose(b.Orient),
	}
}

// Then returns the transform applying t first, then next.
func (t Transform) Then(next Transform) Transform { return Compose(next, t) }

// Invert returns the transform that undoes t:
// Compose(t, t.Invert()) == Identity.
func (t Transform) Invert() Transform {
	inv := t.Orient.Invert()
	return Transform{
		Offset: inv.Apply(t.Offset).Neg(),
		Orient: inv,
	}
}

// IsIdentity reports whether the transform maps every point to itself.
func (t Transform) IsIdentity() bool { return t == Identity }

// String returns the transform formatted as "orient+offset".
func (t Transform) String() string {
	return fmt.Sprintf("%s%s", t.Orient, t.Offset)
}
