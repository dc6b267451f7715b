package geometry

import "fmt"

// Rect is a closed, axis-aligned rectangle in normalized form:
// X0 <= X1 and Y0 <= Y1. The zero value is the degenerate point rectangle
// at the origin.
type Rect struct {
	X0 int64 `json:"x0" bson:"x0"`
	Y0 int64 `json:"y0" bson:"y0"`
	X1 int64 `json:"x1" bson:"x1"`
	Y1 int64 `json:"y1" bson:"y1"`
}

// NewRect returns the normalized rectangle spanning the two corner points.
// The corners may be given in any order.
func NewRect(a, b Point) Rect {
	return Rect{
		X0: min(a.X, b.X),
		Y0: min(a.Y, b.Y),
		X1: max(a.X, b.X),
		Y1: max(a.Y, b.Y),
	}
}

// RectXYWH returns the rectangle with lower-left corner (x, y) and the given
// width and height. Width and height must be non-negative.
func RectXYWH(x, y, w, h int64) Rect {
	return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int64 { return r.Y1 - r.Y0 }

// LowerLeft returns the corner with minimal coordinates.
func (r Rect) LowerLeft() Point { return Point{X: r.X0, Y: r.Y0} }

// UpperRight returns the corner with maximal coordinates.
func (r Rect) UpperRight() Point { return Point{X: r.X1, Y: r.Y1} }

// Center returns the center point, rounded toward the lower-left corner.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Translate returns the rectangle shifted by the vector d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X0: r.X0 + d.X, Y0: r.Y0 + d.Y, X1: r.X1 + d.X, Y1: r.Y1 + d.Y}
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		X0: min(r.X0, s.X0),
		Y0: min(r.Y0, s.Y0),
		X1: max(r.X1, s.X1),
		Y1: max(r.Y1, s.Y1),
	}
}

// Intersects reports whether r and s share at least one point.
// Closed rectangles: touching edges count as intersecting.
func (r Rect) Intersects(s Rect) bool {
	return r.X0 <= s.X1 && s.X0 <= r.X1 && r.Y0 <= s.Y1 && s.Y0 <= r.Y1
}

// Contains reports whether the point p lies inside or on the boundary of r.
func (r Rect) Contains(p Point) bool {
	return r.X0 <= p.X && p.X <= r.X1 && r.Y0 <= p.Y && p.Y <= r.Y1
}

// IsDegenerate reports whether the rectangle has zero width or zero height.
func (r Rect) IsDegenerate() bool { return r.X0 == r.X1 || r.Y0 == r.Y1 }

// String returns the rectangle formatted as "[(x0, y0), (x1, y1)]".
func (r Rect) String() string {
	return fmt.Sprintf("[%s, %s]", r.LowerLeft(), r.UpperRight())
}

// BoundRects returns the union of all rectangles, or the zero Rect and false
// when the slice is empty.
func BoundRects(rects []Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	bbox := rects[0]
	for _, r := range rects[1:] {
		bbox = bbox.Union(r)
	}
	return bbox, true
}
