package geometry

import "fmt"

// Point is a location in 2D space, in integer database units.
type Point struct {
	X int64 `json:"x" bson:"x"`
	Y int64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int64) Point { return Point{X: x, Y: y} }

// Add returns the vector sum p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector difference p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Neg returns the point reflected through the origin.
func (p Point) Neg() Point { return Point{X: -p.X, Y: -p.Y} }

// String returns the point formatted as "(x, y)".
func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }
