package geometry

// LayerID identifies a process layer (e.g. "met1", "poly"). Layer names are
// schema-specific tags; the geometry engine treats them as opaque.
type LayerID string

// Shape is a rectangle drawn on a process layer. Non-rectangular geometry is
// out of scope for the core engine; polygon support belongs to backend
// exporters.
type Shape struct {
	Layer LayerID `json:"layer" bson:"layer"`
	Rect  Rect    `json:"rect" bson:"rect"`
}

// Transform returns the shape mapped through t. The layer is unchanged.
func (s Shape) Transform(t Transform) Shape {
	return Shape{Layer: s.Layer, Rect: t.ApplyRect(s.Rect)}
}

// TransformShapes maps every shape through t, returning a new slice.
func TransformShapes(shapes []Shape, t Transform) []Shape {
	if len(shapes) == 0 {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Transform(t)
	}
	return out
}

// BoundShapes returns the bounding box of all shapes, or false when empty.
func BoundShapes(shapes []Shape) (Rect, bool) {
	if len(shapes) == 0 {
		return Rect{}, false
	}
	bbox := shapes[0].Rect
	for _, s := range shapes[1:] {
		bbox = bbox.Union(s.Rect)
	}
	return bbox, true
}
