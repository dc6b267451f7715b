// Package layout provides the layout cell builder and the placed-instance
// model.
//
// A block's layout generator receives a [Builder], draws rectangles on
// process layers, places child cells under rigid transforms, and exposes
// port geometry for each leaf of the block's IO. Finalizing the builder
// produces an immutable [Cell] with a computed bounding box.
//
// All geometry is exact: coordinates are integer database units and
// placements are restricted to the eight axis-aligned orientations, so a
// transformed cell occupies exactly the transformed footprint.
package layout
