// Package bundle models the typed, directional port interfaces of generator
// blocks.
//
// # Overview
//
// A block declares its interface as a [Type]: a tree whose leaves are single
// wires and whose interior nodes are named structs or indexed arrays. The
// same declaration drives both views of a generated cell: schematic
// generation binds every leaf to an electrical net, and layout generation
// binds every leaf to port geometry.
//
// Types are built with explicit combinators, never reflection:
//
//	io := bundle.Struct(
//	    bundle.F("din", bundle.In(bundle.Signal())),
//	    bundle.F("dout", bundle.Out(bundle.Signal())),
//	    bundle.F("data", bundle.In(bundle.Array(8, bundle.Signal()))),
//	    bundle.F("vdd", bundle.InOut(bundle.Signal())),
//	    bundle.F("vss", bundle.InOut(bundle.Signal())),
//	)
//
// # Flattening
//
// [Type.Flatten] produces the deterministic pre-order list of leaves, each
// carrying its dotted path ("data[3]", "pad.clk") and direction. Leaf order
// is part of a block's identity contract: two equal blocks must declare
// leaf-for-leaf identical interfaces.
//
// # Directions
//
// Directions are as seen by a parent instantiating the block. A direction
// wrapper applies to every leaf beneath it that has no direction yet; leaves
// left undirected default to [InOut].
package bundle
