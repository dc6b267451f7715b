// Package schematic provides the schematic cell builder and its
// connectivity engine.
//
// # Overview
//
// A block's schematic generator receives a [Builder], instantiates child
// blocks, declares internal signals, and connects ports. Finalizing the
// builder produces an immutable [Cell]: the instance tree plus the net
// partition induced by the connect operations.
//
// # Connectivity
//
// Connectivity is tracked with a union-find structure over node IDs. Every
// IO leaf, signal wire, and instance port leaf owns a node; [Builder.Connect]
// merges the nodes of two equal-width connectables. Connect is commutative
// and idempotent, and connecting a port to itself is a no-op.
//
// Connect never fails at call time. Validation is global and runs at
// finalize: width mismatches, unknown port selections, and floating leaves
// (a port in a net all by itself) surface as CONNECTIVITY errors from
// [Builder.Finalize].
//
// # Net Naming
//
// When nodes merge, the net keeps the highest-priority name among its
// members: IO leaf names win over explicit signal names, which win over
// auto-generated instance port names. Ties go to the earliest-created node,
// so naming is deterministic.
//
// # Builders Are Single-Shot
//
// A Builder is created by the generation context immediately before the
// block's generator runs and is consumed by Finalize immediately after.
// Retaining or mutating a builder after finalize is a caller bug; all
// methods on a finalized builder record an error.
package schematic
