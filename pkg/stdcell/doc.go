// Package stdcell provides a small reference library of generator blocks:
// MOS and resistor primitives plus a few composed cells (inverter, buffer,
// voltage divider).
//
// The blocks serve two purposes. They are the concrete generators exercised
// by the CLI and the pipeline, and they document the block-author contract:
// immutable parameter structs, IO declared as bundle types, and generator
// callbacks that only use the builder they are handed.
//
// Two schemas are implemented: [SchemaSpice] for schematic generation and
// [SchemaGDS] for layout generation. Resistive blocks are schematic-only;
// requesting their layout fails with UNSUPPORTED_SCHEMA, exactly as any
// other unsupported (block, schema) pair does.
package stdcell
