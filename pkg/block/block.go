// Package block defines the identity model for generator blocks.
//
// A Block is a value describing one generator request: a type tag plus a
// parameter set. The generation context memoizes on block identity, so the
// package also defines the equality/hash contract that makes that sound.
//
// # Identity Contract
//
// Two blocks with the same [Key] MUST produce observably identical generated
// cells for a given schema: same instance tree, same net partition, same
// geometry. The framework cannot enforce this; a block type that hides
// generation-relevant state outside its parameters is a caller bug
// (IDENTITY_VIOLATION territory), not a recoverable condition.
//
// Keys are derived structurally: the block's ID joined with a SHA-256 hash
// of its JSON-encoded parameters. Parameter types must therefore be
// JSON-serializable and must encode every value that influences generation.
package block

import (
	"slices"

	"github.com/cellforge/cellforge/pkg/bundle"
	"github.com/cellforge/cellforge/pkg/cache"
)

// Schema tags a target backend representation: a netlist dialect, a layer
// stack, or any other format blocks can be generated into. Blocks declare
// which schemas they support; requesting any other schema fails with
// UNSUPPORTED_SCHEMA.
type Schema string

// Block describes a generator request.
//
// Implementations must be immutable values: every input that influences
// generation belongs in Params.
type Block interface {
	// BlockID returns the unique type tag for this block kind,
	// e.g. "stdcell/inverter".
	BlockID() string

	// Name returns the base name for instances of this parametrization.
	// The builder deduplicates names within a parent cell.
	Name() string

	// IO returns the block's port interface declaration. Blocks with equal
	// keys must return structurally equal declarations.
	IO() *bundle.Type

	// Schemas lists the schemas this block can be generated in.
	Schemas() []Schema

	// Params returns the JSON-serializable parameter set. The returned
	// value, together with BlockID, fully determines the block's identity.
	Params() any
}

// Key returns the cache identity of a block: BlockID plus a SHA-256 digest
// of its parameters. Key is consistent with structural equality of
// (BlockID, Params); see the package documentation for the soundness
// obligation this places on Block implementations.
func Key(b Block) string {
	return cache.ParamsKey(b.BlockID(), b.Params())
}

// Supports reports whether the block declares support for the schema.
func Supports(b Block, schema Schema) bool {
	return slices.Contains(b.Schemas(), schema)
}
