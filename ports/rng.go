package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error)

	// Stream creates the generator for one iteration or trial of a named operation.
	// Distinct indices get independent streams, so parallel workers reproduce
	// the same draws regardless of scheduling.
	Stream(ctx context.Context, name string, baseSeed uint64, index int) (*rand.Rand, error)

	// FreshSeed returns a non-deterministic seed for callers that did not pin one
	FreshSeed() uint64
}
