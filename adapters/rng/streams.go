package rng

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"discscore/ports"
)

// Streams derives independent PCG streams from (name, seed, index).
// The same triple always yields the same sequence.
type Streams struct{}

// NewStreams creates the production RNG adapter
func NewStreams() ports.RNGPort {
	return &Streams{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (s *Streams) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hi, lo := derive(name, seed, -1)
	return rand.New(rand.NewPCG(hi, lo)), nil
}

// Stream creates the generator for one iteration or trial of a named operation
func (s *Streams) Stream(ctx context.Context, name string, baseSeed uint64, index int) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hi, lo := derive(name, baseSeed, index)
	return rand.New(rand.NewPCG(hi, lo)), nil
}

// FreshSeed returns a seed from the runtime-seeded global source
func (s *Streams) FreshSeed() uint64 {
	for {
		if seed := rand.Uint64(); seed != 0 {
			return seed
		}
	}
}

// derive mixes the operation name, seed and index into two PCG words
func derive(name string, seed uint64, index int) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte(name))
	nameHash := h.Sum64()

	hi := splitmix(nameHash ^ splitmix(seed))
	lo := splitmix(hi ^ splitmix(uint64(int64(index))+0x9e3779b97f4a7c15))
	return hi, lo
}

// splitmix is the SplitMix64 finalizer
func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
