package battery

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"discscore/adapters/stats/scoring"
	"discscore/domain/core"
	"discscore/domain/discrepancy"
	"discscore/domain/resampling"
	"discscore/ports"

	"golang.org/x/sync/errgroup"
)

// Options controls one resampling run
type Options struct {
	Iterations int    // default resampling.DefaultIterations
	Seed       uint64 // 0 draws a fresh, non-reproducible seed
	Workers    int    // 0 uses the resampler default
}

// Resampler builds bootstrap and shuffle distributions of discrepancy scores
type Resampler struct {
	rngPort ports.RNGPort
	workers int
}

// NewResampler creates a resampler drawing randomness from rngPort
func NewResampler(rngPort ports.RNGPort) *Resampler {
	return &Resampler{
		rngPort: rngPort,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers configures how many goroutines share the iterations
func (r *Resampler) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	r.workers = n
}

// Bootstrap estimates the sampling variability of the real score: each
// iteration draws len(sub) positions with replacement and applies the same
// draw to both series.
func (r *Resampler) Bootstrap(ctx context.Context, sub, sup discrepancy.Series, method discrepancy.Method, opts Options) (*resampling.Distribution, error) {
	return r.Run(ctx, resampling.ModeBootstrap, sub, sup, method, opts)
}

// Shuffle estimates the null distribution: each iteration permutes the
// supervisor series without replacement while the subordinate keeps its order.
func (r *Resampler) Shuffle(ctx context.Context, sub, sup discrepancy.Series, method discrepancy.Method, opts Options) (*resampling.Distribution, error) {
	return r.Run(ctx, resampling.ModeShuffle, sub, sup, method, opts)
}

// Run generates a distribution for the given mode.
// Iteration i always draws from stream (mode, seed, i), so the result does
// not depend on the worker count.
func (r *Resampler) Run(ctx context.Context, mode resampling.Mode, sub, sup discrepancy.Series, method discrepancy.Method, opts Options) (*resampling.Distribution, error) {
	var draw func(rng *rand.Rand, idx []int)
	switch mode {
	case resampling.ModeBootstrap:
		draw = drawWithReplacement
	case resampling.ModeShuffle:
		draw = drawPermutation
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownMode, mode)
	}

	pair, err := scoring.Prepare(sub, sup, method)
	if err != nil {
		return nil, err
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = resampling.DefaultIterations
	}
	seed := opts.Seed
	if seed == 0 {
		seed = r.rngPort.FreshSeed()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = r.workers
	}
	if workers > iterations {
		workers = iterations
	}

	scores := make([]float64, iterations)
	chunk := (iterations + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < iterations; start += chunk {
		end := min(start+chunk, iterations)
		g.Go(func() error {
			idx := make([]int, pair.Len())
			for i := start; i < end; i++ {
				rng, err := r.rngPort.Stream(gctx, string(mode), seed, i)
				if err != nil {
					return err
				}
				draw(rng, idx)
				if mode == resampling.ModeBootstrap {
					scores[i] = pair.ScoreIndexed(idx, idx)
				} else {
					scores[i] = pair.ScoreIndexed(nil, idx)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s resampling interrupted: %w", mode, err)
	}

	return &resampling.Distribution{
		Mode:       mode,
		Method:     method,
		Scores:     scores,
		Real:       pair.Score().Value,
		Iterations: iterations,
		Seed:       seed,
	}, nil
}

// drawWithReplacement fills idx with uniform positions in [0, len(idx))
func drawWithReplacement(rng *rand.Rand, idx []int) {
	n := len(idx)
	for j := range idx {
		idx[j] = rng.IntN(n)
	}
}

// drawPermutation fills idx with a uniform permutation (Fisher-Yates)
func drawPermutation(rng *rand.Rand, idx []int) {
	for j := range idx {
		idx[j] = j
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
