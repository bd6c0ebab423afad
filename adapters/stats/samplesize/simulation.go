package samplesize

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"

	"discscore/adapters/stats/binomial"
	"discscore/domain/core"
	domain "discscore/domain/samplesize"
	"discscore/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stream names used by the simulation
const (
	trueScoreStream   = "true-disc"
	measurementStream = "measurement"
)

// Simulator estimates, by Monte Carlo, how many samples per rater are needed
// to recover the true worst offenders.
type Simulator struct {
	rngPort ports.RNGPort
	workers int
	trace   TraceFunc
}

// NewSimulator creates a simulator drawing randomness from rngPort
func NewSimulator(rngPort ports.RNGPort) *Simulator {
	return &Simulator{
		rngPort: rngPort,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers configures how many goroutines run trials concurrently
func (s *Simulator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

// SetTrace installs a step observer; nil disables tracing
func (s *Simulator) SetTrace(fn TraceFunc) {
	s.trace = fn
}

// Solve bisects [MinSamples, MaxSamples] for the smallest n whose success
// frequency exceeds Confidence.
//
// True scores are drawn once per solve and trial t uses the same measurement
// stream at every candidate n, so frequencies at different n differ only
// through n.
func (s *Simulator) Solve(ctx context.Context, q domain.SimulationQuery) (*domain.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	seed := q.Seed
	if seed == 0 {
		seed = s.rngPort.FreshSeed()
	}

	rng, err := s.rngPort.SeededStream(ctx, trueScoreStream, seed)
	if err != nil {
		return nil, err
	}
	truth, err := TrueScores(q, rng)
	if err != nil {
		return nil, err
	}

	lo, hi := q.MinSamples, q.MaxSamples
	freqHigh, err := s.FrequencyAt(ctx, q, truth, hi, seed)
	if err != nil {
		return nil, err
	}
	freqLow, err := s.FrequencyAt(ctx, q, truth, lo, seed)
	if err != nil {
		return nil, err
	}
	if !(freqHigh > q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.IncreaseMaximum, Bound: hi, Achieved: freqHigh, Target: q.Confidence}
	}
	if !(freqLow < q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.DecreaseMinimum, Bound: lo, Achieved: freqLow, Target: q.Confidence}
	}

	steps := 0
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		freqMid, err := s.FrequencyAt(ctx, q, truth, mid, seed)
		if err != nil {
			return nil, err
		}
		steps++
		if s.trace != nil {
			s.trace(Step{Low: lo, High: hi, Mid: mid, Frequency: freqMid})
		}

		if freqMid > q.Confidence {
			hi, freqHigh = mid, freqMid
		} else {
			lo = mid
		}
	}

	return &domain.Result{N: hi, Steps: steps, Frequency: freqHigh}, nil
}

// FrequencyAt runs q.Simulations trials with n samples per rater and returns
// the fraction in which at least q.Guarantee of the true worst q.Punish
// raters are among the measured worst q.Punish.
func (s *Simulator) FrequencyAt(ctx context.Context, q domain.SimulationQuery, truth []float64, n int, seed uint64) (float64, error) {
	if len(truth) != q.Subordinates {
		return 0, core.NewLengthMismatchError(len(truth), q.Subordinates)
	}
	trueWorst := WorstOffenders(truth, q.Punish)
	success := make([]bool, q.Simulations)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for t := 0; t < q.Simulations; t++ {
		g.Go(func() error {
			rng, err := s.rngPort.Stream(gctx, measurementStream, seed, t)
			if err != nil {
				return err
			}
			measured := MeasuredScores(truth, n, rng)
			success[t] = Overlap(trueWorst, WorstOffenders(measured, q.Punish)) >= q.Guarantee
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("simulation at n=%d interrupted: %w", n, err)
	}

	caught := 0
	for _, ok := range success {
		if ok {
			caught++
		}
	}
	return float64(caught) / float64(q.Simulations), nil
}

// TrueScores draws one true discrepancy rate per rater
func TrueScores(q domain.SimulationQuery, rng *rand.Rand) ([]float64, error) {
	switch q.Distribution {
	case "", domain.DistributionUniform:
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownDistribution, q.Distribution)
	}

	dist := distuv.Uniform{Min: q.MinDisc, Max: q.MaxDisc, Src: rng}
	scores := make([]float64, q.Subordinates)
	for i := range scores {
		if q.MinDisc == q.MaxDisc {
			scores[i] = q.MinDisc
			continue
		}
		scores[i] = dist.Rand()
	}
	return scores, nil
}

// MeasuredScores simulates n binary checks per rater: Binomial(n, truth)/n
func MeasuredScores(truth []float64, n int, rng *rand.Rand) []float64 {
	measured := make([]float64, len(truth))
	for i, p := range truth {
		measured[i] = float64(binomial.Draw(n, p, rng)) / float64(n)
	}
	return measured
}

// WorstOffenders returns the indices of the k largest scores in ascending
// score order. Ties keep index order.
func WorstOffenders(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] < scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	if k < 0 {
		k = 0
	}
	return idx[len(idx)-k:]
}

// Overlap counts how many entries of want also appear in got
func Overlap(want, got []int) int {
	seen := make(map[int]struct{}, len(got))
	for _, g := range got {
		seen[g] = struct{}{}
	}
	count := 0
	for _, w := range want {
		if _, ok := seen[w]; ok {
			count++
		}
	}
	return count
}
