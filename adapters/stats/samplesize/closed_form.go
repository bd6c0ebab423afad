package samplesize

import (
	"context"
	"math"

	"discscore/adapters/stats/binomial"
	domain "discscore/domain/samplesize"
)

// Step records one midpoint evaluation of a bisection
type Step struct {
	Low    int     `json:"n_low"`
	High   int     `json:"n_high"`
	Mid    int     `json:"n_mid"`
	PGreen float64 `json:"p_green,omitempty"`
	PRed   float64 `json:"p_red,omitempty"`
	// Frequency is set by the simulation solver only
	Frequency float64 `json:"frequency,omitempty"`
}

// TraceFunc observes search steps, e.g. for debug logging
type TraceFunc func(Step)

// ClosedFormSolver finds sample counts from exact binomial tails
type ClosedFormSolver struct {
	trace TraceFunc
}

// NewClosedFormSolver creates a solver
func NewClosedFormSolver() *ClosedFormSolver {
	return &ClosedFormSolver{}
}

// SetTrace installs a step observer; nil disables tracing
func (s *ClosedFormSolver) SetTrace(fn TraceFunc) {
	s.trace = fn
}

// SolveSingle returns the smallest n for which a rater at threshold+accuracy
// is classified red with probability within tolerance of confidence.
// Infeasible bounds are reported as *domain.InfeasibleError.
func (s *ClosedFormSolver) SolveSingle(ctx context.Context, q domain.SingleQuery) (*domain.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	red := func(n int) float64 {
		return binomial.RedConfidence(q.Threshold, q.Accuracy, n)
	}

	lo, hi := q.NLow, q.NHigh
	pHigh, pLow := red(hi), red(lo)
	if !(pHigh > q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.IncreaseMaximum, Bound: hi, Achieved: pHigh, Target: q.Confidence}
	}
	if !(pLow < q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.DecreaseMinimum, Bound: lo, Achieved: pLow, Target: q.Confidence}
	}

	steps := 0
	for math.Abs(pHigh-q.Confidence) > q.Tolerance && hi-lo > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid := (lo + hi) / 2
		pMid := red(mid)
		steps++
		s.emit(Step{Low: lo, High: hi, Mid: mid, PRed: pMid})

		if pMid <= q.Confidence-q.Tolerance {
			lo = mid
		} else {
			hi, pHigh = mid, pMid
		}
	}

	return &domain.Result{N: hi, Steps: steps, PRed: pHigh}, nil
}

// SolveDual returns the smallest n that satisfies the green and the red
// guarantee together. A midpoint is rejected when either side falls at or
// below confidence-tolerance.
func (s *ClosedFormSolver) SolveDual(ctx context.Context, q domain.DualQuery) (*domain.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	green := func(n int) float64 {
		return binomial.GreenConfidence(q.GreenThreshold, q.Accuracy, n)
	}
	red := func(n int) float64 {
		return binomial.RedConfidence(q.RedThreshold, q.Accuracy, n)
	}

	lo, hi := q.NLow, q.NHigh
	gHigh, rHigh := green(hi), red(hi)
	gLow, rLow := green(lo), red(lo)
	if !(gHigh > q.Confidence && rHigh > q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.IncreaseMaximum, Bound: hi, Achieved: math.Min(gHigh, rHigh), Target: q.Confidence}
	}
	if !(gLow < q.Confidence && rLow < q.Confidence) {
		return nil, &domain.InfeasibleError{Diagnostic: domain.DecreaseMinimum, Bound: lo, Achieved: math.Max(gLow, rLow), Target: q.Confidence}
	}

	steps := 0
	for (math.Abs(q.Confidence-gHigh) > q.Tolerance || math.Abs(q.Confidence-rHigh) > q.Tolerance) && hi-lo > 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mid := (lo + hi) / 2
		gMid, rMid := green(mid), red(mid)
		steps++
		s.emit(Step{Low: lo, High: hi, Mid: mid, PGreen: gMid, PRed: rMid})

		if gMid <= q.Confidence-q.Tolerance || rMid <= q.Confidence-q.Tolerance {
			lo = mid
		} else {
			hi, gHigh, rHigh = mid, gMid, rMid
		}
	}

	return &domain.Result{N: hi, Steps: steps, PGreen: gHigh, PRed: rHigh}, nil
}

func (s *ClosedFormSolver) emit(step Step) {
	if s.trace != nil {
		s.trace(step)
	}
}

// SolveSingle runs the single-threshold search without tracing
func SolveSingle(q domain.SingleQuery) (*domain.Result, error) {
	return NewClosedFormSolver().SolveSingle(context.Background(), q)
}

// SolveDual runs the dual-threshold search without tracing
func SolveDual(q domain.DualQuery) (*domain.Result, error) {
	return NewClosedFormSolver().SolveDual(context.Background(), q)
}
