package samplesize

import (
	"context"
	"testing"

	"discscore/adapters/stats/binomial"
	"discscore/domain/core"
	domain "discscore/domain/samplesize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveSingle_DefaultQuery(t *testing.T) {
	q := domain.DefaultSingleQuery(0.7)
	res, err := SolveSingle(q)
	require.NoError(t, err)

	assert.Equal(t, 861, res.N)
	assert.Greater(t, res.Steps, 0)
	assert.GreaterOrEqual(t, binomial.RedConfidence(0.7, 0.02, res.N), q.Confidence-q.Tolerance)
	assert.InDelta(t, binomial.RedConfidence(0.7, 0.02, res.N), res.PRed, 1e-12)
	assert.Less(t, binomial.RedConfidence(0.7, 0.02, res.N-1), q.Confidence)
}

func TestSolveSingle_ZeroToleranceFindsCrossing(t *testing.T) {
	q := domain.DefaultSingleQuery(0.7)
	q.Tolerance = 0
	res, err := SolveSingle(q)
	require.NoError(t, err)

	// with no tolerance the bounds close to adjacent integers
	assert.Greater(t, binomial.RedConfidence(0.7, 0.02, res.N), q.Confidence)
	assert.LessOrEqual(t, binomial.RedConfidence(0.7, 0.02, res.N-1), q.Confidence)
}

func TestSolveSingle_LowerConfidenceNeedsFewerSamples(t *testing.T) {
	q := domain.DefaultSingleQuery(0.7)
	strict, err := SolveSingle(q)
	require.NoError(t, err)

	q.Confidence = 0.8
	loose, err := SolveSingle(q)
	require.NoError(t, err)
	assert.Equal(t, 362, loose.N)
	assert.Less(t, loose.N, strict.N)
}

func TestSolveSingle_Infeasible(t *testing.T) {
	q := domain.DefaultSingleQuery(0.7)
	q.NHigh = 100
	_, err := SolveSingle(q)
	require.ErrorIs(t, err, core.ErrInfeasibleBounds)
	ie, ok := domain.AsInfeasible(err)
	require.True(t, ok)
	assert.Equal(t, domain.IncreaseMaximum, ie.Diagnostic)
	assert.Equal(t, 100, ie.Bound)
	assert.LessOrEqual(t, ie.Achieved, q.Confidence)

	q = domain.DefaultSingleQuery(0.7)
	q.NLow = 2000
	_, err = SolveSingle(q)
	ie, ok = domain.AsInfeasible(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecreaseMinimum, ie.Diagnostic)
	assert.GreaterOrEqual(t, ie.Achieved, q.Confidence)
}

func TestSolveSingle_InvalidQuery(t *testing.T) {
	q := domain.DefaultSingleQuery(0.7)
	q.NHigh = 1
	_, err := SolveSingle(q)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}

func TestSolveDual_DefaultQuery(t *testing.T) {
	q := domain.DefaultDualQuery()
	res, err := SolveDual(q)
	require.NoError(t, err)

	assert.Equal(t, 861, res.N)
	floor := q.Confidence - q.Tolerance
	assert.GreaterOrEqual(t, binomial.GreenConfidence(q.GreenThreshold, q.Accuracy, res.N), floor)
	assert.GreaterOrEqual(t, binomial.RedConfidence(q.RedThreshold, q.Accuracy, res.N), floor)
	assert.InDelta(t, binomial.GreenConfidence(q.GreenThreshold, q.Accuracy, res.N), res.PGreen, 1e-12)
}

func TestSolveDual_ConfidenceMonotone(t *testing.T) {
	prev := 0
	for _, conf := range []float64{0.8, 0.9, 0.95} {
		q := domain.DefaultDualQuery()
		q.Confidence = conf
		res, err := SolveDual(q)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.N, prev, "confidence %v", conf)
		prev = res.N
	}
	assert.Equal(t, 1368, prev)
}

func TestSolveDual_Infeasible(t *testing.T) {
	q := domain.DefaultDualQuery()
	q.NHigh = 200
	_, err := SolveDual(q)
	ie, ok := domain.AsInfeasible(err)
	require.True(t, ok)
	assert.Equal(t, domain.IncreaseMaximum, ie.Diagnostic)

	q = domain.DefaultDualQuery()
	q.NLow = 3000
	_, err = SolveDual(q)
	ie, ok = domain.AsInfeasible(err)
	require.True(t, ok)
	assert.Equal(t, domain.DecreaseMinimum, ie.Diagnostic)
}

func TestClosedFormSolver_Trace(t *testing.T) {
	s := NewClosedFormSolver()
	var steps []Step
	s.SetTrace(func(st Step) { steps = append(steps, st) })

	res, err := s.SolveDual(context.Background(), domain.DefaultDualQuery())
	require.NoError(t, err)
	require.Len(t, steps, res.Steps)
	for _, st := range steps {
		assert.Equal(t, (st.Low+st.High)/2, st.Mid)
		assert.Less(t, st.Low, st.High)
	}
	last := steps[len(steps)-1]
	assert.LessOrEqual(t, res.N, last.High)
}

func TestClosedFormSolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClosedFormSolver().SolveSingle(ctx, domain.DefaultSingleQuery(0.7))
	assert.ErrorIs(t, err, context.Canceled)
}
