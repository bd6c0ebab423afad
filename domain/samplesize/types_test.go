package samplesize

import (
	"errors"
	"fmt"
	"testing"

	"discscore/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *SingleQuery)
		wantErr bool
	}{
		{"defaults", func(q *SingleQuery) {}, false},
		{"threshold above one", func(q *SingleQuery) { q.Threshold = 1.2 }, true},
		{"negative confidence", func(q *SingleQuery) { q.Confidence = -0.1 }, true},
		{"n_low zero", func(q *SingleQuery) { q.NLow = 0 }, true},
		{"n_high equals n_low", func(q *SingleQuery) { q.NHigh = q.NLow }, true},
		{"n_high above form range", func(q *SingleQuery) { q.NHigh = 20000000 }, true},
		{"n_low above form range", func(q *SingleQuery) { q.NLow, q.NHigh = 2000000, 3000000 }, true},
		{"threshold plus accuracy above one", func(q *SingleQuery) { q.Threshold = 0.99 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := DefaultSingleQuery(0.7)
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidQuery)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDualQuery_Validate(t *testing.T) {
	q := DefaultDualQuery()
	require.NoError(t, q.Validate())

	q.RedThreshold = 0.2
	assert.ErrorIs(t, q.Validate(), core.ErrInvalidQuery)

	q = DefaultDualQuery()
	q.GreenThreshold = 0.01
	assert.ErrorIs(t, q.Validate(), core.ErrInvalidQuery)
}

func TestSimulationQuery_Validate(t *testing.T) {
	q := DefaultSimulationQuery(1, 1000, 100, 10, 8)
	require.NoError(t, q.Validate())
	assert.InDelta(t, 0.8, q.GuaranteeFraction(), 1e-12)

	bad := q
	bad.Guarantee = 11
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidQuery)

	bad = q
	bad.Punish = 101
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidQuery)

	bad = q
	bad.MinDisc, bad.MaxDisc = 0.8, 0.2
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidQuery)

	bad = q
	bad.Distribution = "beta"
	assert.ErrorIs(t, bad.Validate(), core.ErrUnknownDistribution)
}

func TestInfeasibleError(t *testing.T) {
	var err error = &InfeasibleError{Diagnostic: IncreaseMaximum, Bound: 100, Achieved: 0.5, Target: 0.9}
	wrapped := fmt.Errorf("solve: %w", err)

	assert.True(t, errors.Is(wrapped, core.ErrInfeasibleBounds))
	ie, ok := AsInfeasible(wrapped)
	require.True(t, ok)
	assert.Equal(t, IncreaseMaximum, ie.Diagnostic)
	assert.Contains(t, err.Error(), "Increase maximum # samples")
	assert.Equal(t, "Decrease minimum # samples", DecreaseMinimum.Message())
}

func TestNewBands(t *testing.T) {
	q := DefaultDualQuery()
	bands := NewBands(q, Result{N: 900, PGreen: 0.9012345678, PRed: 0.905})

	require.Len(t, bands.Segments, 5)
	assert.Equal(t, 900, bands.Samples)
	assert.InDelta(t, 0.0, bands.Segments[0].Left, 1e-12)
	assert.InDelta(t, 1.0, bands.Segments[4].Right, 1e-12)
	assert.InDelta(t, 0.90123, bands.GreenConfidence, 1e-12)

	total := 0.0
	for i, s := range bands.Segments {
		total += s.Width()
		if i > 0 {
			assert.InDelta(t, bands.Segments[i-1].Right, s.Left, 1e-12, "segments must be contiguous")
		}
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.Equal(t, []float64{0, 0.28, 0.3, 0.7, 0.72, 1}, bands.Ticks)
}
