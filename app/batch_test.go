package app

import (
	"context"
	"strings"
	"testing"

	"discscore/domain/core"
	domain "discscore/domain/samplesize"
	"discscore/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchYAML = `
single:
  - threshold: 0.7
  - threshold: 0.7
    confidence: 0.8
dual:
  - {t_green: 0.3, t_red: 0.7}
  - {n_high: 200}
simulation:
  - {min_n_samples: 1, max_n_samples: 3, n_sub: 100, n_punish: 10, n_guarantee: 10, seed: 1}
`

func TestLoadBatchPlan_FillsDefaults(t *testing.T) {
	plan, err := LoadBatchPlan(strings.NewReader(batchYAML))
	require.NoError(t, err)
	require.Equal(t, 5, plan.Len())

	assert.Equal(t, domain.DefaultConfidence, plan.Single[0].Confidence)
	assert.Equal(t, 0.8, plan.Single[1].Confidence)
	assert.Equal(t, domain.DefaultNHigh, plan.Single[1].NHigh)
	assert.Equal(t, 200, plan.Dual[1].NHigh)
	assert.Equal(t, domain.DefaultGreenThreshold, plan.Dual[1].GreenThreshold)
	assert.Equal(t, 0, plan.Simulation[0].Simulations)
	assert.Equal(t, domain.DistributionUniform, plan.Simulation[0].Distribution)
}

func TestLoadBatchPlan_Errors(t *testing.T) {
	_, err := LoadBatchPlan(strings.NewReader("singles:\n  - threshold: 0.7\n"))
	assert.Error(t, err)

	_, err = LoadBatchPlan(strings.NewReader("single:\n  - threshold: high\n"))
	assert.ErrorContains(t, err, "single[0]")

	plan, err := LoadBatchPlan(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, plan.Len())
}

func TestSampleSizeService_RunBatch(t *testing.T) {
	plan, err := LoadBatchPlan(strings.NewReader(batchYAML))
	require.NoError(t, err)
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())

	results, err := svc.RunBatch(context.Background(), plan, 3)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, "single", results[0].Kind)
	assert.Equal(t, 861, results[0].Outcome.Result.N)
	assert.Equal(t, 362, results[1].Outcome.Result.N)
	assert.Equal(t, 861, results[2].Outcome.Result.N)
	assert.NotNil(t, results[2].Outcome.Bands)

	assert.Equal(t, "dual", results[3].Kind)
	assert.Equal(t, 1, results[3].Index)
	assert.ErrorIs(t, results[3].Err, core.ErrInfeasibleBounds)
	assert.Nil(t, results[3].Outcome)

	assert.Equal(t, "simulation", results[4].Kind)
	assert.ErrorIs(t, results[4].Err, core.ErrInfeasibleBounds)
}

func TestSampleSizeService_RunBatchCancelled(t *testing.T) {
	plan, err := LoadBatchPlan(strings.NewReader(batchYAML))
	require.NoError(t, err)
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.RunBatch(ctx, plan, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
