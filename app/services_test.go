package app

import (
	"context"
	"testing"

	"discscore/adapters/db/postgres/migrations"
	"discscore/adapters/postgres"
	"discscore/domain/core"
	"discscore/domain/discrepancy"
	domain "discscore/domain/samplesize"
	"discscore/internal/config"
	"discscore/internal/testkit"
	"discscore/models"
	"discscore/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) ports.RunRepository {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = migrations.NewMigrator(db).Up(context.Background())
	require.NoError(t, err)
	return postgres.NewRunRepository(db)
}

func testEngine() config.EngineConfig {
	return config.EngineConfig{ResampleIterations: 1000, Simulations: 50, Workers: 2, Seed: 5}
}

func TestDiscrepancyService_Score(t *testing.T) {
	svc := NewDiscrepancyService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())

	score, err := svc.Score(context.Background(),
		discrepancy.Numeric([]float64{110, 90}), discrepancy.Numeric([]float64{100, 100}),
		discrepancy.MethodAbsolutePercentDifference)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, score.Value, 1e-12)

	score, err = svc.Score(context.Background(),
		discrepancy.Numeric([]float64{1}), discrepancy.Numeric([]float64{0}),
		discrepancy.MethodPercentDifference)
	require.NoError(t, err)
	assert.False(t, score.Finite())

	_, err = svc.Score(context.Background(),
		discrepancy.Numeric([]float64{1, 2}), discrepancy.Numeric([]float64{1}),
		discrepancy.MethodSimpleDifference)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
}

func TestDiscrepancyService_ShuffleRecordsRun(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	svc := NewDiscrepancyService(testkit.NewTestKit().RNGAdapter(), ledger, testEngine())

	cfg := testkit.DefaultAuditConfig()
	cfg.Samples = 60
	sub, sup := testkit.NewAuditGenerator(cfg).NumericPair()
	out, err := svc.Shuffle(ctx, ResampleRequest{
		Subordinate: discrepancy.Numeric(sub),
		Supervisor:  discrepancy.Numeric(sup),
		Method:      discrepancy.MethodAbsoluteDifference,
		Bins:        20,
	})
	require.NoError(t, err)

	// defaults come from the engine configuration
	assert.Equal(t, 1000, out.Distribution.Iterations)
	assert.Equal(t, uint64(5), out.Distribution.Seed)
	require.NotNil(t, out.Significance)
	require.NotNil(t, out.Summary)
	assert.Less(t, out.Significance.PValue, 0.05)
	assert.Len(t, out.Histogram.Counts, 20)
	require.NotEmpty(t, out.RunID)

	run, err := ledger.GetRun(ctx, core.RunID(out.RunID))
	require.NoError(t, err)
	assert.Equal(t, models.RunKindShuffle, run.Kind)
	assert.InDelta(t, out.Significance.PValue, run.Statistic.Float64, 1e-12)
	assert.Contains(t, run.Query, `"iterations":1000`)
}

func TestDiscrepancyService_BootstrapWithoutLedger(t *testing.T) {
	svc := NewDiscrepancyService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())
	sub, sup := testkit.NewAuditGenerator(testkit.DefaultAuditConfig()).LabelPair(4)

	out, err := svc.Bootstrap(context.Background(), ResampleRequest{
		Subordinate: sub,
		Supervisor:  sup,
		Method:      discrepancy.MethodPercentNonMatch,
		Iterations:  300,
		Seed:        9,
	})
	require.NoError(t, err)
	assert.Empty(t, out.RunID)
	assert.Nil(t, out.Significance)
	assert.Equal(t, 300, out.Distribution.Len())
	assert.Len(t, out.Histogram.Counts, DefaultHistogramBins)
}

func TestDiscrepancyService_RejectsUnknownMethod(t *testing.T) {
	svc := NewDiscrepancyService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())
	_, err := svc.Bootstrap(context.Background(), ResampleRequest{
		Subordinate: discrepancy.Numeric([]float64{1}),
		Supervisor:  discrepancy.Numeric([]float64{1}),
		Method:      "median_difference",
	})
	assert.ErrorIs(t, err, core.ErrUnknownMethod)
}

func TestSampleSizeService_SolveSingle(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), ledger, testEngine())

	out, err := svc.SolveSingle(ctx, domain.DefaultSingleQuery(0.7))
	require.NoError(t, err)
	assert.Equal(t, 861, out.Result.N)
	assert.Nil(t, out.Bands)

	run, err := ledger.GetRun(ctx, core.RunID(out.RunID))
	require.NoError(t, err)
	assert.Equal(t, models.RunKindSingle, run.Kind)
	assert.Equal(t, int64(861), run.SampleCount.Int64)
	assert.Equal(t, out.Result.Steps, run.Steps)
}

func TestSampleSizeService_SolveDualBuildsBands(t *testing.T) {
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())

	out, err := svc.SolveDual(context.Background(), domain.DefaultDualQuery())
	require.NoError(t, err)
	assert.Equal(t, 861, out.Result.N)
	require.NotNil(t, out.Bands)
	assert.Equal(t, 861, out.Bands.Samples)
	assert.NotEmpty(t, out.Bands.Segments)
}

func TestSampleSizeService_InfeasibleIsRecorded(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), ledger, testEngine())

	q := domain.DefaultDualQuery()
	q.NHigh = 200
	_, err := svc.SolveDual(ctx, q)
	ie, ok := domain.AsInfeasible(err)
	require.True(t, ok)
	assert.Equal(t, domain.IncreaseMaximum, ie.Diagnostic)

	runs, err := ledger.ListRuns(ctx, ports.RunFilters{Kind: models.RunKindDual})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(domain.IncreaseMaximum), runs[0].Diagnostic)
	assert.False(t, runs[0].SampleCount.Valid)
}

func TestSampleSizeService_SimulateUsesEngineDefaults(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), ledger, testEngine())

	q := domain.DefaultSimulationQuery(1, 3, 100, 10, 10)
	q.Simulations = 0
	q.Distribution = ""
	_, err := svc.Simulate(ctx, q)
	require.ErrorIs(t, err, core.ErrInfeasibleBounds)

	runs, err := ledger.ListRuns(ctx, ports.RunFilters{Kind: models.RunKindSimulation})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Query, `"n_simulations":50`)
	assert.Contains(t, runs[0].Query, `"seed":5`)
	assert.Contains(t, runs[0].Query, `"distribution":"uniform"`)
}

func TestSampleSizeService_Simulate(t *testing.T) {
	svc := NewSampleSizeService(testkit.NewTestKit().RNGAdapter(), nil, testEngine())

	q := domain.DefaultSimulationQuery(1, 1000, 100, 10, 8)
	q.Simulations = 200
	q.Seed = 11
	out, err := svc.Simulate(context.Background(), q)
	require.NoError(t, err)
	assert.Greater(t, out.Result.Frequency, q.Confidence)
	assert.GreaterOrEqual(t, out.Result.N, 1)
	assert.LessOrEqual(t, out.Result.N, 1000)
}

func TestRunService_WithoutLedger(t *testing.T) {
	svc := NewRunService(nil)
	assert.False(t, svc.Enabled())

	views, err := svc.List(context.Background(), ports.RunFilters{})
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = svc.Get(context.Background(), core.NewRunID())
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
