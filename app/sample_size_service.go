package app

import (
	"context"
	"time"

	"discscore/adapters/stats/samplesize"
	domain "discscore/domain/samplesize"
	"discscore/internal"
	"discscore/internal/config"
	"discscore/internal/metrics"
	"discscore/models"
	"discscore/ports"
)

// SolveOutcome is a successful search plus its ledger entry
type SolveOutcome struct {
	Result *domain.Result `json:"result"`
	Bands  *domain.Bands  `json:"bands,omitempty"`
	RunID  string         `json:"run_id,omitempty"`
}

// SampleSizeService runs the closed-form and simulation solvers with
// logging, metrics and the run ledger around them
type SampleSizeService struct {
	closedForm *samplesize.ClosedFormSolver
	simulator  *samplesize.Simulator
	recorder   runRecorder
	engine     config.EngineConfig
	logger     *internal.Logger
}

// NewSampleSizeService creates the service; runs may be nil
func NewSampleSizeService(rngPort ports.RNGPort, runs ports.RunRepository, engine config.EngineConfig) *SampleSizeService {
	logger := internal.DefaultLogger.With("samplesize")

	closedForm := samplesize.NewClosedFormSolver()
	simulator := samplesize.NewSimulator(rngPort)
	if engine.Workers > 0 {
		simulator.SetWorkers(engine.Workers)
	}
	if logger.Enabled(internal.LogLevelTrace) {
		trace := func(st samplesize.Step) {
			logger.Trace("step lo=%d hi=%d mid=%d green=%.5f red=%.5f freq=%.3f", st.Low, st.High, st.Mid, st.PGreen, st.PRed, st.Frequency)
		}
		closedForm.SetTrace(trace)
		simulator.SetTrace(trace)
	}

	return &SampleSizeService{
		closedForm: closedForm,
		simulator:  simulator,
		recorder:   runRecorder{runs: runs, logger: logger},
		engine:     engine,
		logger:     logger,
	}
}

// SolveSingle finds the sample count for one red threshold
func (s *SampleSizeService) SolveSingle(ctx context.Context, q domain.SingleQuery) (*SolveOutcome, error) {
	started := time.Now()
	res, err := s.closedForm.SolveSingle(ctx, q)
	out, err := s.finish(ctx, "single", models.RunKindSingle, q, res, err, started)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SolveDual finds the sample count for a green and a red threshold and lays out the bands
func (s *SampleSizeService) SolveDual(ctx context.Context, q domain.DualQuery) (*SolveOutcome, error) {
	started := time.Now()
	res, err := s.closedForm.SolveDual(ctx, q)
	out, err := s.finish(ctx, "dual", models.RunKindDual, q, res, err, started)
	if err != nil {
		return nil, err
	}
	bands := domain.NewBands(q, *res)
	out.Bands = &bands
	return out, nil
}

// Simulate runs the Monte Carlo worst-offender search. Zero Simulations and
// Seed fall back to the engine configuration.
func (s *SampleSizeService) Simulate(ctx context.Context, q domain.SimulationQuery) (*SolveOutcome, error) {
	started := time.Now()
	if q.Simulations == 0 {
		q.Simulations = s.engine.Simulations
	}
	if q.Seed == 0 {
		q.Seed = s.engine.Seed
	}
	if q.Distribution == "" {
		q.Distribution = domain.DistributionUniform
	}
	s.logger.Info("simulating n in [%d, %d]: %d raters, catch %d of %d worst, %d trials",
		q.MinSamples, q.MaxSamples, q.Subordinates, q.Guarantee, q.Punish, q.Simulations)

	res, err := s.simulator.Solve(ctx, q)
	return s.finish(ctx, "simulation", models.RunKindSimulation, q, res, err, started)
}

// finish logs, meters and records a search, then passes err through unchanged
func (s *SampleSizeService) finish(ctx context.Context, solver, kind string, query interface{}, res *domain.Result, err error, started time.Time) (*SolveOutcome, error) {
	elapsed := time.Since(started)
	run := &models.Run{}

	if err != nil {
		ie, infeasible := domain.AsInfeasible(err)
		if !infeasible {
			metrics.ObserveSolve(solver, "error", 0, elapsed)
			s.logger.Warn("%s solve failed: %v", solver, err)
			return nil, err
		}
		metrics.ObserveSolve(solver, string(ie.Diagnostic), 0, elapsed)
		s.logger.Info("%s solve infeasible: %v", solver, ie)
		run.Diagnostic = string(ie.Diagnostic)
		run.Statistic = nullFloat(ie.Achieved)
		s.recorder.record(ctx, kind, query, run, started)
		return nil, err
	}

	metrics.ObserveSolve(solver, "ok", res.Steps, elapsed)
	s.logger.Info("%s solve: n=%d after %d steps in %s", solver, res.N, res.Steps, elapsed)
	run.SampleCount = nullInt(res.N)
	run.Steps = res.Steps
	switch {
	case res.Frequency > 0:
		run.Statistic = nullFloat(res.Frequency)
	case res.PGreen > 0:
		run.Statistic = nullFloat(min(res.PGreen, res.PRed))
	default:
		run.Statistic = nullFloat(res.PRed)
	}
	return &SolveOutcome{Result: res, RunID: s.recorder.record(ctx, kind, query, run, started)}, nil
}
