package app

import (
	"context"
	"time"

	"discscore/adapters/battery"
	"discscore/adapters/stats/scoring"
	"discscore/domain/discrepancy"
	"discscore/domain/resampling"
	"discscore/internal"
	"discscore/internal/config"
	"discscore/internal/metrics"
	"discscore/models"
	"discscore/ports"
)

// DefaultHistogramBins is used when a request does not ask for a bin count
const DefaultHistogramBins = 50

// ResampleRequest asks for a bootstrap or shuffle distribution of one pair
type ResampleRequest struct {
	Subordinate discrepancy.Series `json:"subordinate"`
	Supervisor  discrepancy.Series `json:"supervisor"`
	Method      discrepancy.Method `json:"method"`
	Iterations  int                `json:"iterations,omitempty"`
	Seed        uint64             `json:"seed,omitempty"`
	Bins        int                `json:"bins,omitempty"`
}

// ResampleOutcome is a distribution reduced for transport. Scores are kept so
// callers can render or re-test them.
type ResampleOutcome struct {
	Distribution *resampling.Distribution `json:"distribution"`
	Summary      *resampling.Summary      `json:"summary,omitempty"`
	Histogram    resampling.Histogram     `json:"histogram"`
	Significance *battery.Significance    `json:"significance,omitempty"`
	RunID        string                   `json:"run_id,omitempty"`
}

// DiscrepancyService scores paired series and builds their resampling distributions
type DiscrepancyService struct {
	resampler *battery.Resampler
	recorder  runRecorder
	engine    config.EngineConfig
	logger    *internal.Logger
}

// NewDiscrepancyService wires the resampler to the RNG port and optional ledger
func NewDiscrepancyService(rngPort ports.RNGPort, runs ports.RunRepository, engine config.EngineConfig) *DiscrepancyService {
	logger := internal.DefaultLogger.With("discrepancy")
	resampler := battery.NewResampler(rngPort)
	if engine.Workers > 0 {
		resampler.SetWorkers(engine.Workers)
	}
	return &DiscrepancyService{
		resampler: resampler,
		recorder:  runRecorder{runs: runs, logger: logger},
		engine:    engine,
		logger:    logger,
	}
}

// Score computes the discrepancy between two paired series
func (s *DiscrepancyService) Score(ctx context.Context, sub, sup discrepancy.Series, method discrepancy.Method) (discrepancy.Score, error) {
	score, err := scoring.Compute(sub, sup, method)
	if err != nil {
		metrics.ObserveScore(string(method), "error")
		return score, err
	}
	if !score.Finite() {
		metrics.ObserveScore(string(method), "non_finite")
		s.logger.Warn("%s over %d pairs is not finite (%v): a supervisor value is zero", method, score.N, score.Value)
		return score, nil
	}
	metrics.ObserveScore(string(method), "ok")
	return score, nil
}

// Bootstrap resamples pairs with replacement
func (s *DiscrepancyService) Bootstrap(ctx context.Context, req ResampleRequest) (*ResampleOutcome, error) {
	return s.resample(ctx, resampling.ModeBootstrap, req)
}

// Shuffle permutes the supervisor series and tests the real score against the result
func (s *DiscrepancyService) Shuffle(ctx context.Context, req ResampleRequest) (*ResampleOutcome, error) {
	return s.resample(ctx, resampling.ModeShuffle, req)
}

func (s *DiscrepancyService) resample(ctx context.Context, mode resampling.Mode, req ResampleRequest) (*ResampleOutcome, error) {
	started := time.Now()
	opts := battery.Options{Iterations: req.Iterations, Seed: req.Seed}
	if opts.Iterations <= 0 {
		opts.Iterations = s.engine.ResampleIterations
	}
	if opts.Seed == 0 {
		opts.Seed = s.engine.Seed
	}

	s.logger.Info("%s %s: %d pairs, %d iterations", mode, req.Method, len(req.Subordinate), opts.Iterations)
	dist, err := s.resampler.Run(ctx, mode, req.Subordinate, req.Supervisor, req.Method, opts)
	if err != nil {
		s.logger.Warn("%s failed: %v", mode, err)
		return nil, err
	}
	metrics.ObserveResample(string(mode), dist.Iterations, time.Since(started))

	bins := req.Bins
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	out := &ResampleOutcome{
		Distribution: dist,
		Histogram:    battery.BuildHistogram(dist.Scores, bins),
	}
	if summary, err := battery.Summarize(dist.Scores); err == nil {
		out.Summary = &summary
	} else {
		s.logger.Warn("%s produced no finite scores", mode)
	}

	run := &models.Run{Statistic: nullFloat(dist.Real)}
	kind := models.RunKindBootstrap
	if mode == resampling.ModeShuffle {
		kind = models.RunKindShuffle
		if sig, err := battery.Evaluate(dist); err == nil {
			out.Significance = sig
			run.Statistic = nullFloat(sig.PValue)
			s.logger.Info("shuffle %s: real=%.6g p=%.4f", req.Method, sig.Observed, sig.PValue)
		}
	}

	recorded := req
	recorded.Iterations, recorded.Seed = dist.Iterations, dist.Seed
	out.RunID = s.recorder.record(ctx, kind, recorded, run, started)
	s.logger.Debug("%s finished in %s (seed %d)", mode, time.Since(started), dist.Seed)
	return out, nil
}
