package app

import (
	"context"
	"fmt"
	"io"

	domain "discscore/domain/samplesize"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// BatchPlan is a YAML file of sample-size queries. Fields left out of an
// entry keep the script defaults.
//
//	single:
//	  - threshold: 0.7
//	dual:
//	  - {t_green: 0.3, t_red: 0.7, confidence: 0.95}
//	simulation:
//	  - {min_n_samples: 1, max_n_samples: 1000, n_sub: 100, n_punish: 10, n_guarantee: 8}
type BatchPlan struct {
	Single     []domain.SingleQuery
	Dual       []domain.DualQuery
	Simulation []domain.SimulationQuery
}

// Len is the number of queries in the plan
func (p *BatchPlan) Len() int {
	return len(p.Single) + len(p.Dual) + len(p.Simulation)
}

// LoadBatchPlan decodes a plan, filling every entry over its defaults
func LoadBatchPlan(r io.Reader) (*BatchPlan, error) {
	var raw struct {
		Single     []yaml.Node `yaml:"single"`
		Dual       []yaml.Node `yaml:"dual"`
		Simulation []yaml.Node `yaml:"simulation"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid batch plan: %w", err)
	}

	plan := &BatchPlan{}
	for i, node := range raw.Single {
		q := domain.DefaultSingleQuery(domain.DefaultRedThreshold)
		if err := node.Decode(&q); err != nil {
			return nil, fmt.Errorf("single[%d] (line %d): %w", i, node.Line, err)
		}
		plan.Single = append(plan.Single, q)
	}
	for i, node := range raw.Dual {
		q := domain.DefaultDualQuery()
		if err := node.Decode(&q); err != nil {
			return nil, fmt.Errorf("dual[%d] (line %d): %w", i, node.Line, err)
		}
		plan.Dual = append(plan.Dual, q)
	}
	for i, node := range raw.Simulation {
		q := domain.DefaultSimulationQuery(0, 0, 0, 0, 0)
		q.Simulations = 0
		if err := node.Decode(&q); err != nil {
			return nil, fmt.Errorf("simulation[%d] (line %d): %w", i, node.Line, err)
		}
		plan.Simulation = append(plan.Simulation, q)
	}
	return plan, nil
}

// BatchResult is one query's outcome. Err holds the failure, including
// infeasible-bounds diagnostics, so one bad entry does not sink the batch.
type BatchResult struct {
	Kind    string        `json:"kind"`
	Index   int           `json:"index"`
	Outcome *SolveOutcome `json:"outcome,omitempty"`
	Err     error         `json:"-"`
	Error   string        `json:"error,omitempty"`
}

// RunBatch solves every query of plan with at most parallel in flight.
// Results come back in plan order: single, then dual, then simulation.
func (s *SampleSizeService) RunBatch(ctx context.Context, plan *BatchPlan, parallel int) ([]BatchResult, error) {
	results := make([]BatchResult, 0, plan.Len())
	var jobs []func(context.Context) (*SolveOutcome, error)

	for i, q := range plan.Single {
		results = append(results, BatchResult{Kind: "single", Index: i})
		jobs = append(jobs, func(ctx context.Context) (*SolveOutcome, error) { return s.SolveSingle(ctx, q) })
	}
	for i, q := range plan.Dual {
		results = append(results, BatchResult{Kind: "dual", Index: i})
		jobs = append(jobs, func(ctx context.Context) (*SolveOutcome, error) { return s.SolveDual(ctx, q) })
	}
	for i, q := range plan.Simulation {
		results = append(results, BatchResult{Kind: "simulation", Index: i})
		jobs = append(jobs, func(ctx context.Context) (*SolveOutcome, error) { return s.Simulate(ctx, q) })
	}

	if parallel < 1 {
		parallel = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, job := range jobs {
		g.Go(func() error {
			out, err := job(gctx)
			if err != nil {
				// cancellation stops the batch; anything else is recorded per entry
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Outcome = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	s.logger.Info("batch of %d queries finished", len(results))
	return results, nil
}
