package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"discscore/domain/core"
	"discscore/internal"
	"discscore/models"
	"discscore/ports"
)

// runRecorder writes finished runs to the ledger. A nil repository turns it
// into a no-op; ledger failures are logged and never fail the caller.
type runRecorder struct {
	runs   ports.RunRepository
	logger *internal.Logger
}

// record fingerprints query, fills the run and stores it. It returns the run
// ID, or "" when nothing was stored.
func (r runRecorder) record(ctx context.Context, kind string, query interface{}, run *models.Run, started time.Time) string {
	if r.runs == nil {
		return ""
	}
	data, err := json.Marshal(query)
	if err != nil {
		r.logger.Warn("run not recorded: cannot encode %s query: %v", kind, err)
		return ""
	}

	run.Kind = kind
	run.Query = string(data)
	run.QueryHash = core.NewHash(data).String()
	run.RuntimeMs = time.Since(started).Milliseconds()
	if earlier, err := r.runs.FindByQueryHash(ctx, core.Hash(run.QueryHash)); err == nil && len(earlier) > 0 {
		r.logger.Debug("%s query %s was run %d time(s) before, last as %s", kind, core.Hash(run.QueryHash).Short(), len(earlier), earlier[0].ID)
	}
	if err := r.runs.RecordRun(ctx, run); err != nil {
		r.logger.Warn("run not recorded: %v", err)
		return ""
	}
	r.logger.Debug("recorded %s run %s (query %s)", kind, run.ID, core.Hash(run.QueryHash).Short())
	return run.ID
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// nullFloat stores finite values only
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// RunService exposes the ledger to the HTTP and CLI surfaces
type RunService struct {
	runs ports.RunRepository
}

// NewRunService creates a run service; runs may be nil when no ledger is configured
func NewRunService(runs ports.RunRepository) *RunService {
	return &RunService{runs: runs}
}

// Enabled reports whether a ledger is configured
func (s *RunService) Enabled() bool {
	return s.runs != nil
}

// List returns recorded runs newest first
func (s *RunService) List(ctx context.Context, filters ports.RunFilters) ([]models.RunView, error) {
	if s.runs == nil {
		return []models.RunView{}, nil
	}
	runs, err := s.runs.ListRuns(ctx, filters)
	if err != nil {
		return nil, err
	}
	views := make([]models.RunView, len(runs))
	for i, r := range runs {
		views[i] = r.View()
	}
	return views, nil
}

// Get returns one recorded run
func (s *RunService) Get(ctx context.Context, id core.RunID) (*models.RunView, error) {
	if s.runs == nil {
		return nil, core.ErrRunNotFound
	}
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	view := run.View()
	return &view, nil
}
