package ports

import (
	"context"

	"discscore/domain/core"
	"discscore/models"
)

// RunFilters narrows a run listing
type RunFilters struct {
	Kind   string
	Limit  int
	Offset int
}

// RunRepository records solver and resampling runs for later audit
type RunRepository interface {
	// Record a finished run
	RecordRun(ctx context.Context, run *models.Run) error

	// Get a single run by ID
	GetRun(ctx context.Context, id core.RunID) (*models.Run, error)

	// List runs, newest first
	ListRuns(ctx context.Context, filters RunFilters) ([]*models.Run, error)

	// Find earlier runs of the same query
	FindByQueryHash(ctx context.Context, hash core.Hash) ([]*models.Run, error)
}
