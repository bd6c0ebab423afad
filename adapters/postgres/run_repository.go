package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discscore/domain/core"
	"discscore/models"
	"discscore/ports"

	"github.com/jmoiron/sqlx"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

const runColumns = `id, kind, query_hash, query, sample_count, statistic,
	diagnostic, steps, runtime_ms, created_at`

// RunRepositoryImpl implements RunRepository on any sqlx driver (postgres in
// production, sqlite3 in tests); queries are rebound per driver.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run ledger repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// RecordRun inserts a run, assigning an ID and timestamp when missing
func (r *RunRepositoryImpl) RecordRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = core.NewRunID().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO solver_runs (
			id, kind, query_hash, query, sample_count, statistic,
			diagnostic, steps, runtime_ms, created_at
		) VALUES (
			:id, :kind, :query_hash, :query, :sample_count, :statistic,
			:diagnostic, :steps, :runtime_ms, :created_at
		)
	`, run)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*models.Run, error) {
	var run models.Run
	err := r.db.GetContext(ctx, &run, r.db.Rebind(`
		SELECT `+runColumns+`
		FROM solver_runs
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns runs newest first, optionally filtered by kind
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]*models.Run, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + runColumns + ` FROM solver_runs`
	args := []interface{}{}
	if filters.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, filters.Kind)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	runs := []*models.Run{}
	if err := r.db.SelectContext(ctx, &runs, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return runs, nil
}

// FindByQueryHash returns earlier runs of the same canonical query, newest first
func (r *RunRepositoryImpl) FindByQueryHash(ctx context.Context, hash core.Hash) ([]*models.Run, error) {
	runs := []*models.Run{}
	err := r.db.SelectContext(ctx, &runs, r.db.Rebind(`
		SELECT `+runColumns+`
		FROM solver_runs
		WHERE query_hash = ?
		ORDER BY created_at DESC, id DESC
	`), hash.String())
	if err != nil {
		return nil, err
	}
	return runs, nil
}
