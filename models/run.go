package models

import (
	"database/sql"
	"time"
)

// Run kinds recorded in the ledger
const (
	RunKindSingle     = "samplesize_single"
	RunKindDual       = "samplesize_dual"
	RunKindSimulation = "samplesize_simulation"
	RunKindBootstrap  = "bootstrap"
	RunKindShuffle    = "shuffle"
)

// Run is one recorded solver or resampling call
type Run struct {
	ID          string          `json:"id" db:"id"`
	Kind        string          `json:"kind" db:"kind"`
	QueryHash   string          `json:"query_hash" db:"query_hash"`
	Query       string          `json:"query" db:"query"` // canonical JSON of the request
	SampleCount sql.NullInt64   `json:"-" db:"sample_count"`
	Statistic   sql.NullFloat64 `json:"-" db:"statistic"` // p-value or achieved confidence
	Diagnostic  string          `json:"diagnostic,omitempty" db:"diagnostic"`
	Steps       int             `json:"steps" db:"steps"`
	RuntimeMs   int64           `json:"runtime_ms" db:"runtime_ms"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// RunView is the JSON shape of a run with nullable columns flattened
type RunView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	QueryHash   string    `json:"query_hash"`
	Query       string    `json:"query"`
	SampleCount *int64    `json:"sample_count,omitempty"`
	Statistic   *float64  `json:"statistic,omitempty"`
	Diagnostic  string    `json:"diagnostic,omitempty"`
	Steps       int       `json:"steps"`
	RuntimeMs   int64     `json:"runtime_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// View flattens the nullable columns for JSON responses
func (r *Run) View() RunView {
	v := RunView{
		ID:         r.ID,
		Kind:       r.Kind,
		QueryHash:  r.QueryHash,
		Query:      r.Query,
		Diagnostic: r.Diagnostic,
		Steps:      r.Steps,
		RuntimeMs:  r.RuntimeMs,
		CreatedAt:  r.CreatedAt,
	}
	if r.SampleCount.Valid {
		n := r.SampleCount.Int64
		v.SampleCount = &n
	}
	if r.Statistic.Valid {
		s := r.Statistic.Float64
		v.Statistic = &s
	}
	return v
}
