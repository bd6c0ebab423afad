package resampling

import (
	"encoding/json"
	"fmt"

	"discscore/domain/core"
	"discscore/domain/discrepancy"
)

// Mode selects how each resample is drawn
type Mode string

const (
	// ModeBootstrap draws index positions with replacement, same draw for both series
	ModeBootstrap Mode = "bootstrap"
	// ModeShuffle permutes the supervisor series only
	ModeShuffle Mode = "shuffle"
)

// DefaultIterations is the number of resamples per distribution
const DefaultIterations = 100000

// ParseMode validates a mode tag
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBootstrap, ModeShuffle:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownMode, s)
	}
}

// Distribution is an empirical distribution of discrepancy scores.
// It is created per analysis call and never persisted.
type Distribution struct {
	Mode       Mode               `json:"mode"`
	Method     discrepancy.Method `json:"method"`
	Scores     []float64          `json:"scores,omitempty"`
	Real       float64            `json:"real"` // score of the untouched pair
	Iterations int                `json:"iterations"`
	Seed       uint64             `json:"seed"`
}

// Len returns the number of resampled scores
func (d *Distribution) Len() int {
	return len(d.Scores)
}

// Summary describes a distribution without shipping every score
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P05    float64 `json:"p05"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

// Histogram holds fixed-width bin counts for an external renderer.
// len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// MarshalJSON encodes non-finite scores as null
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mode       Mode               `json:"mode"`
		Method     discrepancy.Method `json:"method"`
		Scores     []core.JSONFloat   `json:"scores,omitempty"`
		Real       core.JSONFloat     `json:"real"`
		Iterations int                `json:"iterations"`
		Seed       uint64             `json:"seed"`
	}{d.Mode, d.Method, core.JSONFloats(d.Scores), core.JSONFloat(d.Real), d.Iterations, d.Seed})
}
