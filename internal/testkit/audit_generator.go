package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"discscore/domain/discrepancy"
)

// AuditConfig configures synthetic subordinate/supervisor audit pairs
type AuditConfig struct {
	Samples   int     `json:"samples"`
	BaseValue float64 `json:"base_value"` // mean supervisor measurement
	Spread    float64 `json:"spread"`     // std dev of supervisor measurements
	Bias      float64 `json:"bias"`       // added to every subordinate reading
	Noise     float64 `json:"noise"`      // std dev of subordinate reading error
	ErrorRate float64 `json:"error_rate"` // probability a categorical answer disagrees
	Seed      uint64  `json:"seed"`
}

// DefaultAuditConfig returns an unbiased, mildly noisy audit
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Samples:   200,
		BaseValue: 50,
		Spread:    10,
		Bias:      0,
		Noise:     2,
		ErrorRate: 0.1,
		Seed:      DefaultSeed,
	}
}

// AuditGenerator produces paired series the way a field back-check looks:
// the supervisor re-measures what the subordinate recorded.
type AuditGenerator struct {
	config AuditConfig
	rng    *rand.Rand
}

// NewAuditGenerator creates a new generator
func NewAuditGenerator(config AuditConfig) *AuditGenerator {
	return &AuditGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, config.Seed^0x5eed)),
	}
}

// NumericPair returns subordinate and supervisor measurements.
// Supervisor values are kept strictly positive so percentage methods stay finite.
func (g *AuditGenerator) NumericPair() (sub, sup []float64) {
	n := g.config.Samples
	sub = make([]float64, n)
	sup = make([]float64, n)
	for i := 0; i < n; i++ {
		truth := math.Max(g.config.BaseValue+g.rng.NormFloat64()*g.config.Spread, 1)
		sup[i] = truth
		sub[i] = truth + g.config.Bias + g.rng.NormFloat64()*g.config.Noise
	}
	return sub, sup
}

// LabelPair returns categorical answers where roughly ErrorRate of the
// subordinate answers disagree with the supervisor.
func (g *AuditGenerator) LabelPair(categories int) (sub, sup discrepancy.Series) {
	if categories < 2 {
		categories = 2
	}
	n := g.config.Samples
	sub = make(discrepancy.Series, n)
	sup = make(discrepancy.Series, n)
	for i := 0; i < n; i++ {
		answer := g.rng.IntN(categories)
		recorded := answer
		if g.rng.Float64() < g.config.ErrorRate {
			recorded = (answer + 1 + g.rng.IntN(categories-1)) % categories
		}
		sup[i] = discrepancy.Label(fmt.Sprintf("option_%d", answer))
		sub[i] = discrepancy.Label(fmt.Sprintf("option_%d", recorded))
	}
	return sub, sup
}
