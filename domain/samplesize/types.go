package samplesize

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"discscore/domain/core"

	"github.com/go-playground/validator/v10"
)

// Defaults carried over from the auditing scripts
const (
	DefaultAccuracy       = 0.02
	DefaultConfidence     = 0.9
	DefaultTolerance      = 0.001
	DefaultNLow           = 2
	DefaultNHigh          = 10000
	DefaultGreenThreshold = 0.3
	DefaultRedThreshold   = 0.7
	DefaultSimulations    = 100
	DefaultMinDisc        = 0.0
	DefaultMaxDisc        = 1.0
)

// DistributionUniform is the only supported true-score distribution
const DistributionUniform = "uniform"

// SingleQuery asks for the smallest n that classifies a rater sitting
// Accuracy above Threshold as red with probability >= Confidence.
type SingleQuery struct {
	Threshold  float64 `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	Accuracy   float64 `json:"accuracy" yaml:"accuracy" validate:"gte=0,lte=1"`
	Confidence float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0,lte=1"`
	NLow       int     `json:"n_low" yaml:"n_low" validate:"gte=1,lte=1000000"`
	NHigh      int     `json:"n_high" yaml:"n_high" validate:"gtfield=NLow,lte=10000000"`
}

// DualQuery jointly guarantees the green and red classifications
type DualQuery struct {
	GreenThreshold float64 `json:"t_green" yaml:"t_green" validate:"gte=0,lte=1"`
	RedThreshold   float64 `json:"t_red" yaml:"t_red" validate:"gte=0,lte=1,gtefield=GreenThreshold"`
	Accuracy       float64 `json:"accuracy" yaml:"accuracy" validate:"gte=0,lte=1"`
	Confidence     float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
	Tolerance      float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0,lte=1"`
	NLow           int     `json:"n_low" yaml:"n_low" validate:"gte=1,lte=1000000"`
	NHigh          int     `json:"n_high" yaml:"n_high" validate:"gtfield=NLow,lte=10000000"`
}

// SimulationQuery asks for the smallest per-rater n such that Guarantee of the
// Punish true worst offenders are caught with frequency >= Confidence.
type SimulationQuery struct {
	MinSamples   int     `json:"min_n_samples" yaml:"min_n_samples" validate:"gte=1"`
	MaxSamples   int     `json:"max_n_samples" yaml:"max_n_samples" validate:"gtfield=MinSamples"`
	Subordinates int     `json:"n_sub" yaml:"n_sub" validate:"gte=1"`
	Punish       int     `json:"n_punish" yaml:"n_punish" validate:"gte=1,ltefield=Subordinates"`
	Guarantee    int     `json:"n_guarantee" yaml:"n_guarantee" validate:"gte=1,ltefield=Punish"`
	Confidence   float64 `json:"confidence" yaml:"confidence" validate:"gte=0,lte=1"`
	Simulations  int     `json:"n_simulations" yaml:"n_simulations" validate:"gte=1"`
	MinDisc      float64 `json:"min_disc" yaml:"min_disc" validate:"gte=0,lte=1"`
	MaxDisc      float64 `json:"max_disc" yaml:"max_disc" validate:"gte=0,lte=1,gtefield=MinDisc"`
	Distribution string  `json:"distribution" yaml:"distribution"`
	Seed         uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultSingleQuery returns a query with the script defaults for the given threshold
func DefaultSingleQuery(threshold float64) SingleQuery {
	return SingleQuery{
		Threshold:  threshold,
		Accuracy:   DefaultAccuracy,
		Confidence: DefaultConfidence,
		Tolerance:  DefaultTolerance,
		NLow:       DefaultNLow,
		NHigh:      DefaultNHigh,
	}
}

// DefaultDualQuery returns a query with the script defaults
func DefaultDualQuery() DualQuery {
	return DualQuery{
		GreenThreshold: DefaultGreenThreshold,
		RedThreshold:   DefaultRedThreshold,
		Accuracy:       DefaultAccuracy,
		Confidence:     DefaultConfidence,
		Tolerance:      DefaultTolerance,
		NLow:           DefaultNLow,
		NHigh:          DefaultNHigh,
	}
}

// DefaultSimulationQuery returns a query with the script defaults for the rater counts
func DefaultSimulationQuery(minN, maxN, nSub, nPunish, nGuarantee int) SimulationQuery {
	return SimulationQuery{
		MinSamples:   minN,
		MaxSamples:   maxN,
		Subordinates: nSub,
		Punish:       nPunish,
		Guarantee:    nGuarantee,
		Confidence:   DefaultConfidence,
		Simulations:  DefaultSimulations,
		MinDisc:      DefaultMinDisc,
		MaxDisc:      DefaultMaxDisc,
		Distribution: DistributionUniform,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field ranges and the cross-field ordering constraints
func (q SingleQuery) Validate() error {
	if err := validateStruct(q); err != nil {
		return err
	}
	if q.Threshold+q.Accuracy > 1 {
		return core.NewInvalidQueryError("threshold+accuracy", "must not exceed 1")
	}
	return nil
}

// Validate checks field ranges and the cross-field ordering constraints
func (q DualQuery) Validate() error {
	if err := validateStruct(q); err != nil {
		return err
	}
	if q.GreenThreshold-q.Accuracy < 0 {
		return core.NewInvalidQueryError("t_green-accuracy", "must not be negative")
	}
	if q.RedThreshold+q.Accuracy > 1 {
		return core.NewInvalidQueryError("t_red+accuracy", "must not exceed 1")
	}
	return nil
}

// Validate checks field ranges, rater counts and the distribution name
func (q SimulationQuery) Validate() error {
	if err := validateStruct(q); err != nil {
		return err
	}
	if q.Distribution != "" && q.Distribution != DistributionUniform {
		return fmt.Errorf("%w: %q", core.ErrUnknownDistribution, q.Distribution)
	}
	return nil
}

// GuaranteeFraction is the overlap fraction a trial must reach to count as a success
func (q SimulationQuery) GuaranteeFraction() float64 {
	return float64(q.Guarantee) / float64(q.Punish)
}

func validateStruct(v interface{}) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrInvalidQuery, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", core.ErrInvalidQuery, strings.Join(parts, "; "))
}

// Diagnostic tells the caller which search bound to move
type Diagnostic string

const (
	IncreaseMaximum Diagnostic = "increase_maximum"
	DecreaseMinimum Diagnostic = "decrease_minimum"
)

// Message returns the human-readable advice shown by the form
func (d Diagnostic) Message() string {
	switch d {
	case IncreaseMaximum:
		return "Increase maximum # samples"
	case DecreaseMinimum:
		return "Decrease minimum # samples"
	default:
		return string(d)
	}
}

// InfeasibleError reports that the search bounds cannot bracket the target
// confidence. It is a diagnostic for the caller, not a crash.
type InfeasibleError struct {
	Diagnostic Diagnostic
	Bound      int     // the offending bound
	Achieved   float64 // probability or frequency reached at that bound
	Target     float64
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%s: achieved %.5f at n=%d against target %.5f", e.Diagnostic.Message(), e.Achieved, e.Bound, e.Target)
}

func (e *InfeasibleError) Unwrap() error {
	return core.ErrInfeasibleBounds
}

// AsInfeasible extracts the diagnostic from err
func AsInfeasible(err error) (*InfeasibleError, bool) {
	var ie *InfeasibleError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// Result is the outcome of a successful search
type Result struct {
	N         int     `json:"n"`
	Steps     int     `json:"steps"`
	PGreen    float64 `json:"p_green,omitempty"`
	PRed      float64 `json:"p_red,omitempty"`
	Frequency float64 `json:"frequency,omitempty"`
}
