package discrepancy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"discscore/domain/core"
)

// Method selects the aggregation formula used to compare two paired series
type Method string

const (
	MethodPercentDifference         Method = "percent_difference"
	MethodAbsoluteDifference        Method = "absolute_difference"
	MethodAbsolutePercentDifference Method = "absolute_percent_difference"
	MethodSimpleDifference          Method = "simple_difference"
	MethodPercentNonMatch           Method = "percent_non_match"
)

// Methods lists every supported method in a stable order
var Methods = []Method{
	MethodPercentDifference,
	MethodAbsoluteDifference,
	MethodAbsolutePercentDifference,
	MethodSimpleDifference,
	MethodPercentNonMatch,
}

// ParseMethod converts a method tag into a Method, rejecting unknown tags at the boundary
func ParseMethod(s string) (Method, error) {
	m := Method(strings.TrimSpace(strings.ToLower(s)))
	if !m.Valid() {
		return "", core.NewUnknownMethodError(s)
	}
	return m, nil
}

// Valid reports whether m is one of the enumerated methods
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Numeric reports whether the method subtracts and divides elements.
// Only percent_non_match accepts arbitrary comparable values.
func (m Method) Numeric() bool {
	return m != MethodPercentNonMatch
}

func (m Method) String() string { return string(m) }

// Kind is the element type of a single measurement
type Kind int

const (
	KindNumeric Kind = iota
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindLabel:
		return "label"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one measurement recorded by a rater
type Value struct {
	Kind  Kind
	Num   float64
	Label string
}

// Num wraps a numeric measurement
func Num(v float64) Value { return Value{Kind: KindNumeric, Num: v} }

// Label wraps a categorical measurement
func Label(s string) Value { return Value{Kind: KindLabel, Label: s} }

// Equal compares kind and payload. Numeric NaN never equals itself.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == KindNumeric {
		return v.Num == o.Num
	}
	return v.Label == o.Label
}

func (v Value) String() string {
	if v.Kind == KindNumeric {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Label
}

// Series is an ordered sequence of measurements from one rater
type Series []Value

// Numeric builds a numeric series
func Numeric(values []float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Num(v)
	}
	return s
}

// Labels builds a categorical series
func Labels(values []string) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Label(v)
	}
	return s
}

// Parse builds a series from raw cells: cells that parse as floats become
// numeric values, everything else is kept as a label.
func Parse(cells []string) Series {
	s := make(Series, len(cells))
	for i, c := range cells {
		trimmed := strings.TrimSpace(c)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			s[i] = Num(f)
			continue
		}
		s[i] = Label(trimmed)
	}
	return s
}

// Floats returns the numeric payloads; ok is false if any element is not numeric
func (s Series) Floats() (values []float64, ok bool) {
	values = make([]float64, len(s))
	for i, v := range s {
		if v.Kind != KindNumeric {
			return nil, false
		}
		values[i] = v.Num
	}
	return values, true
}

// Validate checks the whole of both series before any arithmetic happens.
// Every element is inspected, not only the first one.
func Validate(sub, sup Series, m Method) error {
	if !m.Valid() {
		return core.NewUnknownMethodError(string(m))
	}
	if len(sub) != len(sup) {
		return core.NewLengthMismatchError(len(sub), len(sup))
	}
	if len(sub) == 0 {
		return core.ErrEmptySeries
	}
	if !m.Numeric() {
		return nil
	}
	for i := range sub {
		if sub[i].Kind != KindNumeric {
			return core.NewTypeMismatchError("subordinate", i, fmt.Sprintf("is %s, method %s needs numeric values", sub[i].Kind, m))
		}
		if sup[i].Kind != KindNumeric {
			return core.NewTypeMismatchError("supervisor", i, fmt.Sprintf("is %s, method %s needs numeric values", sup[i].Kind, m))
		}
	}
	return nil
}

// Score is a single discrepancy score between two series
type Score struct {
	Method Method  `json:"method"`
	Value  float64 `json:"value"`
	N      int     `json:"n"`
}

// Finite reports whether the score is a usable number. Percentage methods
// yield Inf or NaN when a supervisor value is zero.
func (s Score) Finite() bool {
	return !math.IsInf(s.Value, 0) && !math.IsNaN(s.Value)
}
