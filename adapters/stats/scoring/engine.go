package scoring

import (
	"math"

	"discscore/domain/discrepancy"
)

// numericFormula is the per-element term of a mean-based method and the
// factor applied to the mean.
type numericFormula struct {
	term  func(sub, sup float64) float64
	scale float64
}

// One handler per numeric method. percent_non_match is handled on Values.
// A zero supervisor value yields Inf/NaN under the percentage terms and is
// propagated as-is.
var numericFormulas = map[discrepancy.Method]numericFormula{
	discrepancy.MethodPercentDifference: {
		term:  func(sub, sup float64) float64 { return (sub - sup) / sup },
		scale: 100,
	},
	discrepancy.MethodAbsoluteDifference: {
		term:  func(sub, sup float64) float64 { return math.Abs(sub - sup) },
		scale: 1,
	},
	discrepancy.MethodAbsolutePercentDifference: {
		term:  func(sub, sup float64) float64 { return math.Abs((sub - sup) / sup) },
		scale: 100,
	},
	discrepancy.MethodSimpleDifference: {
		term:  func(sub, sup float64) float64 { return sub - sup },
		scale: 1,
	},
}

// Pair is a validated subordinate/supervisor pair ready to be scored many
// times under index views.
type Pair struct {
	method  discrepancy.Method
	formula numericFormula
	sub     discrepancy.Series
	sup     discrepancy.Series
	subNum  []float64
	supNum  []float64
}

// Prepare validates both series once and returns a reusable Pair
func Prepare(sub, sup discrepancy.Series, method discrepancy.Method) (*Pair, error) {
	if err := discrepancy.Validate(sub, sup, method); err != nil {
		return nil, err
	}

	p := &Pair{method: method, sub: sub, sup: sup}
	if method.Numeric() {
		p.formula = numericFormulas[method]
		// Validate guarantees every element is numeric
		p.subNum, _ = sub.Floats()
		p.supNum, _ = sup.Floats()
	}
	return p, nil
}

// Compute returns the discrepancy score between two paired series
func Compute(sub, sup discrepancy.Series, method discrepancy.Method) (discrepancy.Score, error) {
	p, err := Prepare(sub, sup, method)
	if err != nil {
		return discrepancy.Score{}, err
	}
	return p.Score(), nil
}

// ComputeFloats is Compute for plain numeric slices
func ComputeFloats(sub, sup []float64, method discrepancy.Method) (discrepancy.Score, error) {
	return Compute(discrepancy.Numeric(sub), discrepancy.Numeric(sup), method)
}

// Len returns the number of paired elements
func (p *Pair) Len() int {
	return len(p.sub)
}

// Method returns the scoring method the pair was prepared for
func (p *Pair) Method() discrepancy.Method {
	return p.method
}

// Score scores the untouched pair
func (p *Pair) Score() discrepancy.Score {
	return discrepancy.Score{
		Method: p.method,
		Value:  p.ScoreIndexed(nil, nil),
		N:      p.Len(),
	}
}

// ScoreIndexed scores the pair as seen through index views: element i pairs
// sub[subIdx[i]] with sup[supIdx[i]]. A nil view means identity order.
// Both views must have Len() entries.
func (p *Pair) ScoreIndexed(subIdx, supIdx []int) float64 {
	n := p.Len()
	at := func(idx []int, i int) int {
		if idx == nil {
			return i
		}
		return idx[i]
	}

	if !p.method.Numeric() {
		mismatches := 0
		for i := 0; i < n; i++ {
			if !p.sub[at(subIdx, i)].Equal(p.sup[at(supIdx, i)]) {
				mismatches++
			}
		}
		return float64(mismatches) / float64(n) * 100
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += p.formula.term(p.subNum[at(subIdx, i)], p.supNum[at(supIdx, i)])
	}
	return sum / float64(n) * p.formula.scale
}
