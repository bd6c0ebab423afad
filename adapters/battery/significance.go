package battery

import (
	"encoding/json"
	"math"
	"sort"

	"discscore/domain/core"
	"discscore/domain/resampling"

	"github.com/montanaflynn/stats"
)

// PValue returns the fraction of null scores at or below observed.
// The test is one-sided (lower tail) and inclusive; callers pick the
// orientation that fits the method's sign. An empty null yields NaN.
func PValue(null []float64, observed float64) float64 {
	return tailFraction(null, func(s float64) bool { return s <= observed })
}

// UpperPValue is PValue for the opposite orientation: the fraction of null
// scores at or above observed.
func UpperPValue(null []float64, observed float64) float64 {
	return tailFraction(null, func(s float64) bool { return s >= observed })
}

func tailFraction(null []float64, in func(float64) bool) float64 {
	if len(null) == 0 {
		return math.NaN()
	}
	count := 0
	for _, s := range null {
		if in(s) {
			count++
		}
	}
	return float64(count) / float64(len(null))
}

// Significance is the shuffle-test verdict for one pair
type Significance struct {
	Observed    float64            `json:"observed"`
	PValue      float64            `json:"p_value"`
	UpperPValue float64            `json:"upper_p_value"`
	Null        resampling.Summary `json:"null"`
}

// MarshalJSON encodes a non-finite observed score or p-value as null
func (s Significance) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Observed    core.JSONFloat     `json:"observed"`
		PValue      core.JSONFloat     `json:"p_value"`
		UpperPValue core.JSONFloat     `json:"upper_p_value"`
		Null        resampling.Summary `json:"null"`
	}{core.JSONFloat(s.Observed), core.JSONFloat(s.PValue), core.JSONFloat(s.UpperPValue), s.Null})
}

// Evaluate scores observed against a shuffle distribution
func Evaluate(null *resampling.Distribution) (*Significance, error) {
	summary, err := Summarize(null.Scores)
	if err != nil {
		return nil, err
	}
	return &Significance{
		Observed:    null.Real,
		PValue:      PValue(null.Scores, null.Real),
		UpperPValue: UpperPValue(null.Scores, null.Real),
		Null:        summary,
	}, nil
}

// Summarize reduces a score sample to moments and quantiles.
// Non-finite scores are dropped first; an all-non-finite sample is an error.
func Summarize(scores []float64) (resampling.Summary, error) {
	data := make(stats.Float64Data, 0, len(scores))
	for _, s := range scores {
		if !math.IsNaN(s) && !math.IsInf(s, 0) {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return resampling.Summary{}, stats.EmptyInputErr
	}

	var out resampling.Summary
	var err error
	if out.Mean, err = data.Mean(); err != nil {
		return out, err
	}
	if len(data) > 1 {
		if out.StdDev, err = data.StandardDeviationSample(); err != nil {
			return out, err
		}
	}
	if out.Min, err = data.Min(); err != nil {
		return out, err
	}
	if out.Max, err = data.Max(); err != nil {
		return out, err
	}
	if out.P05, err = data.PercentileNearestRank(5); err != nil {
		return out, err
	}
	if out.P50, err = data.Median(); err != nil {
		return out, err
	}
	if out.P95, err = data.PercentileNearestRank(95); err != nil {
		return out, err
	}
	return out, nil
}

// BuildHistogram bins finite scores into equal-width buckets over [min, max].
// The last bucket is closed on the right.
func BuildHistogram(scores []float64, bins int) resampling.Histogram {
	if bins < 1 {
		bins = 1
	}
	finite := make([]float64, 0, len(scores))
	for _, s := range scores {
		if !math.IsNaN(s) && !math.IsInf(s, 0) {
			finite = append(finite, s)
		}
	}
	if len(finite) == 0 {
		return resampling.Histogram{Edges: []float64{}, Counts: []int{}}
	}
	sort.Float64s(finite)
	lo, hi := finite[0], finite[len(finite)-1]
	if hi == lo {
		hi = lo + 1
	}

	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts := make([]int, bins)
	for _, s := range finite {
		b := int((s - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	return resampling.Histogram{Edges: edges, Counts: counts}
}
