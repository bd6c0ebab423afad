package binomial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// exactTail sums the pmf directly with log-gamma coefficients
func exactTail(k, n int, p float64, upper bool) float64 {
	sum := 0.0
	for x := 0; x <= n; x++ {
		if upper != (x > k) {
			continue
		}
		lg1, _ := math.Lgamma(float64(n + 1))
		lg2, _ := math.Lgamma(float64(x + 1))
		lg3, _ := math.Lgamma(float64(n - x + 1))
		sum += math.Exp(lg1 - lg2 - lg3 + float64(x)*math.Log(p) + float64(n-x)*math.Log1p(-p))
	}
	return sum
}

func TestTails_MatchDirectSummation(t *testing.T) {
	cases := []struct {
		k, n int
		p    float64
	}{
		{0, 1, 0.5},
		{1, 2, 0.72},
		{7, 10, 0.72},
		{580, 829, 0.72},
		{248, 829, 0.28},
		{4, 50, 0.02},
	}

	for _, c := range cases {
		lower := LowerTail(c.k, c.n, c.p)
		upper := UpperTail(c.k, c.n, c.p)

		assert.InDelta(t, exactTail(c.k, c.n, c.p, false), lower, 1e-9, "lower k=%d n=%d", c.k, c.n)
		assert.InDelta(t, exactTail(c.k, c.n, c.p, true), upper, 1e-9, "upper k=%d n=%d", c.k, c.n)
		assert.InDelta(t, 1.0, lower+upper, 1e-9, "tails must partition k=%d n=%d", c.k, c.n)
	}
}

func TestTails_Edges(t *testing.T) {
	assert.Equal(t, 1.0, UpperTail(-1, 10, 0.3))
	assert.Equal(t, 0.0, UpperTail(10, 10, 0.3))
	assert.Equal(t, 0.0, UpperTail(3, 10, 0))
	assert.Equal(t, 1.0, UpperTail(3, 10, 1))
	assert.Equal(t, 1.0, LowerTail(10, 10, 0.3))
	assert.Equal(t, 0.0, LowerTail(-1, 10, 0.3))
	assert.InDelta(t, 1.0, LowerTail(3, 10, 0), 1e-12)
	assert.InDelta(t, 0.0, LowerTail(3, 10, 1), 1e-12)
}

func TestCutoff(t *testing.T) {
	assert.Equal(t, 0, Cutoff(0.3, 2))
	assert.Equal(t, 1, Cutoff(0.7, 2))
	assert.Equal(t, 7000, Cutoff(0.7, 10000))
	assert.Equal(t, 580, Cutoff(0.7, 829))
}

func TestConfidenceGrowsWithSamples(t *testing.T) {
	// Not monotone step by step, but clearly increasing across decades
	assert.Less(t, RedConfidence(0.7, 0.02, 10), RedConfidence(0.7, 0.02, 1000))
	assert.Less(t, RedConfidence(0.7, 0.02, 1000), RedConfidence(0.7, 0.02, 10000))
	assert.Less(t, GreenConfidence(0.3, 0.02, 10), GreenConfidence(0.3, 0.02, 10000))
	assert.Greater(t, RedConfidence(0.7, 0.02, 10000), 0.99)
}

func TestDraw(t *testing.T) {
	src := rand.NewPCG(1, 2)
	assert.Equal(t, 0, Draw(100, 0, src))
	assert.Equal(t, 100, Draw(100, 1, src))
	assert.Equal(t, 0, Draw(0, 0.5, src))

	const trials = 2000
	sum := 0
	for i := 0; i < trials; i++ {
		x := Draw(400, 0.25, src)
		if x < 0 || x > 400 {
			t.Fatalf("draw %d outside [0, 400]", x)
		}
		sum += x
	}
	// mean 100, sd of the average ~ 8.66/sqrt(2000) ~ 0.19
	assert.InDelta(t, 100.0, float64(sum)/trials, 1.5)
}
