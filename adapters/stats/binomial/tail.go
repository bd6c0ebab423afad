package binomial

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Cutoff is the largest success count still classified at-or-below threshold
// for n samples: floor(threshold*n).
func Cutoff(threshold float64, n int) int {
	return int(math.Floor(threshold * float64(n)))
}

// LowerTail returns P(X <= k) for X ~ Binomial(n, p) from the exact CDF
func LowerTail(k, n int, p float64) float64 {
	return distuv.Binomial{N: float64(n), P: p}.CDF(float64(k))
}

// UpperTail returns P(X > k) for X ~ Binomial(n, p).
// It is evaluated as the regularized incomplete beta I_p(k+1, n-k) rather
// than 1-CDF so small upper tails keep their precision.
func UpperTail(k, n int, p float64) float64 {
	switch {
	case k < 0:
		return 1
	case k >= n:
		return 0
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	return mathext.RegIncBeta(float64(k+1), float64(n-k), p)
}

// GreenConfidence is the probability that a rater whose true score is
// threshold-accuracy is measured at or below the cutoff with n samples.
func GreenConfidence(threshold, accuracy float64, n int) float64 {
	return LowerTail(Cutoff(threshold, n), n, threshold-accuracy)
}

// RedConfidence is the probability that a rater whose true score is
// threshold+accuracy is measured above the cutoff with n samples.
func RedConfidence(threshold, accuracy float64, n int) float64 {
	return UpperTail(Cutoff(threshold, n), n, threshold+accuracy)
}

// Draw samples a Binomial(n, p) success count from src
func Draw(n int, p float64, src rand.Source) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	return int(distuv.Binomial{N: float64(n), P: p, Src: src}.Rand())
}
