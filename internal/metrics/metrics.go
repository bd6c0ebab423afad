package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// scoresTotal counts discrepancy computations.
	// Labels: method, status (ok, non_finite, error)
	scoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discscore",
		Subsystem: "engine",
		Name:      "scores_total",
		Help:      "Discrepancy scores computed",
	}, []string{"method", "status"})

	// resampleDuration measures one bootstrap or shuffle run.
	// Labels: mode
	resampleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discscore",
		Subsystem: "resampling",
		Name:      "duration_seconds",
		Help:      "Wall time of a resampling run",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"mode"})

	// resampleIterations counts resampled scores produced.
	// Labels: mode
	resampleIterations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discscore",
		Subsystem: "resampling",
		Name:      "iterations_total",
		Help:      "Resampled scores produced",
	}, []string{"mode"})

	// solvesTotal counts sample-size searches.
	// Labels: solver (single, dual, simulation), outcome (ok, increase_maximum, decrease_minimum, error)
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discscore",
		Subsystem: "samplesize",
		Name:      "solves_total",
		Help:      "Sample-size searches by outcome",
	}, []string{"solver", "outcome"})

	// solveSteps tracks bisection steps per successful search.
	// Labels: solver
	solveSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discscore",
		Subsystem: "samplesize",
		Name:      "steps",
		Help:      "Bisection steps per search",
		Buckets:   []float64{1, 2, 4, 8, 12, 16, 20, 24, 32},
	}, []string{"solver"})

	// solveDuration measures one search.
	// Labels: solver
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discscore",
		Subsystem: "samplesize",
		Name:      "duration_seconds",
		Help:      "Wall time of a sample-size search",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"solver"})
)

// ObserveScore records one discrepancy computation
func ObserveScore(method, status string) {
	scoresTotal.WithLabelValues(method, status).Inc()
}

// ObserveResample records a finished resampling run
func ObserveResample(mode string, iterations int, elapsed time.Duration) {
	resampleDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	resampleIterations.WithLabelValues(mode).Add(float64(iterations))
}

// ObserveSolve records a finished search. steps is ignored unless outcome is "ok".
func ObserveSolve(solver, outcome string, steps int, elapsed time.Duration) {
	solvesTotal.WithLabelValues(solver, outcome).Inc()
	solveDuration.WithLabelValues(solver).Observe(elapsed.Seconds())
	if outcome == "ok" {
		solveSteps.WithLabelValues(solver).Observe(float64(steps))
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
