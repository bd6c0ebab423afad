package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSolve(t *testing.T) {
	before := testutil.ToFloat64(solvesTotal.WithLabelValues("dual", "ok"))
	ObserveSolve("dual", "ok", 13, 5*time.Millisecond)
	ObserveSolve("dual", "increase_maximum", 0, time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(solvesTotal.WithLabelValues("dual", "ok")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(solvesTotal.WithLabelValues("dual", "increase_maximum")), 1.0)
}

func TestObserveResampleAndScore(t *testing.T) {
	before := testutil.ToFloat64(resampleIterations.WithLabelValues("shuffle"))
	ObserveResample("shuffle", 500, 20*time.Millisecond)
	assert.Equal(t, before+500, testutil.ToFloat64(resampleIterations.WithLabelValues("shuffle")))

	ObserveScore("percent_non_match", "ok")
	assert.GreaterOrEqual(t, testutil.ToFloat64(scoresTotal.WithLabelValues("percent_non_match", "ok")), 1.0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveScore("simple_difference", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "discscore_engine_scores_total")
}
