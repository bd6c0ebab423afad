package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SEED", "")
	t.Setenv("LOG_LEVEL", "ERROR")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ScoreInline(t *testing.T) {
	out, err := runCLI(t, "score", "--sub", "110, 90", "--sup", "100,100", "-m", "absolute_percent_difference")
	require.NoError(t, err)
	assert.Equal(t, "absolute_percent_difference over 2 pairs: 10\n", out)
}

func TestCLI_ScoreFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, os.WriteFile(path, []byte("subordinate,supervisor\nyes,yes\nno,yes\nyes,yes\nno,no\n"), 0o644))

	out, err := runCLI(t, "score", "--file", path, "-m", "percent_non_match", "--json")
	require.NoError(t, err)

	var score struct {
		Value float64 `json:"value"`
		N     int     `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.Equal(t, 4, score.N)
	assert.InDelta(t, 25.0, score.Value, 1e-12)
}

func TestCLI_ScoreNeedsInput(t *testing.T) {
	_, err := runCLI(t, "score")
	assert.ErrorContains(t, err, "--file")

	_, err = runCLI(t, "score", "--sub", "1", "--sup", "1", "-m", "nope")
	assert.Error(t, err)
}

func TestCLI_Shuffle(t *testing.T) {
	out, err := runCLI(t, "shuffle", "--sub", "1,2,3,4,5,6", "--sup", "1,2,3,4,5,6",
		"-m", "absolute_difference", "-n", "200", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "shuffle absolute_difference: real 0 over 200 iterations (seed 4)")
	assert.Contains(t, out, "p-value")
}

func TestCLI_SolveSingle(t *testing.T) {
	out, err := runCLI(t, "solve", "single")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "861 samples"), out)
}

func TestCLI_SolveDualWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	out, err := runCLI(t, "solve", "dual", "--html", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# 861 samples")

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<svg")
}

func TestCLI_SolveInfeasibleExplains(t *testing.T) {
	_, err := runCLI(t, "solve", "single", "--n-high", "100")
	assert.ErrorContains(t, err, "Increase maximum # samples")
}

func TestCLI_Batch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("single:\n  - threshold: 0.7\ndual:\n  - n_low: 3000\n"), 0o644))

	out, err := runCLI(t, "solve", "batch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "n=861")
	assert.Contains(t, out, "Decrease minimum # samples")
}

func TestCLI_RunsNeedLedger(t *testing.T) {
	_, err := runCLI(t, "runs")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
