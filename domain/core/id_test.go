package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseRunID(t *testing.T) {
	valid := NewRunID()
	parsed, err := ParseRunID(" " + valid.String() + " ")
	if err != nil {
		t.Fatalf("ParseRunID(%q) failed: %v", valid, err)
	}
	if parsed != valid {
		t.Errorf("Expected %s, got %s", valid, parsed)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseRunID(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestFingerprintStable(t *testing.T) {
	type query struct {
		Threshold float64
		NHigh     int
	}

	a, err := Fingerprint(query{Threshold: 0.7, NHigh: 10000})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Fingerprint(query{Threshold: 0.7, NHigh: 10000})
	c, _ := Fingerprint(query{Threshold: 0.7, NHigh: 9999})

	if a != b {
		t.Errorf("Equal queries should share a fingerprint: %s vs %s", a, b)
	}
	if a == c {
		t.Error("Different queries should not share a fingerprint")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		input      bool
		infeasible bool
	}{
		{"length", NewLengthMismatchError(3, 4), true, false},
		{"type", NewTypeMismatchError("supervisor", 2, "is not numeric"), true, false},
		{"method", NewUnknownMethodError("median"), true, false},
		{"query", NewInvalidQueryError("n_low", "must be below n_high"), true, false},
		{"infeasible", ErrInfeasibleBounds, false, true},
		{"other", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInputError(tt.err); got != tt.input {
				t.Errorf("IsInputError = %v, want %v", got, tt.input)
			}
			if got := IsInfeasible(tt.err); got != tt.infeasible {
				t.Errorf("IsInfeasible = %v, want %v", got, tt.infeasible)
			}
		})
	}
}
