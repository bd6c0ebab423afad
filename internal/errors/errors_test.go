package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"discscore/domain/core"
	"discscore/domain/samplesize"

	"github.com/stretchr/testify/assert"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		http int
	}{
		{"length", core.NewLengthMismatchError(3, 2), CodeInvalidInput, http.StatusBadRequest},
		{"method", core.NewUnknownMethodError("ratio"), CodeInvalidInput, http.StatusBadRequest},
		{"infeasible", &samplesize.InfeasibleError{Diagnostic: samplesize.IncreaseMaximum}, CodeInfeasible, http.StatusUnprocessableEntity},
		{"run missing", fmt.Errorf("lookup: %w", core.ErrRunNotFound), CodeNotFound, http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, CodeTimeout, http.StatusGatewayTimeout},
		{"other", fmt.Errorf("boom"), CodeInternalError, http.StatusInternalServerError},
		{"explicit", ConfigInvalid("PORT is empty"), CodeConfigInvalid, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.http, HTTPStatus(tt.err))
		})
	}
}

func TestWrapKeepsClassification(t *testing.T) {
	err := Wrap(core.NewLengthMismatchError(1, 2), "scoring failed")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
	assert.Contains(t, err.Error(), "scoring failed: ")

	outer := Wrapf(err, "request %d", 7)
	assert.Equal(t, CodeInvalidInput, GetCode(outer))

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, CodeDatabaseError, GetCode(WithCode(CodeDatabaseError, fmt.Errorf("conn reset"))))
}
