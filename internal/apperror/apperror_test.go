package apperror

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"bad request", BadRequest("title too long"), http.StatusBadRequest, "title too long"},
		{"not found", NotFound("plan not found"), http.StatusNotFound, "plan not found"},
		{"unauthorized", Unauthorized("invalid token"), http.StatusUnauthorized, "invalid token"},
		{"internal", Internal("upload failed", errors.New("boom")), http.StatusInternalServerError, "upload failed"},
		{"wrapped", fmt.Errorf("service: %w", NotFound("voice not found")), http.StatusNotFound, "voice not found"},
		{"plain error", sql.ErrConnDone, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Status(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestInternalUnwrap(t *testing.T) {
	err := Internal("db error", sql.ErrConnDone)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.True(t, Is(fmt.Errorf("x: %w", BadRequest("y")), KindBadRequest))
	assert.False(t, Is(errors.New("plain"), KindBadRequest))
}
