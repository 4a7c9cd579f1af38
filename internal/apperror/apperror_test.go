package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "fail"},
		{http.StatusNotFound, "fail"},
		{http.StatusTooManyRequests, "fail"},
		{http.StatusInternalServerError, "error"},
		{http.StatusBadGateway, "error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.status))
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFound("No tour found with that ID")
	wrapped := fmt.Errorf("get tour: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "fail", got.StatusText())

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(cause, http.StatusInternalServerError, "EMAIL_FAILED", "There was an error sending the email. Try again later!")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "error", err.StatusText())
}
