package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_TypeHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("track")))
	assert.True(t, IsValidation(NewValidationError("bad input")))
	assert.True(t, IsConflict(NewConflictError("already concluded")))
	assert.True(t, IsForbidden(NewForbiddenError("not yours")))
	assert.True(t, IsRateLimit(NewRateLimitError(30, "day")))
	assert.True(t, IsExternal(NewExternalError("story generator", errors.New("boom"))))

	assert.False(t, IsNotFound(NewValidationError("bad input")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("x"), http.StatusBadRequest},
		{NewNotFoundError("x"), http.StatusNotFound},
		{NewConflictError("x"), http.StatusConflict},
		{NewForbiddenError("x"), http.StatusForbidden},
		{NewUnauthorizedError("x"), http.StatusUnauthorized},
		{NewRateLimitError(30, "day"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus, tt.err.Type)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying")

	wrapped := Wrap(cause, "context")
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, cause)

	appErr := NewNotFoundError("item")
	rewrapped := Wrap(appErr, "loading item")
	assert.True(t, IsNotFound(rewrapped))

	assert.Nil(t, Wrap(nil, "nothing"))
}
