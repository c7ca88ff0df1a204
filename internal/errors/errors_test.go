package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	plain := Validation("email is required")
	assert.Equal(t, "email is required", plain.Error())

	wrapped := Wrap(errors.New("dial tcp: connection refused"), ErrCodeNetwork, "contact backend")
	assert.Equal(t, "contact backend: dial tcp: connection refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, ErrCodeServerFault, "backend call failed")

	assert.ErrorIs(t, wrapped, cause)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", wrapped), &appErr)
	assert.Equal(t, ErrCodeServerFault, appErr.Code)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"unauthorized", Unauthorized("expired"), IsUnauthorized},
		{"validation", Validation("bad input"), IsValidation},
		{"not found", NotFound("missing"), IsNotFound},
		{"network", Network("no response"), IsNetwork},
		{"server fault", ServerFault("500"), IsServerFault},
		{"internal", Internal("oops"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.False(t, IsUnauthorized(errors.New("plain")))
	assert.False(t, IsNotFound(Validation("bad")))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeNetwork, CodeOf(Network("down")))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("anonymous")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t,
		"No response from server. Check your connection and try again.",
		UserMessage(Network("dial tcp: refused")))
	assert.Equal(t,
		"The server hit an internal error. Please try again later.",
		UserMessage(ServerFault("500 from upstream")))
	assert.Equal(t, "Invalid username or password", UserMessage(Validation("Invalid username or password")))
	assert.Equal(t, "Your session has expired. Please log in again.", UserMessage(Unauthorized("")))
	assert.Equal(t, "An unexpected error occurred", UserMessage(errors.New("untyped")))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "must be a valid address")
	assert.Equal(t, "email", err.Field)
	assert.True(t, IsValidation(err))
}
