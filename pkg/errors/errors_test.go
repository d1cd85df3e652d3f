package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := ErrUpstream.WithCause(fmt.Errorf("dial tcp: refused"))
	assert.Equal(t, "UPSTREAM_ERROR: upstream request failed (caused by: dial tcp: refused)", err.Error())

	err = ErrValidation.WithMessage("unknown time frame: month")
	assert.Equal(t, "VALIDATION_ERROR: unknown time frame: month", err.Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", ErrUpstream.WithCause(errors.New("boom")))
	assert.True(t, errors.Is(wrapped, ErrUpstream))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.True(t, IsUpstream(wrapped))
}

func TestError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithDetail("field", "timeframe")
	assert.Empty(t, ErrValidation.Details)
}

func TestError_Retryability(t *testing.T) {
	assert.True(t, ErrUpstream.IsRetryable())
	assert.False(t, ErrUpstream.IsFatal())
	assert.True(t, ErrDecode.IsFatal())
	assert.True(t, ErrValidation.IsFatal())
	assert.False(t, ErrUpstream.AsFatal().IsRetryable())
	assert.True(t, ErrNotFound.AsRetryable().IsRetryable())
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrDecode, http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", ErrUpstream), http.StatusBadGateway},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, ToHTTPStatus(tt.err), tt.err.Error())
	}
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrValidation.WithMessage("bad frame").WithDetail("field", "timeframe"))
	assert.Equal(t, "bad frame", resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
	assert.Equal(t, map[string]interface{}{"field": "timeframe"}, resp.Details)

	resp = ToErrorResponse(errors.New("plain"))
	assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode)
	assert.Nil(t, resp.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("kaboom")
	require.Error(t, err)
	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, appErr.IsFatal())
	assert.Contains(t, err.Error(), "panic: kaboom")

	var seen error
	_ = RecoverPanicWithCallback(errors.New("x"), func(e error) { seen = e })
	assert.Error(t, seen)

	resp := ToErrorResponse(err)
	assert.NotContains(t, resp.Details, "stack_trace")
	assert.Equal(t, true, resp.Details["panic"])
}
