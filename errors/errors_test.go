package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code only",
			err:  New(CodeNotFound, "get"),
			want: "objectstore.get: NOT_FOUND",
		},
		{
			name: "with key",
			err:  New(CodeNotFound, "get").WithKey("a/b.txt"),
			want: "objectstore.get a/b.txt: NOT_FOUND",
		},
		{
			name: "message overrides code",
			err:  New(CodeInvalidInput, "put").WithMessage("key too long"),
			want: "objectstore.put: key too long",
		},
		{
			name: "with cause",
			err:  New(CodeNetwork, "get").WithCause(errors.New("connection refused")),
			want: "objectstore.get: NETWORK_ERROR: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(CodeInternal, "list").WithCause(cause)

	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	err := New(CodePreconditionFailed, "put")
	assert.Equal(t, CodePreconditionFailed, CodeOf(err))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, CodePreconditionFailed, CodeOf(wrapped))

	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeNotFound, "get")))
	assert.True(t, IsPreconditionFailed(New(CodePreconditionFailed, "put")))
	assert.True(t, IsInvalidInput(New(CodeInvalidInput, "put")))

	assert.False(t, IsNotFound(New(CodeInternal, "get")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeNetwork, "get")), "network errors retry by default")
	assert.False(t, IsRetryable(New(CodeInternal, "get")))
	assert.True(t, IsRetryable(New(CodeInternal, "get").WithRetryable(true)))
	assert.False(t, IsRetryable(New(CodeNetwork, "get").WithRetryable(false)))
}

func TestWithDetail(t *testing.T) {
	err := New(CodeInternal, "get").
		WithDetail("provider_code", "SlowDown").
		WithDetail("status", "503")

	require.NotNil(t, err.Details)
	assert.Equal(t, "SlowDown", err.Details["provider_code"])
	assert.Equal(t, "503", err.Details["status"])
}
