package retry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

func TestDo_SucceedsAfterRetryableFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 3, func() error {
		attempts++
		if attempts < 3 {
			return errors.New(errors.CodeNetwork, "transport").WithMessage("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	failure := errors.New(errors.CodePreconditionFailed, "put")
	err := Do(context.Background(), 5, func() error {
		attempts++
		return failure
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, errors.CodePreconditionFailed, errors.CodeOf(err))
}

func TestDo_ExhaustsMaxRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 2, func() error {
		attempts++
		return errors.New(errors.CodeNetwork, "transport")
	})

	require.Error(t, err)
	// One initial attempt plus two retries.
	assert.Equal(t, 3, attempts)
	assert.True(t, errors.IsRetryable(err))
}

func TestDo_ZeroRetriesIsSingleAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 0, func() error {
		attempts++
		return errors.New(errors.CodeNetwork, "transport")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, 10, func() error {
		attempts++
		cancel()
		return errors.New(errors.CodeNetwork, "transport")
	})

	require.Error(t, err)
	assert.LessOrEqual(t, attempts, 2)
}
