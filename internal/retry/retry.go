// Package retry provides bounded retry with exponential backoff for
// retryable storage failures. The HTTP transport itself is single-attempt;
// this package is the one place retry policy lives.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// Do runs fn, retrying up to maxRetries additional attempts with
// exponential backoff whenever fn returns an error marked retryable
// (transport failures and 5xx responses). Non-retryable errors stop
// immediately, as does context cancellation.
func Do(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		return fn()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxRetries)), ctx)
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
