package image

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

// maxAttempts bounds the upstream calls per generation, including the first.
const maxAttempts = 2

// NewBackoff returns the delay strategy applied between generation attempts.
func NewBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.Multiplier = 2
	b.MaxInterval = 5 * time.Second
	return b
}

// retryable reports whether another attempt could change the outcome.
// Throttling and billing caps are terminal for the current request, as is a
// cancelled caller.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrQuotaExhausted) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// runWithRetry executes fn up to attempts times, sleeping per the backoff
// strategy between tries. It carries no logging side effects; callers decide
// what to record.
func runWithRetry[T any](ctx context.Context, attempts int, bo backoff.BackOff, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	bo.Reset()
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(bo.NextBackOff()):
			}
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
