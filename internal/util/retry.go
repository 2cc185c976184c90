package util

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// ErrRetriesExhausted wraps the last error once every attempt has failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryWithContext runs fn immediately up to maxTries times (at least once)
// and returns the first success. Context errors, from ctx or from fn, end
// the loop at once and are returned unwrapped. After the last failed attempt
// the result wraps both ErrRetriesExhausted and fn's last error.
//
// Use it for cheap idempotent calls such as publishing a catalog message or
// listing the bucket. Waiting retries belong to cenkalti/backoff.
func RetryWithContext[T any](ctx context.Context, maxTries int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxTries <= 0 {
		maxTries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxTries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		logger.Debug("[Retry] Attempt failed", "attempt", attempt, "max_tries", maxTries, "err", err)
		lastErr = err
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxTries, lastErr)
}

// RetryErrWithContext is RetryWithContext for calls without a result.
func RetryErrWithContext(ctx context.Context, maxTries int, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, maxTries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
