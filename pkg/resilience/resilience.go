// Package resilience provides a generic timeout and bounded-retry
// decorator for persistence and network operations.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds one wrapped operation. Each attempt runs under its own
// Timeout; failed attempts are retried up to MaxAttempts with a linear
// delay of Backoff multiplied by the attempt number.
type Policy struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy suits the persistence calls around the match store.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:     5 * time.Second,
		MaxAttempts: 3,
		Backoff:     500 * time.Millisecond,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable: Do returns the wrapped error
// immediately instead of burning the remaining attempts on a condition
// that cannot change, such as a not-found.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op under the policy and returns its result, or the last error
// once attempts are exhausted. Cancelling ctx aborts between attempts.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}

		result, err := op(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// Run wraps operations that return no value.
func Run(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
