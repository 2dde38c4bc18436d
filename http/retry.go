package http

import (
	"context"
	"errors"
	"time"
)

// DefaultRetryDelays returns the backoff delays for render retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// transientError marks a failure that may succeed when retried.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// withRetry calls fn until it succeeds, fails permanently, or the delays
// are exhausted. It makes at most len(delays)+1 attempts.
func withRetry(ctx context.Context, delays []time.Duration, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delays[attempt-1]):
			}
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		var transient *transientError
		if !errors.As(err, &transient) || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
