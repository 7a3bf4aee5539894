// Package retry provides the bounded-attempts retry helper shared by the
// media prober and the translation client so timeout and attempt-count
// semantics stay consistent across transient network calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy controls how Do schedules attempts.
type Policy struct {
	// Attempts is the maximum number of times the operation runs. Values
	// below one are treated as a single attempt.
	Attempts int
	// Delay is the pause between consecutive attempts.
	Delay time.Duration
	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// Do runs op until it succeeds or the policy is exhausted. The context is
// honored both inside attempts and while sleeping between them. The last
// failure is returned wrapped with the attempt count.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = runAttempt(ctx, policy.Timeout, op)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}

		if attempt == attempts {
			break
		}
		if policy.Delay > 0 {
			select {
			case <-time.After(policy.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx)
}
