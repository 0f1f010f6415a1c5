package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ersonp/feather/internal/domain/entities"
)

// RetryPolicy bounds a retry loop. Attempts below 1 are treated as 1.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	// Sleep waits between attempts; nil means SleepWithContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs op until it returns a result accepted by accept, the attempt
// budget is spent, or ctx is cancelled. The delay is inserted between
// attempts, never after the last one. A nil accept accepts any result
// returned without error. It returns the accepted value and the number of
// attempts made; when the budget is spent the error wraps
// entities.ErrAttemptsExhausted and the last failure.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context, attempt int) (T, error), accept func(T) bool) (T, int, error) {
	var zero T
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = SleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		result, err := op(ctx, attempt)
		switch {
		case err != nil:
			lastErr = err
		case accept != nil && !accept(result):
			lastErr = fmt.Errorf("attempt %d: %w", attempt, entities.ErrValidationRejected)
		default:
			return result, attempt, nil
		}

		if attempt < attempts {
			if err := sleep(ctx, policy.Delay); err != nil {
				return zero, attempt, err
			}
		}
	}
	return zero, attempts, fmt.Errorf("%w after %d attempts: %w", entities.ErrAttemptsExhausted, attempts, lastErr)
}
