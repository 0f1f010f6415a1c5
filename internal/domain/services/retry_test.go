package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
)

// recordingSleep counts waits without blocking.
type recordingSleep struct {
	waits []time.Duration
	err   error
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return r.err
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	rs := &recordingSleep{}
	got, attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: rs.sleep},
		func(ctx context.Context, attempt int) (string, error) { return "ok", nil }, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, rs.waits)
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	rs := &recordingSleep{}
	calls := 0
	got, attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: rs.sleep},
		func(ctx context.Context, attempt int) (int, error) {
			calls++
			if attempt < 3 {
				return 0, entities.ErrTransient
			}
			return attempt, nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rs.waits)
}

func TestRetry_ExhaustedNeverSleepsAfterLastAttempt(t *testing.T) {
	rs := &recordingSleep{}
	boom := errors.New("boom")
	_, attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: rs.sleep},
		func(ctx context.Context, attempt int) (string, error) { return "", boom }, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrAttemptsExhausted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
	assert.Len(t, rs.waits, 2)
}

func TestRetry_RejectedResults(t *testing.T) {
	rs := &recordingSleep{}
	_, attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 2, Sleep: rs.sleep},
		func(ctx context.Context, attempt int) ([]string, error) { return []string{"one"}, nil },
		func(facts []string) bool { return len(facts) >= 2 })

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrValidationRejected)
	assert.ErrorIs(t, err, entities.ErrAttemptsExhausted)
	assert.Equal(t, 2, attempts)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, attempts, err := Retry(context.Background(), RetryPolicy{},
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "x", nil
		}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, attempts, err := Retry(ctx, RetryPolicy{Attempts: 3},
		func(ctx context.Context, attempt int) (string, error) {
			calls++
			return "x", nil
		}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
	assert.Equal(t, 0, calls)
}

func TestRetry_SleepInterrupted(t *testing.T) {
	rs := &recordingSleep{err: context.Canceled}
	_, attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Second, Sleep: rs.sleep},
		func(ctx context.Context, attempt int) (string, error) { return "", entities.ErrTransient }, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestSleepWithContext(t *testing.T) {
	require.NoError(t, SleepWithContext(context.Background(), 0))
	require.NoError(t, SleepWithContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepWithContext(ctx, time.Hour), context.Canceled)
}
