package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestDo_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	retries := 0
	cfg := fastConfig(4)
	cfg.OnRetry = func(int, error, time.Duration) { retries++ }

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return syscall.ECONNREFUSED
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad credentials")
	calls := 0

	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	cfg := fastConfig(3)
	cfg.Retryable = func(error) bool { return true }
	calls := 0

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return errors.New("still down")
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithValue(t *testing.T) {
	calls := 0
	v, err := DoWithValue(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", context.DeadlineExceeded
		}
		return "pong", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "pong", v)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(context.Canceled))
	assert.True(t, isRetryable(context.DeadlineExceeded))
	assert.True(t, isRetryable(syscall.ECONNRESET))
	assert.False(t, isRetryable(errors.New("no such collection")))
}

func TestCalculateBackoff_CapsAtMaxInterval(t *testing.T) {
	cfg := Config{InitialInterval: time.Second, MaxInterval: 3 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, calculateBackoff(cfg, 1))
	assert.Equal(t, 2*time.Second, calculateBackoff(cfg, 2))
	assert.Equal(t, 3*time.Second, calculateBackoff(cfg, 3))
}
