package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func failing() (interface{}, error) { return nil, errBackend }
func succeeding() (interface{}, error) { return "ok", nil }

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("audit", Config{
		Timeout:     time.Minute,
		ReadyToTrip: ConsecutiveFailures(3),
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(ctx, failing)
		assert.ErrorIs(t, err, errBackend)
	}

	assert.Equal(t, StateOpen, cb.State())
	_, err := cb.Execute(ctx, succeeding)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("audit", Config{
		Timeout:     10 * time.Second,
		ReadyToTrip: ConsecutiveFailures(1),
	})
	cb.now = func() time.Time { return now }
	cb.toNewGeneration(now)
	ctx := context.Background()

	_, _ = cb.Execute(ctx, failing)
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	v, err := cb.Execute(ctx, succeeding)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("audit", Config{
		Timeout:     time.Second,
		ReadyToTrip: ConsecutiveFailures(1),
	})
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cb.Execute(ctx, failing)
	now = now.Add(2 * time.Second)
	_, err := cb.Execute(ctx, failing)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_IsSuccessfulIgnoresCallerErrors(t *testing.T) {
	errValidation := errors.New("invalid payload")
	cb := NewCircuitBreaker("audit", Config{
		ReadyToTrip:  ConsecutiveFailures(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, errValidation) },
	})

	_, err := cb.Execute(context.Background(), func() (interface{}, error) { return nil, errValidation })
	assert.ErrorIs(t, err, errValidation)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().TotalSuccesses)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "audit", NewCircuitBreaker("audit", Config{}).Name())
}
