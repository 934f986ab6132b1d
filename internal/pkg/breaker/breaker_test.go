package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweetsavoury/battletally/internal/config"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New(config.Breaker{Threshold: 2, OpenTimeout: time.Hour, MaxHalfOpen: 1})

	require.NoError(t, b.Allow())
	b.Failure()
	require.NoError(t, b.Allow())
	b.Failure()

	require.Equal(t, Open, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpenState)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := New(config.Breaker{Threshold: 1, OpenTimeout: time.Millisecond, MaxHalfOpen: 1})

	b.Failure()
	require.Equal(t, Open, b.State())

	time.Sleep(5 * time.Millisecond)

	// First probe is let through, a second is not.
	require.NoError(t, b.Allow())
	require.Equal(t, HalfOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpenState)

	b.Success()
	require.Equal(t, Closed, b.State())
	require.NoError(t, b.Allow())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := New(config.Breaker{Threshold: 1, OpenTimeout: time.Millisecond, MaxHalfOpen: 1})

	b.Failure()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, b.Allow())

	b.Failure()
	require.Equal(t, Open, b.State())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(config.Breaker{Threshold: 2, OpenTimeout: time.Hour, MaxHalfOpen: 1})

	b.Failure()
	b.Success()
	b.Failure()

	require.Equal(t, Closed, b.State())
}
