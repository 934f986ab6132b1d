package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweetsavoury/battletally/internal/config"
)

func policy(attempts int) config.Retry {
	return config.Retry{Attempts: attempts, Base: time.Millisecond, Max: 5 * time.Millisecond}
}

func TestDoSucceedsEventually(t *testing.T) {
	calls := 0
	err := Do(context.Background(), policy(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), policy(3), func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestDoRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, policy(5), func() error {
		return errors.New("always")
	})

	require.ErrorIs(t, err, context.Canceled)
}
