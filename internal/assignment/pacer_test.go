package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedDelayWaitsInterval(t *testing.T) {
	p := FixedDelay{Interval: 20 * time.Millisecond}
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedDelayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := FixedDelay{Interval: time.Hour}
	require.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestFixedDelayZeroIntervalDoesNotBlock(t *testing.T) {
	require.NoError(t, FixedDelay{}.Wait(context.Background()))
}
