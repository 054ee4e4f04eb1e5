package ticker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemTickerAdvances(t *testing.T) {
	tk := System()

	first := tk.Ticks()
	time.Sleep(time.Millisecond)
	second := tk.Ticks()

	assert.Greater(t, second, first)
	assert.GreaterOrEqual(t, first, int64(0))
}

func TestSystemTickerConversions(t *testing.T) {
	tk := System()

	assert.Equal(t, 1500.0, tk.ToNanos(1_500))
	assert.Equal(t, 1.5, tk.ToMicros(1_500))
}

func TestSystemTickerDelta(t *testing.T) {
	tk := System()

	start := tk.Ticks()
	time.Sleep(10 * time.Millisecond)
	delta := tk.Ticks() - start

	require.GreaterOrEqual(t, delta, int64(10*time.Millisecond))
	assert.Less(t, delta, int64(time.Second))
}

func TestCoarseTickerAdvances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tk := Coarse(ctx, time.Millisecond)
	defer tk.Stop()

	first := tk.Ticks()
	require.Greater(t, first, int64(0))

	assert.Eventually(t, func() bool {
		return tk.Ticks() > first
	}, time.Second, 5*time.Millisecond)
}

func TestCoarseTickerDefaultRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tk := Coarse(ctx, 0)
	defer tk.Stop()

	assert.Greater(t, tk.Ticks(), int64(0))
}

func TestCoarseTickerConversions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tk := Coarse(ctx, time.Millisecond)
	defer tk.Stop()

	assert.Equal(t, 2000.0, tk.ToNanos(2_000))
	assert.Equal(t, 2.0, tk.ToMicros(2_000))
}

func TestTickerInterface(t *testing.T) {
	var _ Ticker = (*SystemTicker)(nil)
	var _ Ticker = (*CoarseTicker)(nil)
}
