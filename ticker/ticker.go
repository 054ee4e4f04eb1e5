// Package ticker provides nanosecond tick sources for latency measurement.
//
// System reads the monotonic clock on every call. Coarse trades precision
// for cost, it returns a cached reading that a background timer refreshes,
// which suits progress reporting and other hot loops that only need an
// approximate now.
package ticker

import (
	"context"
	"time"

	"github.com/kpango/fastime"
)

// Ticker is a source of nanosecond ticks. ToNanos and ToMicros convert a
// tick delta into the float domain the histogram samples in.
type Ticker interface {
	Ticks() int64
	ToNanos(ticks int64) float64
	ToMicros(ticks int64) float64
}

type SystemTicker struct {
	base time.Time
}

// System returns a ticker backed by the monotonic clock. Ticks are
// nanoseconds since the ticker was created.
func System() *SystemTicker {
	return &SystemTicker{base: time.Now()}
}

func (t *SystemTicker) Ticks() int64 {
	return int64(time.Since(t.base))
}

func (t *SystemTicker) ToNanos(ticks int64) float64 {
	return float64(ticks)
}

func (t *SystemTicker) ToMicros(ticks int64) float64 {
	return float64(ticks) / 1e3
}

type CoarseTicker struct {
	ft fastime.Fastime
}

// Coarse returns a ticker whose reading is refreshed in the background
// every refresh interval. The daemon stops when ctx is done or Stop is
// called. A refresh of zero or less falls back to 5ms.
func Coarse(ctx context.Context, refresh time.Duration) *CoarseTicker {
	if refresh <= 0 {
		refresh = 5 * time.Millisecond
	}

	return &CoarseTicker{
		ft: fastime.New().StartTimerD(ctx, refresh),
	}
}

func (t *CoarseTicker) Ticks() int64 {
	return t.ft.UnixNanoNow()
}

func (t *CoarseTicker) ToNanos(ticks int64) float64 {
	return float64(ticks)
}

func (t *CoarseTicker) ToMicros(ticks int64) float64 {
	return float64(ticks) / 1e3
}

func (t *CoarseTicker) Stop() {
	t.ft.Stop()
}
