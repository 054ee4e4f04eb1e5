package timing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bsv-blockchain/go-histogram"
	"github.com/bsv-blockchain/go-histogram/timing"
	"github.com/bsv-blockchain/go-histogram/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartReturnsStat(t *testing.T) {
	ctx, stat, finish := timing.Start(context.Background(), "op")

	require.NotNil(t, ctx)
	require.NotNil(t, stat)
	require.NotNil(t, finish)

	finish()
}

func TestStartNestsStats(t *testing.T) {
	ctx, parent, finishParent := timing.Start(context.Background(), "parent")
	defer finishParent()

	_, child, finishChild := timing.Start(ctx, "child")
	defer finishChild()

	require.NotNil(t, child)
	assert.NotEqual(t, parent, child)
}

func TestStartWithParentStat(t *testing.T) {
	root := gocore.NewStat("test-root")

	_, stat, finish := timing.Start(context.Background(), "op", timing.WithParentStat(root))
	defer finish()

	require.NotNil(t, stat)
	assert.NotEqual(t, root, stat)
}

func TestStartWithSampler(t *testing.T) {
	h := histogram.NewDefault()

	_, _, finish := timing.Start(context.Background(), "op", timing.WithSampler(h))

	time.Sleep(2 * time.Millisecond)
	finish()

	require.Equal(t, int64(1), h.TotalCount())

	p, err := h.Percentile(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 2e6)
	assert.Less(t, p, 1e9)
}

func TestStartWithPrometheusHistogram(t *testing.T) {
	ph := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "test_span_duration_seconds",
		Help: "test",
	})

	_, _, finish := timing.Start(context.Background(), "op", timing.WithHistogram(ph))
	finish()

	m := &dto.Metric{}
	require.NoError(t, ph.Write(m))

	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
}

func TestStartWithCounter(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_span_total",
		Help: "test",
	})

	_, _, finish := timing.Start(context.Background(), "op", timing.WithCounter(c))
	finish()
	_, _, finish = timing.Start(context.Background(), "op", timing.WithCounter(c))
	finish()

	m := &dto.Metric{}
	require.NoError(t, c.Write(m))

	assert.Equal(t, 2.0, m.GetCounter().GetValue())
}

type recordingLogger struct {
	ulogger.TestLogger

	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, format)
}

func TestStartWithLogMessage(t *testing.T) {
	logger := &recordingLogger{}

	_, _, finish := timing.Start(context.Background(), "op",
		timing.WithLogMessage(logger, "processing %s", "batch-1"))
	finish()

	logger.mu.Lock()
	defer logger.mu.Unlock()

	require.Len(t, logger.msgs, 2)
	assert.Equal(t, "processing %s", logger.msgs[0])
	assert.Contains(t, logger.msgs[1], " DONE in ")
}

type failingSampler struct{}

func (failingSampler) SampleNanos(_ int64) (int, error) {
	return 0, assert.AnError
}

func TestStartIgnoresSamplerError(t *testing.T) {
	_, _, finish := timing.Start(context.Background(), "op", timing.WithSampler(failingSampler{}))

	assert.NotPanics(t, finish)
}

func TestStartCombinedSinks(t *testing.T) {
	h := histogram.NewDefault()
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_combined_total",
		Help: "test",
	})

	_, stat, finish := timing.Start(context.Background(), "op",
		timing.WithSampler(h),
		timing.WithCounter(c))

	require.NotNil(t, stat)
	finish()

	assert.Equal(t, int64(1), h.TotalCount())

	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}
