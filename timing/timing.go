// Package timing measures named spans of work and feeds the elapsed time
// into one or more sinks, a gocore stat tree, a latency histogram, a
// prometheus histogram or counter, and optionally a log line.
package timing

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/go-histogram"
	"github.com/bsv-blockchain/go-histogram/ulogger"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
)

type statsKey struct{}

var defaultStat = gocore.NewStat("histogram", true)

type Options func(s *SpanOptions)

type SpanOptions struct {
	ParentStat *gocore.Stat
	Sampler    histogram.NanoSampler
	Histogram  prometheus.Histogram
	Counter    prometheus.Counter
	Logger     ulogger.Logger
	LogMessage string
	LogArgs    []interface{}
}

func WithParentStat(stat *gocore.Stat) Options {
	return func(s *SpanOptions) {
		s.ParentStat = stat
	}
}

// WithSampler sets the latency sampler to record the elapsed nanoseconds
// when the span is finished.
func WithSampler(sampler histogram.NanoSampler) Options {
	return func(s *SpanOptions) {
		s.Sampler = sampler
	}
}

// WithHistogram sets the prometheus histogram to be observed when the span is finished.
func WithHistogram(histogram prometheus.Histogram) Options {
	return func(s *SpanOptions) {
		s.Histogram = histogram
	}
}

// WithCounter sets the prometheus counter to be incremented when the span is finished.
func WithCounter(counter prometheus.Counter) Options {
	return func(s *SpanOptions) {
		s.Counter = counter
	}
}

// WithLogMessage sets the logger and log message to be used when starting the span and when the span is finished.
// The log message is formatted with fmt.Sprintf and all arguments are passed to the logger.
// The log message is logged at the INFO level.
func WithLogMessage(logger ulogger.Logger, format string, args ...interface{}) Options {
	return func(s *SpanOptions) {
		s.Logger = logger
		s.LogMessage = format
		s.LogArgs = args
	}
}

// Start begins a span with the given name and returns a context carrying the
// span's stat and a function that finishes the span.
func Start(ctx context.Context, name string, setOptions ...Options) (context.Context, *gocore.Stat, func()) {
	options := &SpanOptions{}
	for _, opt := range setOptions {
		opt(options)
	}

	var start int64
	var stat *gocore.Stat
	if options.ParentStat != nil {
		start, stat, ctx = NewStatFromContext(ctx, name, options.ParentStat)
	} else {
		start, stat, ctx = StartStatFromContext(ctx, name)
	}

	if options.Logger != nil && options.LogMessage != "" {
		options.Logger.Infof(options.LogMessage, options.LogArgs...)
	}

	return ctx, stat, func() {
		stat.AddTime(start)

		elapsed := gocore.CurrentNanos() - start

		if options.Sampler != nil {
			_, _ = options.Sampler.SampleNanos(elapsed)
		}

		if options.Histogram != nil {
			options.Histogram.Observe(float64(time.Duration(elapsed).Microseconds()) / 1_000_000)
		}

		if options.Counter != nil {
			options.Counter.Inc()
		}

		if options.Logger != nil && options.LogMessage != "" {
			done := fmt.Sprintf(" DONE in %s", time.Duration(elapsed))
			options.Logger.Infof(options.LogMessage+done, options.LogArgs...)
		}
	}
}

// NewStatFromContext creates a child stat under the stat carried by ctx,
// falling back to defaultParent when ctx carries none.
func NewStatFromContext(ctx context.Context, key string, defaultParent *gocore.Stat, options ...bool) (int64, *gocore.Stat, context.Context) {
	parentStat, ok := ctx.Value(statsKey{}).(*gocore.Stat)
	if !ok {
		parentStat = defaultParent
	}

	ignoreChildren := true
	if len(options) > 0 {
		ignoreChildren = options[0]
	}

	stat := parentStat.NewStat(key, ignoreChildren)

	return gocore.CurrentNanos(), stat, context.WithValue(ctx, statsKey{}, stat)
}

func StartStatFromContext(ctx context.Context, key string, options ...bool) (int64, *gocore.Stat, context.Context) {
	return NewStatFromContext(ctx, key, defaultStat, options...)
}
