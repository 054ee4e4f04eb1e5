package latreport

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bsv-blockchain/go-histogram"
	"github.com/bsv-blockchain/go-histogram/errors"
	"github.com/bsv-blockchain/go-histogram/metrics"
	"github.com/bsv-blockchain/go-histogram/settings"
	"github.com/bsv-blockchain/go-histogram/ticker"
	"github.com/bsv-blockchain/go-histogram/timing"
	"github.com/bsv-blockchain/go-histogram/ulogger"
	"github.com/felixge/fgprof"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// The benchmark measures the gap between consecutive clock reads, which is
// rarely more than a few microseconds, so it defaults to a coarser shape than
// the report histogram.
const (
	benchDefaultPowersOf2    = 32
	benchDefaultFractionBits = 4
)

var metricsServerStarted atomic.Bool

// BenchCommand returns the bench subcommand.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "measure inter tick latency of the host in a tight loop",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "load settings from a .env or yaml/json file"},
			&cli.IntFlag{Name: "rounds", Usage: "number of benchmark rounds"},
			&cli.IntFlag{Name: "iterations", Usage: "samples per round"},
			&cli.IntFlag{Name: "rate", Usage: "limit sampling to this many per second, 0 for unlimited"},
			&cli.IntFlag{Name: "powersOf2", Value: benchDefaultPowersOf2, Usage: "histogram range in powers of two"},
			&cli.IntFlag{Name: "fractionBits", Value: benchDefaultFractionBits, Usage: "histogram resolution in fraction bits"},
			&cli.BoolFlag{Name: "profile", Usage: "write an fgprof profile of the run"},
			&cli.StringFlag{Name: "profileFile", Usage: "profile output file"},
			&cli.StringFlag{Name: "metricsAddr", Usage: "serve prometheus metrics and stats on this address"},
		},
		Action: benchAction,
	}
}

func benchAction(c *cli.Context) error {
	tSettings, err := resolveSettings(c)
	if err != nil {
		return err
	}

	logger := ulogger.New("latreport",
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithLoggerType(tSettings.LoggerType),
	)

	powersOf2 := c.Int("powersOf2")
	fractionBits := c.Int("fractionBits")

	cumulative, err := histogram.NewAtomic(powersOf2, fractionBits)
	if err != nil {
		return err
	}

	if addr := c.String("metricsAddr"); addr != "" {
		if err := startMetricsServer(logger, addr, cumulative); err != nil {
			return err
		}
	}

	results, err := RunBench(c.Context, logger, tSettings.Bench, powersOf2, fractionBits, cumulative)
	if err != nil {
		return err
	}

	combined, err := histogram.New(powersOf2, fractionBits)
	if err != nil {
		return err
	}

	for _, h := range results {
		if err := combined.Merge(h); err != nil {
			return err
		}
	}

	fmt.Printf("overall: %s\n", combined.LongMicrosFormat())

	return nil
}

// RunBench runs rounds of the inter tick sampling loop, one histogram per
// round. Every delta is also recorded into cumulative when it is non nil, so
// a metrics scrape sees the whole run. A rate above zero throttles the loop,
// which turns the benchmark into a clock jitter probe at that frequency.
func RunBench(ctx context.Context, logger ulogger.Logger, cfg settings.BenchSettings, powersOf2, fractionBits int, cumulative *histogram.AtomicHistogram) ([]*histogram.Histogram, error) {
	initPrometheusMetrics()

	rounds := cfg.Rounds
	if rounds < 1 {
		rounds = 1
	}

	iterations := cfg.Iterations
	if iterations < 1 {
		iterations = 1
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RatePerSecond)), 1)
	}

	if cfg.Profile {
		f, err := os.Create(cfg.ProfileFile)
		if err != nil {
			return nil, errors.NewProcessingError("error creating profile file %s", cfg.ProfileFile, err)
		}

		stop := fgprof.Start(f, fgprof.FormatPprof)

		defer func() {
			if err := stop(); err != nil {
				logger.Errorf("error stopping profiler: %v", err)
			}

			_ = f.Close()
		}()
	}

	tk := ticker.System()
	results := make([]*histogram.Histogram, 0, rounds)

	for round := 1; round <= rounds; round++ {
		h, err := histogram.New(powersOf2, fractionBits)
		if err != nil {
			return nil, err
		}

		_, _, finish := timing.Start(ctx, "latreport:bench:round",
			timing.WithCounter(prometheusBenchRounds),
			timing.WithLogMessage(logger, "round %d: %d iterations", round, iterations),
		)

		prev := tk.Ticks()

		for i := 0; i < iterations; i++ {
			// only poll ctx every few thousand iterations
			if i&0x3fff == 0 {
				select {
				case <-ctx.Done():
					finish()
					return nil, errors.NewContextCanceledError("benchmark cancelled", ctx.Err())
				default:
				}
			}

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					finish()
					return nil, errors.NewContextCanceledError("benchmark cancelled", err)
				}
			}

			now := tk.Ticks()
			delta := now - prev
			prev = now

			if _, err := h.SampleTicks(delta, tk.ToNanos); err != nil {
				finish()
				return nil, err
			}

			if cumulative != nil {
				_, _ = cumulative.Sample(tk.ToNanos(delta))
			}
		}

		finish()

		logger.Infof("round %d: %s", round, h.LongMicrosFormat())
		results = append(results, h)
	}

	return results, nil
}

// startMetricsServer exposes the cumulative benchmark histogram, the gocore
// stat tree and an fgprof endpoint for the lifetime of the process.
func startMetricsServer(logger ulogger.Logger, addr string, cumulative *histogram.AtomicHistogram) error {
	if metricsServerStarted.Swap(true) {
		return nil
	}

	collector, err := metrics.NewHistogramCollector(
		"latreport_bench_latency_nanoseconds",
		"Inter tick latency of the benchmark loop in nanoseconds",
		cumulative,
	)
	if err != nil {
		return err
	}

	if err := prometheus.Register(collector); err != nil {
		return errors.NewConfigurationError("error registering benchmark collector", err)
	}

	go func() {
		logger.Infof("Metrics listening on http://%s/metrics", addr)

		gocore.RegisterStatsHandlers()
		http.Handle("/metrics", promhttp.Handler())
		http.Handle("/debug/fgprof", fgprof.Handler())

		server := &http.Server{
			Addr:         addr,
			Handler:      nil,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		logger.Fatalf("%v", server.ListenAndServe())
	}()

	return nil
}
