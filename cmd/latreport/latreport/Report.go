package latreport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bsv-blockchain/go-histogram"
	"github.com/bsv-blockchain/go-histogram/errors"
	"github.com/bsv-blockchain/go-histogram/settings"
	"github.com/bsv-blockchain/go-histogram/ticker"
	"github.com/bsv-blockchain/go-histogram/timing"
	"github.com/bsv-blockchain/go-histogram/ulogger"
	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatCSV  = "csv"
)

const (
	headerFormat    = "%s\n"
	filesFormat     = "files:     %d\n"
	samplesFormat   = "samples:   %d\n"
	malformedFormat = "malformed: %d\n"
	overflowFormat  = "overflow:  %d\n"
	bucketsFormat   = "buckets:   %d (2^%d powers, %d fraction bits)\n"
	quantileFormat  = "p%-9s %15.3f us\n"
)

// Stats counts what an ingestion run saw.
type Stats struct {
	Files     int64
	Samples   int64
	Malformed int64
}

// ReportCommand returns the report subcommand.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "aggregate sample files into a latency report",
		ArgsUsage: "<file|dir> [<file|dir>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Usage: "load settings from a .env or yaml/json file"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: text, json or csv"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the report to this file instead of stdout"},
			&cli.IntFlag{Name: "workers", Usage: "number of concurrent file readers"},
			&cli.IntFlag{Name: "powersOf2", Usage: "histogram range in powers of two"},
			&cli.IntFlag{Name: "fractionBits", Usage: "histogram resolution in fraction bits"},
			&cli.BoolFlag{Name: "progress", Usage: "log ingestion progress"},
		},
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.NewInvalidArgumentError("at least one sample file or directory is required")
	}

	tSettings, err := resolveSettings(c)
	if err != nil {
		return err
	}

	logger := ulogger.New("latreport",
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithLoggerType(tSettings.LoggerType),
	)

	h, stats, err := Run(c.Context, logger, tSettings, c.Args().Slice())
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(tSettings.Report.Output)
	if err != nil {
		return err
	}

	if err := render(out, tSettings.Report.Format, h, stats); err != nil {
		_ = closeOut()
		return err
	}

	return closeOut()
}

// Run ingests every file under the given paths into one histogram. Files are
// read concurrently, at most Workers at a time, each into its own histogram
// that is merged into the combined one when the file is done.
func Run(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, paths []string) (*histogram.Histogram, *Stats, error) {
	initPrometheusMetrics()

	ctx, _, finish := timing.Start(ctx, "latreport:report",
		timing.WithHistogram(prometheusReportDuration),
		timing.WithLogMessage(logger, "aggregating %d path(s)", len(paths)),
	)
	defer finish()

	files, err := expandPaths(paths)
	if err != nil {
		return nil, nil, err
	}

	if len(files) == 0 {
		return nil, nil, errors.NewNotFoundError("no sample files found in %v", paths)
	}

	combined, err := histogram.New(tSettings.Histogram.PowersOf2, tSettings.Histogram.FractionBits)
	if err != nil {
		return nil, nil, err
	}

	workers := tSettings.Report.Workers
	if workers < 1 {
		workers = 1
	}

	stats := &Stats{}
	processed := atomic.NewInt64(0)

	if tSettings.Report.Progress {
		progressCtx, cancelProgress := context.WithCancel(ctx)
		defer cancelProgress()

		go logProgress(progressCtx, logger, processed, int64(len(files)), tSettings.Report.ProgressInterval)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex

	for _, file := range files {
		g.Go(func() error {
			fileHist, fileStats, err := ProcessFile(gCtx, file, tSettings)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			if err := combined.Merge(fileHist); err != nil {
				return err
			}

			stats.Files++
			stats.Samples += fileStats.Samples
			stats.Malformed += fileStats.Malformed

			processed.Inc()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	prometheusReportFiles.Add(float64(stats.Files))
	prometheusReportSamples.Add(float64(stats.Samples))
	prometheusReportMalformed.Add(float64(stats.Malformed))

	logger.Infof("aggregated %d file(s): %d sample(s), %d malformed", stats.Files, stats.Samples, stats.Malformed)

	return combined, stats, nil
}

// ProcessFile reads one sample file into its own histogram. Fields are
// whitespace separated nanosecond integers; fields that do not parse, and
// negative values, are counted as malformed instead of failing the file.
func ProcessFile(ctx context.Context, path string, tSettings *settings.Settings) (*histogram.Histogram, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewProcessingError("error opening sample file %s", path, err)
	}
	defer f.Close()

	h, err := histogram.New(tSettings.Histogram.PowersOf2, tSettings.Histogram.FractionBits)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{Files: 1}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, nil, errors.NewContextCanceledError("ingestion of %s cancelled", path, ctx.Err())
		default:
		}

		for _, field := range strings.Fields(scanner.Text()) {
			ns, err := strconv.ParseInt(field, 10, 64)
			if err != nil || ns < 0 {
				stats.Malformed++
				continue
			}

			if _, err := h.SampleNanos(ns); err != nil {
				stats.Malformed++
				continue
			}

			stats.Samples++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewProcessingError("error reading sample file %s", path, err)
	}

	return h, stats, nil
}

// expandPaths resolves the command line arguments into a flat, sorted list of
// files. Directories are walked recursively, skipping rendered artifacts such
// as .png files.
func expandPaths(paths []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.NewNotFoundError("cannot stat %s", p, err)
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			if strings.EqualFold(filepath.Ext(path), ".png") {
				return nil
			}

			files = append(files, path)

			return nil
		})
		if err != nil {
			return nil, errors.NewProcessingError("error walking %s", p, err)
		}
	}

	sort.Strings(files)

	return files, nil
}

func logProgress(ctx context.Context, logger ulogger.Logger, processed *atomic.Int64, total int64, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	tk := ticker.Coarse(ctx, interval/10)
	defer tk.Stop()

	start := tk.Ticks()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			elapsed := time.Duration(tk.Ticks() - start)
			logger.Infof("processed %d/%d file(s) in %s", processed.Load(), total, elapsed.Round(time.Millisecond))
		}
	}
}

func render(w io.Writer, format string, h *histogram.Histogram, stats *Stats) error {
	switch format {
	case formatText, "":
		return renderText(w, h, stats)
	case formatJSON:
		return renderJSON(w, h)
	case formatCSV:
		return renderCSV(w, h)
	default:
		return errors.NewInvalidArgumentError("unknown report format %q", format)
	}
}

func renderText(w io.Writer, h *histogram.Histogram, stats *Stats) error {
	if _, err := fmt.Fprintf(w, headerFormat, h.LongMicrosFormat()); err != nil {
		return errors.NewProcessingError("error writing report", err)
	}

	_, _ = fmt.Fprintf(w, filesFormat, stats.Files)
	_, _ = fmt.Fprintf(w, samplesFormat, stats.Samples)
	_, _ = fmt.Fprintf(w, malformedFormat, stats.Malformed)
	_, _ = fmt.Fprintf(w, overflowFormat, h.OverflowCount())
	_, _ = fmt.Fprintf(w, bucketsFormat, h.Buckets(), h.PowersOf2(), h.FractionBits())

	for _, q := range h.Summary().Quantiles {
		label := strconv.FormatFloat(math.Round(q.Fraction*1e6)/1e4, 'f', -1, 64)
		_, _ = fmt.Fprintf(w, quantileFormat, label, q.Value/1e3)
	}

	return nil
}

func renderJSON(w io.Writer, h *histogram.Histogram) error {
	b, err := json.MarshalIndent(h.Summary(), "", "  ")
	if err != nil {
		return errors.NewProcessingError("error marshalling report", err)
	}

	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.NewProcessingError("error writing report", err)
	}

	return nil
}

func renderCSV(w io.Writer, h *histogram.Histogram) error {
	rows := h.Summary().Quantiles

	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.NewProcessingError("error writing csv report", err)
	}

	return nil
}
