// Package latreport implements the report and bench subcommands of the
// latreport command line tool.
//
// The report subcommand aggregates files of recorded nanosecond samples into
// a single latency histogram and renders it as text, JSON or CSV. The bench
// subcommand measures the inter tick latency of the host in a tight loop and
// prints a summary per round.
package latreport

import (
	"io"
	"os"

	"github.com/bsv-blockchain/go-histogram/errors"
	"github.com/bsv-blockchain/go-histogram/settings"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// resolveSettings loads settings from the file given by the settings flag, or
// falls back to the environment backed defaults, and then applies any flags
// that were set explicitly on the command line.
func resolveSettings(c *cli.Context) (*settings.Settings, error) {
	var tSettings *settings.Settings

	if path := c.String("settings"); path != "" {
		s, err := settings.LoadFile(path)
		if err != nil {
			return nil, err
		}

		tSettings = s
	} else {
		tSettings = settings.NewSettings()
	}

	if c.IsSet("format") {
		tSettings.Report.Format = c.String("format")
	}

	if c.IsSet("output") {
		tSettings.Report.Output = c.String("output")
	}

	if c.IsSet("workers") {
		tSettings.Report.Workers = c.Int("workers")
	}

	if c.IsSet("progress") {
		tSettings.Report.Progress = c.Bool("progress")
	}

	if c.IsSet("powersOf2") {
		tSettings.Histogram.PowersOf2 = c.Int("powersOf2")
	}

	if c.IsSet("fractionBits") {
		tSettings.Histogram.FractionBits = c.Int("fractionBits")
	}

	if c.IsSet("rounds") {
		tSettings.Bench.Rounds = c.Int("rounds")
	}

	if c.IsSet("iterations") {
		tSettings.Bench.Iterations = c.Int("iterations")
	}

	if c.IsSet("rate") {
		tSettings.Bench.RatePerSecond = c.Int("rate")
	}

	if c.IsSet("profile") {
		tSettings.Bench.Profile = c.Bool("profile")
	}

	if c.IsSet("profileFile") {
		tSettings.Bench.ProfileFile = c.String("profileFile")
	}

	return tSettings, nil
}

// openOutput returns the writer for the rendered report. An empty path means
// stdout, which must not be closed.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.NewProcessingError("error creating output file %s", path, err)
	}

	return f, f.Close, nil
}
