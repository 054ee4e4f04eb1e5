// Command latreport builds latency reports from recorded nanosecond samples
// and runs a self-timing benchmark loop.
package main

import (
	"log"
	"os"

	"github.com/bsv-blockchain/go-histogram/cmd/latreport/latreport"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "latreport",
		Usage: "latency report tool for nanosecond sample files",
		Commands: []*cli.Command{
			latreport.ReportCommand(),
			latreport.BenchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
