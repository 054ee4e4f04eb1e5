package latreport

import (
	"sync"

	"github.com/bsv-blockchain/go-histogram/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusReportFiles     prometheus.Counter
	prometheusReportSamples   prometheus.Counter
	prometheusReportMalformed prometheus.Counter
	prometheusReportDuration  prometheus.Histogram
	prometheusBenchRounds     prometheus.Counter
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusReportFiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "histogram",
			Subsystem: "latreport",
			Name:      "files_total",
			Help:      "Number of sample files processed",
		},
	)

	prometheusReportSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "histogram",
			Subsystem: "latreport",
			Name:      "samples_total",
			Help:      "Number of samples ingested into the report histogram",
		},
	)

	prometheusReportMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "histogram",
			Subsystem: "latreport",
			Name:      "malformed_total",
			Help:      "Number of fields that could not be parsed as nanosecond samples",
		},
	)

	prometheusReportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "histogram",
			Subsystem: "latreport",
			Name:      "report_duration_seconds",
			Help:      "Time taken to aggregate sample files into a report",
			Buckets:   metrics.MetricsBucketsMilliSeconds,
		},
	)

	prometheusBenchRounds = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "histogram",
			Subsystem: "latreport",
			Name:      "bench_rounds_total",
			Help:      "Number of completed benchmark rounds",
		},
	)
}
