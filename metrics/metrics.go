// Package metrics exposes latency histograms to prometheus.
//
// A native prometheus histogram cannot ingest an already bucketed
// distribution, so HistogramCollector snapshots a histogram at scrape time
// and emits it with prometheus.MustNewConstHistogram. The histogram's own
// quasi logarithmic buckets are downsampled to at most 64 boundaries to keep
// scrape payloads small.
package metrics

import (
	"slices"

	"github.com/bsv-blockchain/go-histogram"
	"github.com/bsv-blockchain/go-histogram/errors"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/prometheus/client_golang/prometheus"
)

// maxExportBuckets caps the number of boundaries emitted per scrape.
const maxExportBuckets = 64

// MetricsBucketsMicroSeconds defines histogram buckets for microsecond-level latency measurements.
// Buckets range from 128μs to 262ms in exponential progression.
var MetricsBucketsMicroSeconds = []float64{
	128e-6, 256e-6, 512e-6, 1024e-6, 2048e-6, 4096e-6, 8192e-6, 16384e-6, 32768e-6, 65536e-6, 131072e-6, 262144e-6,
}

// MetricsBucketsMilliSeconds defines histogram buckets for millisecond-level latency measurements.
// Buckets range from 1ms to 4s in exponential progression.
var MetricsBucketsMilliSeconds = []float64{
	1e-3, 2e-3, 4e-3, 16e-3, 32e-3, 64e-3, 128e-3, 256e-3, 512e-3, 1024e-3, 2048e-3, 4096e-3,
}

// MetricsBucketsSeconds defines histogram buckets for second-level duration measurements.
// Buckets range from 1s to 2048s (~34 minutes) in exponential progression.
var MetricsBucketsSeconds = []float64{
	1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048,
}

// Snapshotter yields a consistent point in time copy of a histogram.
// AtomicHistogram satisfies this directly.
type Snapshotter interface {
	Snapshot() *histogram.Histogram
}

// SnapshotterFunc adapts a function to the Snapshotter interface.
type SnapshotterFunc func() *histogram.Histogram

func (f SnapshotterFunc) Snapshot() *histogram.Histogram {
	return f()
}

type HistogramCollector struct {
	desc *prometheus.Desc
	src  Snapshotter
}

// NewHistogramCollector returns a prometheus collector that emits the
// source's distribution under the given fully qualified metric name.
func NewHistogramCollector(name, help string, src Snapshotter) (*HistogramCollector, error) {
	if name == "" {
		return nil, errors.NewInvalidArgumentError("metric name is required")
	}

	if src == nil {
		return nil, errors.NewInvalidArgumentError("snapshot source is required")
	}

	return &HistogramCollector{
		desc: prometheus.NewDesc(name, help, nil, nil),
		src:  src,
	}, nil
}

func (c *HistogramCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *HistogramCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.src.Snapshot()
	if snap == nil {
		return
	}

	count, sum, buckets, err := cumulate(snap)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}

	ch <- prometheus.MustNewConstHistogram(c.desc, count, sum, buckets)
}

type bucketPoint struct {
	upper float64
	cum   uint64
}

// cumulate converts the snapshot into the cumulative form prometheus
// expects. The sum is approximated from bucket midpoints, the histogram
// does not record exact sample sums.
func cumulate(snap *histogram.Histogram) (uint64, float64, map[float64]uint64, error) {
	total, err := safeconversion.IntToUint64(int(snap.TotalCount()))
	if err != nil {
		return 0, 0, nil, errors.NewProcessingError("invalid total count", err)
	}

	points := make([]bucketPoint, 0, maxExportBuckets)

	var (
		cum uint64
		sum float64
	)

	for i := 0; i < snap.Buckets(); i++ {
		n := snap.BucketCount(i)
		if n == 0 {
			continue
		}

		nn, err := safeconversion.IntToUint64(int(n))
		if err != nil {
			return 0, 0, nil, errors.NewProcessingError("invalid bucket count at index %d", i, err)
		}

		cum += nn
		sum += float64(n) * snap.BucketValue(i)

		points = append(points, bucketPoint{upper: snap.BucketUpperBound(i), cum: cum})
	}

	if len(points) > maxExportBuckets {
		stride := (len(points) + maxExportBuckets - 1) / maxExportBuckets

		kept := make([]bucketPoint, 0, maxExportBuckets)
		for i := len(points) - 1; i >= 0; i -= stride {
			kept = append(kept, points[i])
		}

		slices.Reverse(kept)
		points = kept
	}

	buckets := make(map[float64]uint64, len(points))
	for _, p := range points {
		buckets[p.upper] = p.cum
	}

	return total, sum, buckets, nil
}
