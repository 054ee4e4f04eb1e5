// Package histogram implements a bounded-memory latency histogram with
// quasi-logarithmic bucketing.
//
// Values are bucketed by octave (power of two) with 2^fractionBits linear
// sub-buckets per octave, giving a constant relative resolution of
// 2^-fractionBits across the whole range: fine absolute resolution for small
// values, coarser for large ones. Recording a sample is O(1) and allocation
// free, so a histogram can sit on nanosecond-scale hot paths. Percentile and
// ECDF queries scan the fixed counter block; raw samples are never retained.
//
// A Histogram expects a single logical writer. Readers may observe a live
// histogram if they tolerate in-flight counters (fine for monitoring);
// otherwise use AtomicHistogram and query a Snapshot.
package histogram

import (
	"math"
	"time"

	"github.com/bsv-blockchain/go-histogram/errors"
)

const (
	// maxPowersOf2 keeps the top octave exponent inside the float64 exponent range.
	maxPowersOf2 = 62

	// maxFractionBits bounds the counter block to a sane size; 20 bits is
	// already 2^20 sub-buckets per octave.
	maxFractionBits = 20

	defaultPowersOf2    = 32
	defaultFractionBits = 7
)

// NanoSampler records elapsed nanoseconds. Both Histogram and
// AtomicHistogram implement it; instrumentation code should accept this
// interface rather than a concrete variant.
type NanoSampler interface {
	SampleNanos(ns int64) (int, error)
}

// Histogram is a fixed-shape dense counter block over quasi-logarithmic
// buckets. The shape (powersOf2, fractionBits) is immutable after
// construction; all other state is reset-able.
type Histogram struct {
	powersOf2    int
	fractionBits int
	floor        int64 // 1023 << fractionBits, offsets the IEEE-754 exponent bias
	overflow     int64
	totalCount   int64
	sampleCount  []int64
}

// New creates a histogram spanning [1, 2^powersOf2) in its native unit, each
// octave split into 2^fractionBits linear sub-buckets. Values below 1 gather
// in the first bucket; values at or above the ceiling clamp into the last.
func New(powersOf2, fractionBits int) (*Histogram, error) {
	if powersOf2 < 1 || powersOf2 > maxPowersOf2 {
		return nil, errors.NewInvalidArgumentError("powersOf2 must be in [1, %d], got %d", maxPowersOf2, powersOf2)
	}

	if fractionBits < 0 || fractionBits > maxFractionBits {
		return nil, errors.NewInvalidArgumentError("fractionBits must be in [0, %d], got %d", maxFractionBits, fractionBits)
	}

	return &Histogram{
		powersOf2:    powersOf2,
		fractionBits: fractionBits,
		floor:        int64(1023) << fractionBits,
		sampleCount:  make([]int64, powersOf2<<fractionBits),
	}, nil
}

// NewDefault creates a histogram sized for sub-second latencies in
// nanoseconds: 32 octaves (~4.29s ceiling) at 1/128 relative resolution.
func NewDefault() *Histogram {
	h, _ := New(defaultPowersOf2, defaultFractionBits)
	return h
}

// MustNew is New that panics on invalid shape, for package-level variables.
func MustNew(powersOf2, fractionBits int) *Histogram {
	h, err := New(powersOf2, fractionBits)
	if err != nil {
		panic(err)
	}

	return h
}

// indexFor maps a non-negative value to a bucket index by reading the
// exponent and top mantissa bits straight out of the float64 representation,
// which is exactly floor(log2 v) plus floor((v/2^e - 1) * 2^fractionBits).
// The bool reports a top clamp.
func indexFor(v float64, fractionBits int, floor int64, buckets int) (int, bool) {
	idx := int((int64(math.Float64bits(v)) >> (52 - fractionBits)) - floor)

	if idx < 0 {
		return 0, false
	}

	if idx >= buckets {
		return buckets - 1, true
	}

	return idx, false
}

// bucketValue reconstructs the representative (midpoint) value of a bucket by
// rebuilding the float64 bits and setting the first truncated mantissa bit,
// i.e. lower bound plus half a sub-bucket width.
func bucketValue(idx, fractionBits int, floor int64) float64 {
	return math.Float64frombits(uint64(int64(idx)+floor)<<(52-fractionBits) | 1<<(51-fractionBits))
}

// bucketUpperBound is the exclusive upper boundary of a bucket, which is the
// lower bound of the next one.
func bucketUpperBound(idx, fractionBits int, floor int64) float64 {
	return math.Float64frombits(uint64(int64(idx)+1+floor) << (52 - fractionBits))
}

// Sample records one value and returns the bucket index it landed in. A value
// at or above the histogram ceiling is still counted, in the top bucket, and
// noted in OverflowCount. Negative or NaN values are rejected.
func (h *Histogram) Sample(v float64) (int, error) {
	if v < 0 || math.IsNaN(v) {
		return 0, errors.NewInvalidArgumentError("sample value must be non-negative, got %v", v)
	}

	idx, overflowed := indexFor(v, h.fractionBits, h.floor, len(h.sampleCount))
	if overflowed {
		h.overflow++
	}

	h.sampleCount[idx]++
	h.totalCount++

	return idx, nil
}

// SampleNanos records an elapsed time in nanoseconds.
func (h *Histogram) SampleNanos(ns int64) (int, error) {
	if ns < 0 {
		return 0, errors.NewInvalidArgumentError("sample must be non-negative, got %dns", ns)
	}

	return h.Sample(float64(ns))
}

// SampleDuration records an elapsed time.
func (h *Histogram) SampleDuration(d time.Duration) (int, error) {
	return h.SampleNanos(d.Nanoseconds())
}

// SampleTicks records a raw tick count using the supplied tick to nanosecond
// conversion, typically ticker.Ticker.ToNanos.
func (h *Histogram) SampleTicks(ticks int64, toNanos func(int64) float64) (int, error) {
	if toNanos == nil {
		return 0, errors.NewInvalidArgumentError("toNanos conversion is required")
	}

	return h.Sample(toNanos(ticks))
}

// BucketIndex returns the bucket a value would land in without recording it.
func (h *Histogram) BucketIndex(v float64) (int, error) {
	if v < 0 || math.IsNaN(v) {
		return 0, errors.NewInvalidArgumentError("value must be non-negative, got %v", v)
	}

	idx, _ := indexFor(v, h.fractionBits, h.floor, len(h.sampleCount))

	return idx, nil
}

// Reset zeroes all counters. The shape is kept, so a reset histogram
// re-recording the same samples reproduces identical counters and
// percentiles.
func (h *Histogram) Reset() {
	clear(h.sampleCount)
	h.totalCount = 0
	h.overflow = 0
}

// Merge adds other's counters into h. Both histograms must share the same
// shape. Used to combine per-goroutine histograms filled under the
// single-writer contract.
func (h *Histogram) Merge(other *Histogram) error {
	if other == nil {
		return errors.NewInvalidArgumentError("cannot merge a nil histogram")
	}

	if h.powersOf2 != other.powersOf2 || h.fractionBits != other.fractionBits {
		return errors.NewInvalidArgumentError("histogram shapes differ: (%d,%d) vs (%d,%d)",
			h.powersOf2, h.fractionBits, other.powersOf2, other.fractionBits)
	}

	for i, c := range other.sampleCount {
		h.sampleCount[i] += c
	}

	h.totalCount += other.totalCount
	h.overflow += other.overflow

	return nil
}

// Snapshot returns a copy of the histogram. The caller owns the copy and may
// query it while the original keeps sampling.
func (h *Histogram) Snapshot() *Histogram {
	c := &Histogram{
		powersOf2:    h.powersOf2,
		fractionBits: h.fractionBits,
		floor:        h.floor,
		overflow:     h.overflow,
		totalCount:   h.totalCount,
		sampleCount:  make([]int64, len(h.sampleCount)),
	}
	copy(c.sampleCount, h.sampleCount)

	return c
}

// TotalCount returns the number of samples recorded, equal to the sum of all
// bucket counters.
func (h *Histogram) TotalCount() int64 {
	return h.totalCount
}

// OverflowCount returns how many samples were clamped into the top bucket.
// These samples are included in TotalCount and the top bucket counter.
func (h *Histogram) OverflowCount() int64 {
	return h.overflow
}

// Buckets returns the number of buckets, powersOf2 * 2^fractionBits.
func (h *Histogram) Buckets() int {
	return len(h.sampleCount)
}

// BucketCount returns the counter of one bucket, or 0 out of range.
func (h *Histogram) BucketCount(idx int) int64 {
	if idx < 0 || idx >= len(h.sampleCount) {
		return 0
	}

	return h.sampleCount[idx]
}

// BucketValue returns the representative (midpoint) value of a bucket, or 0
// out of range.
func (h *Histogram) BucketValue(idx int) float64 {
	if idx < 0 || idx >= len(h.sampleCount) {
		return 0
	}

	return bucketValue(idx, h.fractionBits, h.floor)
}

// BucketUpperBound returns the exclusive upper boundary of a bucket, or 0 out
// of range. The last bucket's bound is the histogram ceiling 2^powersOf2;
// clamped samples beyond it are reported via OverflowCount.
func (h *Histogram) BucketUpperBound(idx int) float64 {
	if idx < 0 || idx >= len(h.sampleCount) {
		return 0
	}

	return bucketUpperBound(idx, h.fractionBits, h.floor)
}

// PowersOf2 returns the octave count of the shape.
func (h *Histogram) PowersOf2() int {
	return h.powersOf2
}

// FractionBits returns the linear resolution bits of the shape.
func (h *Histogram) FractionBits() int {
	return h.fractionBits
}
