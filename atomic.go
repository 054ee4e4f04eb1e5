package histogram

import (
	"math"
	"time"

	"github.com/bsv-blockchain/go-histogram/errors"
	"go.uber.org/atomic"
)

// AtomicHistogram is the multi-writer variant: same shape and bucketing as
// Histogram with counters in atomic storage, so concurrent Sample calls need
// no external synchronization. Queries go through Snapshot, which yields a
// plain Histogram with the full read API and internally consistent totals.
type AtomicHistogram struct {
	powersOf2    int
	fractionBits int
	floor        int64
	overflow     atomic.Int64
	totalCount   atomic.Int64
	sampleCount  []atomic.Int64
}

// NewAtomic creates a multi-writer histogram with the same shape rules as New.
func NewAtomic(powersOf2, fractionBits int) (*AtomicHistogram, error) {
	if powersOf2 < 1 || powersOf2 > maxPowersOf2 {
		return nil, errors.NewInvalidArgumentError("powersOf2 must be in [1, %d], got %d", maxPowersOf2, powersOf2)
	}

	if fractionBits < 0 || fractionBits > maxFractionBits {
		return nil, errors.NewInvalidArgumentError("fractionBits must be in [0, %d], got %d", maxFractionBits, fractionBits)
	}

	return &AtomicHistogram{
		powersOf2:    powersOf2,
		fractionBits: fractionBits,
		floor:        int64(1023) << fractionBits,
		sampleCount:  make([]atomic.Int64, powersOf2<<fractionBits),
	}, nil
}

// NewAtomicDefault creates a multi-writer histogram with the default shape.
func NewAtomicDefault() *AtomicHistogram {
	h, _ := NewAtomic(defaultPowersOf2, defaultFractionBits)
	return h
}

// Sample records one value and returns the bucket index it landed in.
func (h *AtomicHistogram) Sample(v float64) (int, error) {
	if v < 0 || math.IsNaN(v) {
		return 0, errors.NewInvalidArgumentError("sample value must be non-negative, got %v", v)
	}

	idx, overflowed := indexFor(v, h.fractionBits, h.floor, len(h.sampleCount))
	if overflowed {
		h.overflow.Inc()
	}

	h.sampleCount[idx].Inc()
	h.totalCount.Inc()

	return idx, nil
}

// SampleNanos records an elapsed time in nanoseconds.
func (h *AtomicHistogram) SampleNanos(ns int64) (int, error) {
	if ns < 0 {
		return 0, errors.NewInvalidArgumentError("sample must be non-negative, got %dns", ns)
	}

	return h.Sample(float64(ns))
}

// SampleDuration records an elapsed time.
func (h *AtomicHistogram) SampleDuration(d time.Duration) (int, error) {
	return h.SampleNanos(d.Nanoseconds())
}

// Snapshot copies the counters into a plain Histogram for querying. The copy
// is not a single atomic cut across all buckets: samples recorded while the
// copy runs may or may not be included. The snapshot's totalCount is summed
// from the copied counters, so its own counters-equal-total invariant always
// holds.
func (h *AtomicHistogram) Snapshot() *Histogram {
	snap, _ := New(h.powersOf2, h.fractionBits)

	var total int64

	for i := range h.sampleCount {
		c := h.sampleCount[i].Load()
		snap.sampleCount[i] = c
		total += c
	}

	snap.totalCount = total
	snap.overflow = h.overflow.Load()

	return snap
}

// Reset zeroes all counters. Concurrent writers may interleave with the
// zeroing; reset between measurement windows with writers quiesced.
func (h *AtomicHistogram) Reset() {
	for i := range h.sampleCount {
		h.sampleCount[i].Store(0)
	}

	h.totalCount.Store(0)
	h.overflow.Store(0)
}

// TotalCount returns the number of samples recorded.
func (h *AtomicHistogram) TotalCount() int64 {
	return h.totalCount.Load()
}

// OverflowCount returns how many samples were clamped into the top bucket.
func (h *AtomicHistogram) OverflowCount() int64 {
	return h.overflow.Load()
}

// Buckets returns the number of buckets.
func (h *AtomicHistogram) Buckets() int {
	return len(h.sampleCount)
}

// PowersOf2 returns the octave count of the shape.
func (h *AtomicHistogram) PowersOf2() int {
	return h.powersOf2
}

// FractionBits returns the linear resolution bits of the shape.
func (h *AtomicHistogram) FractionBits() int {
	return h.fractionBits
}
