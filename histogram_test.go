package histogram

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/bsv-blockchain/go-histogram/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ NanoSampler = (*Histogram)(nil)
	_ NanoSampler = (*AtomicHistogram)(nil)
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name         string
		powersOf2    int
		fractionBits int
		wantErr      bool
	}{
		{"zero powers", 0, 7, true},
		{"negative powers", -1, 7, true},
		{"powers too large", 63, 7, true},
		{"negative fraction bits", 32, -1, true},
		{"fraction bits too large", 32, 21, true},
		{"minimal", 1, 0, false},
		{"top powers", 62, 0, false},
		{"top fraction bits", 1, 20, false},
		{"default shape", 32, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.powersOf2, tt.fractionBits)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
				assert.Nil(t, h)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.powersOf2<<tt.fractionBits, h.Buckets())
			assert.Equal(t, tt.powersOf2, h.PowersOf2())
			assert.Equal(t, tt.fractionBits, h.FractionBits())
		})
	}
}

func TestNewDefault(t *testing.T) {
	h := NewDefault()

	assert.Equal(t, 32, h.PowersOf2())
	assert.Equal(t, 7, h.FractionBits())
	assert.Equal(t, 32<<7, h.Buckets())
	assert.Equal(t, int64(0), h.TotalCount())
}

func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() { MustNew(7, 5) })
	assert.Panics(t, func() { MustNew(0, 5) })
}

// Every octave i splits into four sub-buckets at fractionBits 2, so sampling
// base*{1, 1.25, 1.5, 1.75} must land in indices 4i+0..4i+3 exactly.
func TestSampleRange(t *testing.T) {
	h := MustNew(40, 2)

	base := 1.0
	for i := 0; i < 40; i++ {
		idx, err := h.Sample(base)
		require.NoError(t, err)
		assert.Equal(t, i*4+0, idx)

		idx, err = h.Sample(base * 1.25)
		require.NoError(t, err)
		assert.Equal(t, i*4+1, idx)

		idx, err = h.Sample(base * 1.5)
		require.NoError(t, err)
		assert.Equal(t, i*4+2, idx)

		idx, err = h.Sample(base * 1.75)
		require.NoError(t, err)
		assert.Equal(t, i*4+3, idx)

		base *= 2
	}

	assert.Equal(t, int64(160), h.TotalCount())
	assert.Equal(t, int64(0), h.OverflowCount())
}

func TestSampleBelowOne(t *testing.T) {
	h := MustNew(7, 5)

	for _, v := range []float64{0, 0.001, 0.25, 0.5, 0.999999} {
		idx, err := h.Sample(v)
		require.NoError(t, err)
		assert.Equal(t, 0, idx, "value %v", v)
	}

	assert.Equal(t, int64(5), h.BucketCount(0))
	assert.Equal(t, int64(0), h.OverflowCount())
}

func TestSampleOverflow(t *testing.T) {
	h := MustNew(7, 5) // ceiling 2^7 = 128

	top := h.Buckets() - 1

	idx, err := h.Sample(127.9)
	require.NoError(t, err)
	assert.Equal(t, top, idx)
	assert.Equal(t, int64(0), h.OverflowCount())

	for _, v := range []float64{128, 1000, 1e12, math.Inf(1)} {
		idx, err = h.Sample(v)
		require.NoError(t, err)
		assert.Equal(t, top, idx, "value %v", v)
	}

	assert.Equal(t, int64(4), h.OverflowCount())
	assert.Equal(t, int64(5), h.TotalCount())
	assert.Equal(t, int64(5), h.BucketCount(top))
}

func TestSampleRejectsInvalid(t *testing.T) {
	h := NewDefault()

	for _, v := range []float64{-1, -0.0001, math.Inf(-1), math.NaN()} {
		_, err := h.Sample(v)
		require.Error(t, err, "value %v", v)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	}

	_, err := h.SampleNanos(-5)
	require.Error(t, err)

	assert.Equal(t, int64(0), h.TotalCount())
}

func TestSampleNanosAndDuration(t *testing.T) {
	h := NewDefault()

	idx1, err := h.SampleNanos(100_000)
	require.NoError(t, err)

	idx2, err := h.SampleDuration(100 * time.Microsecond)
	require.NoError(t, err)

	assert.Equal(t, idx1, idx2)
	assert.Equal(t, int64(2), h.BucketCount(idx1))
}

func TestSampleTicks(t *testing.T) {
	h := NewDefault()

	// 10 ticks per nanosecond
	idx, err := h.SampleTicks(1_000_000, func(ticks int64) float64 { return float64(ticks) / 10 })
	require.NoError(t, err)

	want, err := h.BucketIndex(100_000)
	require.NoError(t, err)
	assert.Equal(t, want, idx)

	_, err = h.SampleTicks(42, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestBucketIndexMonotonicity(t *testing.T) {
	h := MustNew(20, 4)

	prev := 0
	v := 0.0

	for i := 0; i < 20_000; i++ {
		idx, err := h.BucketIndex(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, idx, prev, "value %v", v)

		prev = idx
		v += 0.37 + v/64
	}
}

func TestCumulativeCountConservation(t *testing.T) {
	h := MustNew(16, 6)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50_000; i++ {
		_, err := h.Sample(rng.Float64() * 100_000)
		require.NoError(t, err)
	}

	var sum int64
	for i := 0; i < h.Buckets(); i++ {
		sum += h.BucketCount(i)
	}

	assert.Equal(t, int64(50_000), h.TotalCount())
	assert.Equal(t, h.TotalCount(), sum)
}

func TestBucketBounds(t *testing.T) {
	h := MustNew(7, 5)

	idx, err := h.BucketIndex(100)
	require.NoError(t, err)

	// bucket [100, 102): midpoint 101
	assert.Equal(t, 101.0, h.BucketValue(idx))
	assert.Equal(t, 102.0, h.BucketUpperBound(idx))

	// bucket 0 is [1, 1+1/32)
	assert.Equal(t, 1.015625, h.BucketValue(0))
	assert.Equal(t, 1.03125, h.BucketUpperBound(0))

	// the last bucket ends at the ceiling
	assert.Equal(t, 128.0, h.BucketUpperBound(h.Buckets()-1))

	assert.Equal(t, 0.0, h.BucketValue(-1))
	assert.Equal(t, 0.0, h.BucketUpperBound(h.Buckets()))
	assert.Equal(t, int64(0), h.BucketCount(-1))
}

func TestResetIdempotence(t *testing.T) {
	h := MustNew(7, 5)

	record := func() {
		for i := 1; i <= 100; i++ {
			_, err := h.Sample(float64(i))
			require.NoError(t, err)
		}
	}

	record()

	firstCounts := make([]int64, h.Buckets())
	for i := range firstCounts {
		firstCounts[i] = h.BucketCount(i)
	}

	firstP90, err := h.Percentile(0.9)
	require.NoError(t, err)
	firstFormat := h.LongMicrosFormat()

	h.Reset()

	assert.Equal(t, int64(0), h.TotalCount())
	assert.Equal(t, int64(0), h.OverflowCount())

	empty, err := h.Percentile(0.9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty)

	record()

	for i := range firstCounts {
		assert.Equal(t, firstCounts[i], h.BucketCount(i), "bucket %d", i)
	}

	secondP90, err := h.Percentile(0.9)
	require.NoError(t, err)
	assert.Equal(t, firstP90, secondP90)
	assert.Equal(t, firstFormat, h.LongMicrosFormat())
}

func TestMerge(t *testing.T) {
	combined := MustNew(7, 5)
	evens := MustNew(7, 5)
	odds := MustNew(7, 5)

	for i := 1; i <= 100; i++ {
		_, err := combined.Sample(float64(i))
		require.NoError(t, err)

		if i%2 == 0 {
			_, err = evens.Sample(float64(i))
		} else {
			_, err = odds.Sample(float64(i))
		}

		require.NoError(t, err)
	}

	require.NoError(t, evens.Merge(odds))

	assert.Equal(t, combined.TotalCount(), evens.TotalCount())

	for i := 0; i < combined.Buckets(); i++ {
		assert.Equal(t, combined.BucketCount(i), evens.BucketCount(i), "bucket %d", i)
	}

	wantP99, err := combined.Percentile(0.99)
	require.NoError(t, err)

	gotP99, err := evens.Percentile(0.99)
	require.NoError(t, err)
	assert.Equal(t, wantP99, gotP99)
}

func TestMergeShapeMismatch(t *testing.T) {
	h := MustNew(7, 5)

	err := h.Merge(MustNew(7, 4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	err = h.Merge(MustNew(8, 5))
	require.Error(t, err)

	err = h.Merge(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestMergeOverflowCarries(t *testing.T) {
	a := MustNew(7, 5)
	b := MustNew(7, 5)

	_, err := a.Sample(1e9)
	require.NoError(t, err)
	_, err = b.Sample(2e9)
	require.NoError(t, err)

	require.NoError(t, a.Merge(b))

	assert.Equal(t, int64(2), a.OverflowCount())
	assert.Equal(t, int64(2), a.TotalCount())
}

func TestSnapshotIndependence(t *testing.T) {
	h := NewDefault()

	_, err := h.Sample(100)
	require.NoError(t, err)

	snap := h.Snapshot()

	_, err = h.Sample(200)
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.TotalCount())
	assert.Equal(t, int64(2), h.TotalCount())

	p, err := snap.Percentile(1)
	require.NoError(t, err)
	assert.InDelta(t, 100, p, 1)
}
