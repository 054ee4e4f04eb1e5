package histogram

import (
	"math"

	"github.com/bsv-blockchain/go-histogram/errors"
)

// minTailSupport is the number of samples a tail must be expected to contain
// before PercentilesFor reports it. Reporting a 99.999th percentile from a
// hundred samples would describe a single unreplicated outlier.
const minTailSupport = 100

// Percentile returns the value bounding the given fraction of recorded
// samples, at bucket resolution. The scan runs from the top bucket down,
// consuming totalCount*(1-fraction) samples; the bucket that crosses zero is
// reported by its midpoint, the worst-case half sub-bucket away from any
// sample it holds. A fraction deep enough that rounding consumes every sample
// reports the lowest occupied bucket. An empty histogram returns 0.
func (h *Histogram) Percentile(fraction float64) (float64, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return 0, errors.NewInvalidArgumentError("fraction must be in [0, 1], got %v", fraction)
	}

	if h.totalCount == 0 {
		return 0, nil
	}

	need := int64(float64(h.totalCount)*(1-fraction) + 0.5)
	lowest := 0

	for i := len(h.sampleCount) - 1; i >= 0; i-- {
		c := h.sampleCount[i]
		if c == 0 {
			continue
		}

		need -= c
		if need < 0 {
			return bucketValue(i, h.fractionBits, h.floor), nil
		}

		lowest = i
	}

	return bucketValue(lowest, h.fractionBits, h.floor), nil
}

// PercentageLessThan returns the percentage of recorded samples at or below
// v, in [0, 100]. The bucket containing v counts in full, so the result is
// accurate to bucket resolution: callers should compare with a tolerance
// proportional to the sub-bucket width at v's magnitude. An empty histogram
// returns 0.
func (h *Histogram) PercentageLessThan(v float64) (float64, error) {
	if math.IsNaN(v) || v < 0 {
		return 0, errors.NewInvalidArgumentError("value must be non-negative, got %v", v)
	}

	if h.totalCount == 0 {
		return 0, nil
	}

	idx, _ := indexFor(v, h.fractionBits, h.floor, len(h.sampleCount))

	var cumulative int64
	for i := 0; i <= idx; i++ {
		cumulative += h.sampleCount[i]
	}

	return 100 * float64(cumulative) / float64(h.totalCount), nil
}

// PercentilesFor returns the ordered tail fractions worth reporting for a
// given sample count: 0.5 and 0.9, then the deepening pairs 1-3*10^-n and
// 1-10^-n (0.99, 0.997, 0.999, 0.9997, ...) while the tail beyond each
// fraction is still expected to hold at least minTailSupport samples, and
// finally exactly 1.0 for the observed worst.
func PercentilesFor(count int64) []float64 {
	fractions := []float64{0.5, 0.9}

	for x := int64(100); ; x *= 10 {
		if x > 100 {
			q := float64(x-3) / float64(x)
			if float64(count)*(1-q) < minTailSupport {
				break
			}

			fractions = append(fractions, q)
		}

		q := float64(x-1) / float64(x)
		if float64(count)*(1-q) < minTailSupport {
			break
		}

		fractions = append(fractions, q)
	}

	return append(fractions, 1.0)
}
