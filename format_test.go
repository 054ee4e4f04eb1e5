package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLongMicrosFormatSingleSample(t *testing.T) {
	h := NewDefault()

	_, err := h.SampleNanos(100_000)
	require.NoError(t, err)

	assert.Equal(t,
		"50/90 97/99 99.7/99.9 99.97/99.99 - worst was 100.0 / 100.0  100.0 / 100.0  100.0 / 100.0  100.0 / 100.0 - 100.0",
		h.LongMicrosFormat())
}

func TestMicrosFormatSingleSample(t *testing.T) {
	h := NewDefault()

	_, err := h.SampleNanos(100_000)
	require.NoError(t, err)

	assert.Equal(t, "50/90 97/99 - worst was 100.0 / 100.0 - 100.0", h.MicrosFormat())
}

func TestLongMicrosFormatEmpty(t *testing.T) {
	h := NewDefault()

	assert.Equal(t,
		"50/90 97/99 99.7/99.9 99.97/99.99 - worst was 0.0 / 0.0  0.0 / 0.0  0.0 / 0.0  0.0 / 0.0 - 0.0",
		h.LongMicrosFormat())
}

func TestLongMicrosFormatWithConverter(t *testing.T) {
	h := NewDefault()

	// a 10 ticks per microsecond clock: one sample of 1000 ticks is 100us
	_, err := h.Sample(1000)
	require.NoError(t, err)

	got := h.LongMicrosFormat(func(ticks float64) float64 { return ticks / 10 })

	assert.Equal(t,
		"50/90 97/99 99.7/99.9 99.97/99.99 - worst was 100.0 / 100.0  100.0 / 100.0  100.0 / 100.0  100.0 / 100.0 - 100.0",
		got)
}

func TestFormatValueTiers(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{0.5, "0.5"},
		{1.23, "1.23"},
		{1.234, "1.23"},
		{9.87, "9.87"},
		{12.34, "12.3"},
		{45.67, "45.7"},
		{99.99, "100.0"},
		{100, "100.0"},
		{123.4, "123.0"},
		{234.5, "235.0"},
		{4_290_000, "4290000.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in), "value %v", tt.in)
	}
}
