package histogram

import (
	"math"
	"strconv"
	"strings"
)

var (
	longFormatFractions  = []float64{0.5, 0.9, 0.97, 0.99, 0.997, 0.999, 0.9997, 0.9999}
	shortFormatFractions = []float64{0.5, 0.9, 0.97, 0.99}
)

const (
	longFormatHeader  = "50/90 97/99 99.7/99.9 99.97/99.99 - worst was "
	shortFormatHeader = "50/90 97/99 - worst was "
)

// LongMicrosFormat renders the standard percentile pairs 50/90, 97/99,
// 99.7/99.9 and 99.97/99.99 plus the observed worst on one line, converting
// native nanoseconds to microseconds. An optional converter replaces the
// nanosecond assumption for histograms recording other units, e.g. a tick
// source's ToMicros. The layout is a presentation contract; tooling parses it.
func (h *Histogram) LongMicrosFormat(toMicros ...func(float64) float64) string {
	return h.formatLine(longFormatHeader, longFormatFractions, converter(toMicros))
}

// MicrosFormat is the short variant of LongMicrosFormat: pairs 50/90 and
// 97/99 plus the observed worst.
func (h *Histogram) MicrosFormat(toMicros ...func(float64) float64) string {
	return h.formatLine(shortFormatHeader, shortFormatFractions, converter(toMicros))
}

func converter(toMicros []func(float64) float64) func(float64) float64 {
	if len(toMicros) > 0 && toMicros[0] != nil {
		return toMicros[0]
	}

	return func(ns float64) float64 { return ns / 1e3 }
}

func (h *Histogram) formatLine(header string, fractions []float64, toMicros func(float64) float64) string {
	var sb strings.Builder

	sb.WriteString(header)

	for i := 0; i < len(fractions); i += 2 {
		if i > 0 {
			sb.WriteString("  ")
		}

		lo, _ := h.Percentile(fractions[i])
		hi, _ := h.Percentile(fractions[i+1])

		sb.WriteString(formatValue(toMicros(lo)))
		sb.WriteString(" / ")
		sb.WriteString(formatValue(toMicros(hi)))
	}

	worst, _ := h.Percentile(1)

	sb.WriteString(" - ")
	sb.WriteString(formatValue(toMicros(worst)))

	return sb.String()
}

// formatValue rounds to two decimals, then coarsens: one decimal from 10,
// whole numbers from 100. Integral values keep a trailing .0 so columns stay
// recognisable in logs.
func formatValue(v float64) string {
	v2 := math.Round(v*100) / 100

	switch {
	case v2 >= 100:
		v2 = math.Round(v2)
	case v2 >= 10:
		v2 = math.Round(v2*10) / 10
	}

	s := strconv.FormatFloat(v2, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}
