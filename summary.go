package histogram

// Quantile is one resolved percentile row of a Report.
type Quantile struct {
	Fraction float64 `json:"fraction" csv:"fraction"`
	Value    float64 `json:"value" csv:"value"`
}

// Report is a structured snapshot of a histogram's distribution, sized to the
// data: the quantile rows follow PercentilesFor, so small sample sets do not
// pretend to know their deep tails.
type Report struct {
	PowersOf2    int        `json:"powersOf2"`
	FractionBits int        `json:"fractionBits"`
	TotalCount   int64      `json:"totalCount"`
	Overflow     int64      `json:"overflow"`
	Quantiles    []Quantile `json:"quantiles"`
}

// Summary resolves the adaptive percentile list against the recorded data.
// An empty histogram yields no quantile rows.
func (h *Histogram) Summary() Report {
	r := Report{
		PowersOf2:    h.powersOf2,
		FractionBits: h.fractionBits,
		TotalCount:   h.totalCount,
		Overflow:     h.overflow,
		Quantiles:    []Quantile{},
	}

	if h.totalCount == 0 {
		return r
	}

	fractions := PercentilesFor(h.totalCount)
	r.Quantiles = make([]Quantile, 0, len(fractions))

	for _, f := range fractions {
		v, _ := h.Percentile(f)
		r.Quantiles = append(r.Quantiles, Quantile{Fraction: f, Value: v})
	}

	return r
}
