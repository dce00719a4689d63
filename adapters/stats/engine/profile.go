package engine

import (
	"math"

	"edascope/domain/dataset"
	"edascope/domain/eda"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Profile summarizes a single column. Numeric columns get a histogram,
// quartiles and outlier bounds; every other kind gets a frequency table.
func (e *StatsEngine) Profile(table *dataset.Table, column string) (*eda.ColumnProfile, error) {
	col, err := lookup(table, column)
	if err != nil {
		return nil, err
	}

	missing := col.MissingCount()
	profile := &eda.ColumnProfile{
		Column:       column,
		Kind:         col.Kind,
		RowCount:     table.RowCount(),
		ColumnCount:  table.ColumnCount(),
		MissingCount: missing,
		ValidCount:   col.Len() - missing,
		Mean:         eda.NaN(),
		StdDev:       eda.NaN(),
		Skewness:     eda.NaN(),
		Kurtosis:     eda.NaN(),
	}

	if col.Kind.IsNumeric() {
		e.profileNumeric(profile, present(col.Floats()))
	} else {
		profileLabels(profile, col.Labels())
	}
	return profile, nil
}

func (e *StatsEngine) profileNumeric(p *eda.ColumnProfile, sorted []float64) {
	p.Histogram = e.histogram(sorted)
	if len(sorted) == 0 {
		nan := eda.NaN()
		p.Quartiles = &eda.Quartiles{Q1: nan, Median: nan, Q3: nan, IQR: nan}
		p.OutlierBounds = &eda.OutlierBounds{Lower: nan, Upper: nan}
		return
	}

	p.Mean = eda.Float(stat.Mean(sorted, nil))
	p.StdDev = eda.Float(sampleStdDev(sorted))
	if len(sorted) >= 3 && !isConstant(sorted) {
		p.Skewness = eda.Float(stat.Skew(sorted, nil))
		p.Kurtosis = eda.Float(stat.ExKurtosis(sorted, nil))
	}

	q := quartiles(sorted)
	b := e.bounds(q)
	p.Quartiles = &q
	p.OutlierBounds = &b
	for _, v := range sorted {
		if outside(v, b) {
			p.OutlierCount++
		}
	}
}

// histogram bins sorted values into equal-width bins over [min, max].
// A constant column degenerates to one bin holding every value.
func (e *StatsEngine) histogram(sorted []float64) *eda.Histogram {
	if len(sorted) == 0 {
		return &eda.Histogram{Bins: []eda.Bin{}, Min: eda.NaN(), Max: eda.NaN()}
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	h := &eda.Histogram{Min: eda.Float(lo), Max: eda.Float(hi)}
	if lo == hi {
		h.Bins = []eda.Bin{{Lower: eda.Float(lo), Upper: eda.Float(hi), Count: len(sorted)}}
		return h
	}

	bins := e.cfg.HistogramBins
	dividers := binEdges(lo, hi, bins)
	// stat.Histogram uses half-open bins; nudge the last edge so max lands inside.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	h.Bins = make([]eda.Bin, bins)
	for i := range h.Bins {
		upper := dividers[i+1]
		if i == bins-1 {
			upper = hi
		}
		h.Bins[i] = eda.Bin{Lower: eda.Float(dividers[i]), Upper: eda.Float(upper), Count: int(counts[i])}
	}
	return h
}

// binEdges returns bins+1 equal-width edges from lo to hi. When hi-lo
// overflows float64 the edges are interpolated without forming the width.
func binEdges(lo, hi float64, bins int) []float64 {
	edges := make([]float64, bins+1)
	if !math.IsInf(hi-lo, 0) {
		return floats.Span(edges, lo, hi)
	}
	for i := range edges {
		t := float64(i) / float64(bins)
		edges[i] = lo*(1-t) + hi*t
	}
	edges[0], edges[bins] = lo, hi
	return edges
}

func profileLabels(p *eda.ColumnProfile, labels []string) {
	keys, counts, total := labelCounts(labels)
	p.Distinct = len(keys)
	p.Frequencies = make([]eda.Frequency, len(keys))
	for i, k := range keys {
		p.Frequencies[i] = eda.Frequency{
			Value: k,
			Count: counts[k],
			Share: eda.Float(float64(counts[k]) / float64(total)),
		}
	}
}
