package engine

import (
	"math"
	"sort"

	"edascope/domain/core"
	"edascope/domain/eda"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// perfectTolerance snaps coefficients within rounding of ±1 to exactly ±1
const perfectTolerance = 1e-12

// pairwiseComplete keeps rows where both x and y are present
func pairwiseComplete(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// points zips pairwise-complete rows into scatter points
func points(xs, ys []float64) []eda.Point {
	pts := make([]eda.Point, len(xs))
	for i := range xs {
		pts[i] = eda.Point{X: xs[i], Y: ys[i]}
	}
	return pts
}

// isConstant reports whether a non-empty slice holds a single distinct value
func isConstant(x []float64) bool {
	return len(x) > 0 && floats.Min(x) == floats.Max(x)
}

// pearson computes the Pearson coefficient over pairwise-complete rows.
// Fewer than two rows or a constant side yields NaN with ErrUndefinedStatistic.
func pearson(x, y []float64) (float64, int, error) {
	xs, ys := pairwiseComplete(x, y)
	n := len(xs)
	if n < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN(), n, core.ErrUndefinedStatistic
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return r, n, core.ErrUndefinedStatistic
	}
	switch {
	case r > 1-perfectTolerance:
		r = 1
	case r < -1+perfectTolerance:
		r = -1
	}
	return r, n, nil
}

// present returns the non-missing values in ascending order
func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// quantile interpolates linearly between the order statistics of a sorted
// slice: position p·(n-1), as box-plot tooling in dataframe libraries does.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// median of an unsorted slice; NaN when empty
func median(x []float64) float64 {
	m, err := stats.Median(stats.Float64Data(x))
	if err != nil {
		return math.NaN()
	}
	return m
}

// sampleStdDev is the n-1 standard deviation; NaN below two observations
func sampleStdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// quartiles computes Q1, median and Q3 of a sorted slice
func quartiles(sorted []float64) eda.Quartiles {
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	return eda.Quartiles{
		Q1:     eda.Float(q1),
		Median: eda.Float(median(sorted)),
		Q3:     eda.Float(q3),
		IQR:    eda.Float(q3 - q1),
	}
}

// bounds returns the outlier fences around the quartiles
func (e *StatsEngine) bounds(q eda.Quartiles) eda.OutlierBounds {
	k := e.cfg.WhiskerFactor
	return eda.OutlierBounds{
		Lower: q.Q1 - eda.Float(k)*q.IQR,
		Upper: q.Q3 + eda.Float(k)*q.IQR,
	}
}

func outside(v float64, b eda.OutlierBounds) bool {
	return v < float64(b.Lower) || v > float64(b.Upper)
}

// labelCounts counts non-missing labels and returns them descending by
// count, ties broken by label.
func labelCounts(labels []string) ([]string, map[string]int, int) {
	counts := make(map[string]int)
	total := 0
	for _, l := range labels {
		if l == "" {
			continue
		}
		counts[l]++
		total++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys, counts, total
}
