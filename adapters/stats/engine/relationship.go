package engine

import (
	"math"
	"sort"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"

	"gonum.org/v1/gonum/stat"
)

// Relate describes how a numeric feature varies with the target.
// For a numeric target it returns the scatter points and a least-squares
// trend; for a categorical target it returns box statistics per class.
func (e *StatsEngine) Relate(table *dataset.Table, feature, target string, kind eda.TargetKind) (*eda.Relationship, error) {
	featCol, err := numericColumn(table, feature)
	if err != nil {
		return nil, err
	}

	rel := &eda.Relationship{Feature: feature, Target: target, TargetKind: kind}
	switch kind {
	case eda.TargetNumeric:
		targetCol, err := numericColumn(table, target)
		if err != nil {
			return nil, err
		}
		xs, ys := pairwiseComplete(featCol.Floats(), targetCol.Floats())
		rel.Points = points(xs, ys)
		rel.Trend, err = trend(xs, ys)
		rel.TrendErr = eda.Condition{Err: err}
	case eda.TargetCategorical:
		targetCol, err := labelColumn(table, target)
		if err != nil {
			return nil, err
		}
		rel.Groups = e.groupBoxes(featCol, targetCol)
	default:
		return nil, core.NewParameterError("target_kind", string(kind))
	}
	return rel, nil
}

// trend fits y = a + b·x. A constant or too-short x leaves the slope undefined.
func trend(xs, ys []float64) (*eda.TrendLine, error) {
	if len(xs) < 2 || isConstant(xs) {
		return nil, core.ErrUndefinedStatistic
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := math.NaN()
	if !isConstant(ys) {
		r2 = stat.RSquared(xs, ys, nil, alpha, beta)
	}
	return &eda.TrendLine{
		Slope:     eda.Float(beta),
		Intercept: eda.Float(alpha),
		RSquared:  eda.Float(r2),
	}, nil
}

// groupBoxes splits the feature by target class, classes ordered by label
func (e *StatsEngine) groupBoxes(feat, target dataset.Column) []eda.BoxStats {
	groups := make(map[string][]float64)
	for i := 0; i < target.Len(); i++ {
		class := target.Label(i)
		if class == "" {
			continue
		}
		if _, ok := groups[class]; !ok {
			groups[class] = []float64{}
		}
		if !feat.IsMissing(i) {
			groups[class] = append(groups[class], feat.Float(i))
		}
	}

	classes := make([]string, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	boxes := make([]eda.BoxStats, len(classes))
	for i, c := range classes {
		boxes[i] = e.box(c, groups[c])
	}
	return boxes
}

// box computes box-plot statistics; whiskers reach the most extreme values
// inside the outlier fences.
func (e *StatsEngine) box(class string, values []float64) eda.BoxStats {
	sort.Float64s(values)
	b := eda.BoxStats{Class: class, Count: len(values), Outliers: []float64{}}
	if len(values) == 0 {
		nan := eda.NaN()
		b.Min, b.Q1, b.Median, b.Q3, b.Max = nan, nan, nan, nan, nan
		b.LowerWhisker, b.UpperWhisker = nan, nan
		return b
	}

	q := quartiles(values)
	fences := e.bounds(q)
	b.Min = eda.Float(values[0])
	b.Max = eda.Float(values[len(values)-1])
	b.Q1, b.Median, b.Q3 = q.Q1, q.Median, q.Q3

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if outside(v, fences) {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	b.LowerWhisker = eda.Float(lo)
	b.UpperWhisker = eda.Float(hi)
	return b
}
