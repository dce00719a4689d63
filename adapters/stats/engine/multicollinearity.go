package engine

import (
	"math"
	"sort"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"
)

// FindRedundantPairs reports numeric feature pairs whose absolute
// correlation lies strictly between threshold and 1.
func (e *StatsEngine) FindRedundantPairs(table *dataset.Table, features []string, threshold float64) (*eda.RedundancyReport, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if len(features) < 2 {
		return notApplicable(threshold), nil
	}
	m, err := e.CorrelationMatrix(table, features)
	if err != nil {
		return nil, err
	}
	return e.RedundantPairs(m, threshold)
}

// RedundantPairs scans an already computed matrix. Each unordered pair is
// reported once, A before B in feature order, descending by |r|.
// Perfectly correlated pairs (|r| = 1) are identities, not redundancy.
func (e *StatsEngine) RedundantPairs(m *eda.CorrelationMatrix, threshold float64) (*eda.RedundancyReport, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if m.Size() < 2 {
		return notApplicable(threshold), nil
	}

	report := &eda.RedundancyReport{Threshold: threshold, Applicable: true, Pairs: []eda.RedundantPair{}}
	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < m.Size(); j++ {
			r := m.AtIndex(i, j)
			mag := math.Abs(r)
			if !(mag > threshold && mag < 1.0) {
				continue
			}
			report.Pairs = append(report.Pairs, eda.RedundantPair{
				A:           m.Features[i],
				B:           m.Features[j],
				Coefficient: eda.Float(r),
				Magnitude:   eda.Float(mag),
			})
		}
	}
	sort.SliceStable(report.Pairs, func(i, j int) bool {
		return report.Pairs[i].Magnitude > report.Pairs[j].Magnitude
	})
	return report, nil
}

// PairCorrelation checks a single pair of numeric features
func (e *StatsEngine) PairCorrelation(table *dataset.Table, a, b string) (*eda.PairCorrelation, error) {
	if a == b {
		return nil, core.NewParameterError("b", "must differ from a")
	}
	colA, err := numericColumn(table, a)
	if err != nil {
		return nil, err
	}
	colB, err := numericColumn(table, b)
	if err != nil {
		return nil, err
	}

	x, y := colA.Floats(), colB.Floats()
	r, _, err := pearson(x, y)
	rho, _ := spearman(x, y)
	xs, ys := pairwiseComplete(x, y)
	return &eda.PairCorrelation{
		A:           a,
		B:           b,
		Coefficient: eda.Float(r),
		Spearman:    eda.Float(rho),
		Points:      points(xs, ys),
		Err:         eda.Condition{Err: err},
	}, nil
}

func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold >= 1 {
		return core.NewParameterError("threshold", "must be in [0, 1)")
	}
	return nil
}

func notApplicable(threshold float64) *eda.RedundancyReport {
	return &eda.RedundancyReport{
		Threshold:  threshold,
		Applicable: false,
		Reason:     eda.Condition{Err: core.ErrInsufficientFeatures},
		Pairs:      []eda.RedundantPair{},
	}
}
