package engine

import (
	"math"
	"sort"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"

	"gonum.org/v1/gonum/mat"
)

// TopKCorrelated ranks numeric features by Pearson correlation with the
// target and returns at most k of them.
//
// Ranking is by descending signed coefficient, so a strong negative
// correlation ranks below a weak positive one. Undefined coefficients rank
// last. Ties keep feature order.
func (e *StatsEngine) TopKCorrelated(table *dataset.Table, features []string, target string, k int) ([]eda.CorrelationEntry, error) {
	if k < 1 {
		return nil, core.NewParameterError("k", "must be at least 1")
	}
	targetCol, err := numericColumn(table, target)
	if err != nil {
		return nil, err
	}
	columns, err := numericColumns(table, features)
	if err != nil {
		return nil, err
	}

	y := targetCol.Floats()
	entries := make([]eda.CorrelationEntry, len(features))
	for i, name := range features {
		r, n, err := pearson(columns[i], y)
		entries[i] = eda.CorrelationEntry{
			Feature:     name,
			Coefficient: eda.Float(r),
			N:           n,
			Err:         eda.Condition{Err: err},
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := float64(entries[i].Coefficient), float64(entries[j].Coefficient)
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a) && math.IsNaN(b)
		}
		return a > b
	})

	if k < len(entries) {
		entries = entries[:k]
	}
	return entries, nil
}

// CorrelationMatrix computes the symmetric Pearson matrix over features.
// The diagonal is 1 for non-constant columns and NaN otherwise. No features
// yields an empty matrix.
func (e *StatsEngine) CorrelationMatrix(table *dataset.Table, features []string) (*eda.CorrelationMatrix, error) {
	columns, err := numericColumns(table, features)
	if err != nil {
		return nil, err
	}

	n := len(features)
	if n == 0 {
		return eda.NewCorrelationMatrix([]string{}, nil), nil
	}
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r, _, _ := pearson(columns[i], columns[j])
			m.SetSym(i, j, r)
		}
	}

	names := make([]string, n)
	copy(names, features)
	return eda.NewCorrelationMatrix(names, m), nil
}
