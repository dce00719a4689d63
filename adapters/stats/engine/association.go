package engine

import (
	"math"
	"sort"

	"edascope/domain/eda"

	"gonum.org/v1/gonum/stat/distuv"
)

// ranks converts values to 1-based ranks; ties share their average rank
func ranks(data []float64) []float64 {
	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, len(data))
	for i, v := range data {
		pairs[i] = pair{value: v, index: i}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	out := make([]float64, len(data))
	for i := 0; i < len(pairs); {
		j := i + 1
		for j < len(pairs) && pairs[j].value == pairs[i].value {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			out[pairs[k].index] = avg
		}
		i = j
	}
	return out
}

// spearman is the Pearson coefficient of the ranks of the pairwise-complete rows
func spearman(x, y []float64) (float64, error) {
	xs, ys := pairwiseComplete(x, y)
	r, _, err := pearson(ranks(xs), ranks(ys))
	return r, err
}

// association runs the chi-square test of independence on a count table
func association(counts [][]int) eda.Association {
	undefined := eda.Association{ChiSquare: eda.NaN(), PValue: eda.NaN(), CramersV: eda.NaN()}
	rows := len(counts)
	if rows < 2 || len(counts[0]) < 2 {
		return undefined
	}
	cols := len(counts[0])

	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	total := 0
	for i := range counts {
		for j, n := range counts[i] {
			rowTotals[i] += n
			colTotals[j] += n
			total += n
		}
	}
	if total == 0 {
		return undefined
	}

	chi := 0.0
	for i := range counts {
		for j, n := range counts[i] {
			expected := float64(rowTotals[i]*colTotals[j]) / float64(total)
			if expected > 0 {
				d := float64(n) - expected
				chi += d * d / expected
			}
		}
	}

	df := (rows - 1) * (cols - 1)
	minDim := math.Min(float64(rows-1), float64(cols-1))
	return eda.Association{
		ChiSquare:        eda.Float(chi),
		DegreesOfFreedom: df,
		PValue:           eda.Float(distuv.ChiSquared{K: float64(df)}.Survival(chi)),
		CramersV:         eda.Float(math.Sqrt(chi / (float64(total) * minDim))),
	}
}
