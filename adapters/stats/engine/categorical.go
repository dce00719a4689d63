package engine

import (
	"sort"

	"edascope/domain/dataset"
	"edascope/domain/eda"
)

// Impact groups a numeric target by the values of a categorical feature.
// Rows with a missing category are dropped; a category whose target values
// are all missing stays as an empty group. Groups are ascending by median,
// undefined medians last, ties by label. A group with fewer than two values
// has an undefined std and is marked Insufficient.
func (e *StatsEngine) Impact(table *dataset.Table, feature, target string) (*eda.GroupedStats, error) {
	featCol, err := labelColumn(table, feature)
	if err != nil {
		return nil, err
	}
	targetCol, err := numericColumn(table, target)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i := 0; i < featCol.Len(); i++ {
		if featCol.IsMissing(i) {
			continue
		}
		label := featCol.Label(i)
		values := groups[label]
		if !targetCol.IsMissing(i) {
			values = append(values, targetCol.Float(i))
		}
		groups[label] = values
	}

	result := &eda.GroupedStats{Feature: feature, Target: target, Groups: make([]eda.GroupStat, 0, len(groups))}
	for label, values := range groups {
		result.Groups = append(result.Groups, eda.GroupStat{
			Category:     label,
			Median:       eda.Float(median(values)),
			StdDev:       eda.Float(sampleStdDev(values)),
			Count:        len(values),
			Insufficient: len(values) < 2,
		})
	}
	sort.Slice(result.Groups, func(i, j int) bool {
		a, b := result.Groups[i], result.Groups[j]
		if a.Median.IsNaN() != b.Median.IsNaN() {
			return b.Median.IsNaN()
		}
		if !a.Median.IsNaN() && a.Median != b.Median {
			return a.Median < b.Median
		}
		return a.Category < b.Category
	})
	return result, nil
}

// Crosstab cross-tabulates a categorical feature against a categorical
// target. Each row is normalized to sum to 1. Rows and columns are
// sorted by label.
func (e *StatsEngine) Crosstab(table *dataset.Table, feature, target string) (*eda.ContingencyTable, error) {
	featCol, err := labelColumn(table, feature)
	if err != nil {
		return nil, err
	}
	targetCol, err := labelColumn(table, target)
	if err != nil {
		return nil, err
	}

	cells := make(map[[2]string]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for i := 0; i < featCol.Len(); i++ {
		if featCol.IsMissing(i) || targetCol.IsMissing(i) {
			continue
		}
		r, c := featCol.Label(i), targetCol.Label(i)
		cells[[2]string{r, c}]++
		rowSet[r] = struct{}{}
		colSet[c] = struct{}{}
	}

	ct := &eda.ContingencyTable{
		Feature: feature,
		Target:  target,
		Rows:    sortedKeys(rowSet),
		Columns: sortedKeys(colSet),
	}
	ct.Counts = make([][]int, len(ct.Rows))
	ct.Proportions = make([][]eda.Float, len(ct.Rows))
	for i, r := range ct.Rows {
		ct.Counts[i] = make([]int, len(ct.Columns))
		ct.Proportions[i] = make([]eda.Float, len(ct.Columns))
		total := 0
		for j, c := range ct.Columns {
			n := cells[[2]string{r, c}]
			ct.Counts[i][j] = n
			total += n
		}
		for j := range ct.Columns {
			ct.Proportions[i][j] = eda.Float(float64(ct.Counts[i][j]) / float64(total))
		}
	}
	ct.Association = association(ct.Counts)
	return ct, nil
}

// ClassDistribution counts the classes of a categorical target,
// descending by count with ties by label.
func (e *StatsEngine) ClassDistribution(table *dataset.Table, target string) ([]eda.ClassCount, error) {
	col, err := labelColumn(table, target)
	if err != nil {
		return nil, err
	}
	keys, counts, total := labelCounts(col.Labels())
	out := make([]eda.ClassCount, len(keys))
	for i, k := range keys {
		out[i] = eda.ClassCount{
			Class: k,
			Count: counts[k],
			Share: eda.Float(float64(counts[k]) / float64(total)),
		}
	}
	return out, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
