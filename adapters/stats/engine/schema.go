package engine

import (
	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"
)

// Classify determines the target kind and partitions the remaining columns
// into numeric and categorical features, in original column order.
// Boolean and datetime columns belong to neither set. A non-numeric target
// of any kind is categorical and analyzed through its labels.
func (e *StatsEngine) Classify(table *dataset.Table, target string) (eda.Schema, error) {
	targetCol, ok := table.Column(target)
	if !ok {
		return eda.Schema{}, core.NewInvalidTargetError(target)
	}

	schema := eda.Schema{
		Target:              target,
		TargetKind:          eda.TargetCategorical,
		NumericFeatures:     []string{},
		CategoricalFeatures: []string{},
	}
	if targetCol.Kind.IsNumeric() {
		schema.TargetKind = eda.TargetNumeric
	}

	for _, col := range table.Columns() {
		if col.Name == target {
			continue
		}
		switch col.Kind {
		case dataset.KindNumeric:
			schema.NumericFeatures = append(schema.NumericFeatures, col.Name)
		case dataset.KindCategorical:
			schema.CategoricalFeatures = append(schema.CategoricalFeatures, col.Name)
		default:
			schema.Excluded = append(schema.Excluded, col.Name)
		}
	}
	return schema, nil
}
