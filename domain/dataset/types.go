package dataset

import (
	"math"
	"time"

	"edascope/domain/core"
)

// ColumnKind is the declared storage kind of a column
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindBoolean     ColumnKind = "boolean"
	KindDatetime    ColumnKind = "datetime"
)

// IsNumeric reports whether values are stored as floats
func (k ColumnKind) IsNumeric() bool {
	return k == KindNumeric
}

// IsFeatureKind reports whether columns of this kind can act as features.
// Boolean and datetime columns are carried by the table but never analyzed as features.
func (k ColumnKind) IsFeatureKind() bool {
	return k == KindNumeric || k == KindCategorical
}

// Valid reports whether k is a known kind
func (k ColumnKind) Valid() bool {
	switch k {
	case KindNumeric, KindCategorical, KindBoolean, KindDatetime:
		return true
	}
	return false
}

// Column is one named, typed column. Numeric columns keep values as float64
// with NaN marking missing cells; every other kind keeps the string form with
// "" marking missing cells.
type Column struct {
	Name   string
	Kind   ColumnKind
	values []float64
	labels []string
}

// NewNumericColumn creates a numeric column; NaN marks a missing value
func NewNumericColumn(name string, values []float64) Column {
	v := make([]float64, len(values))
	copy(v, values)
	return Column{Name: name, Kind: KindNumeric, values: v}
}

// NewCategoricalColumn creates a categorical column; "" marks a missing value
func NewCategoricalColumn(name string, values []string) Column {
	return NewLabelColumn(name, KindCategorical, values)
}

// NewLabelColumn creates a non-numeric column of the given kind
func NewLabelColumn(name string, kind ColumnKind, values []string) Column {
	l := make([]string, len(values))
	copy(l, values)
	return Column{Name: name, Kind: kind, labels: l}
}

// Len returns the number of cells
func (c Column) Len() int {
	if c.Kind.IsNumeric() {
		return len(c.values)
	}
	return len(c.labels)
}

// IsMissing reports whether row i is missing
func (c Column) IsMissing(i int) bool {
	if c.Kind.IsNumeric() {
		return math.IsNaN(c.values[i])
	}
	return c.labels[i] == ""
}

// MissingCount returns the number of missing cells
func (c Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns row i of a numeric column (NaN for non-numeric columns)
func (c Column) Float(i int) float64 {
	if !c.Kind.IsNumeric() {
		return math.NaN()
	}
	return c.values[i]
}

// Label returns row i of a label column (empty for numeric columns)
func (c Column) Label(i int) string {
	if c.Kind.IsNumeric() {
		return ""
	}
	return c.labels[i]
}

// Floats returns a copy of a numeric column's values
func (c Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out
}

// Labels returns a copy of a label column's values
func (c Column) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// ColumnInfo describes a column without its data
type ColumnInfo struct {
	Name         string     `json:"name"`
	Kind         ColumnKind `json:"kind"`
	MissingCount int        `json:"missing_count"`
}

// DatasetInfo is the catalog record of a loaded table
type DatasetInfo struct {
	ID          core.DatasetID `json:"id"`
	Name        string         `json:"name"`
	Source      string         `json:"source"` // "upload", "file"
	RowCount    int            `json:"row_count"`
	ColumnCount int            `json:"column_count"`
	MissingRate float64        `json:"missing_rate"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Columns     []ColumnInfo   `json:"columns"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewDatasetInfo summarizes a table for the catalog
func NewDatasetInfo(t *Table, source string) *DatasetInfo {
	cells := t.RowCount() * t.ColumnCount()
	missingRate := 0.0
	if cells > 0 {
		missingRate = float64(t.MissingCount()) / float64(cells)
	}
	return &DatasetInfo{
		ID:          core.NewDatasetID(),
		Name:        t.Name,
		Source:      source,
		RowCount:    t.RowCount(),
		ColumnCount: t.ColumnCount(),
		MissingRate: missingRate,
		Fingerprint: t.Fingerprint(),
		Columns:     t.ColumnInfos(),
		CreatedAt:   time.Now(),
	}
}
