package eda

import (
	"encoding/json"
	"math"

	"edascope/domain/dataset"

	"gonum.org/v1/gonum/mat"
)

// ============================================================================
// PRIMITIVES
// ============================================================================

// Float is a float64 that marshals NaN and ±Inf as JSON null.
// Undefined statistics are NaN in memory and null on the wire.
type Float float64

// NaN returns an undefined Float
func NaN() Float {
	return Float(math.NaN())
}

// IsNaN reports whether the value is undefined
func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler; null decodes to NaN.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NaN()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Condition carries a recoverable analysis condition (one of the core
// sentinels) inside a result. The zero value means no condition.
type Condition struct {
	Err error
}

// Is reports whether a condition is set
func (c Condition) Is() bool {
	return c.Err != nil
}

// MarshalJSON emits the error text, or null when no condition is set
func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Err == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Err.Error())
}

// ============================================================================
// SCHEMA
// ============================================================================

// TargetKind selects the analysis branch for a session
type TargetKind string

const (
	TargetNumeric     TargetKind = "numeric"
	TargetCategorical TargetKind = "categorical"
)

// Schema is the classified target plus the derived feature partition.
// INVARIANTS:
// - Target is never in NumericFeatures or CategoricalFeatures
// - the two feature sets are disjoint and keep original column order
type Schema struct {
	Target              string     `json:"target"`
	TargetKind          TargetKind `json:"target_kind"`
	NumericFeatures     []string   `json:"numeric_features"`
	CategoricalFeatures []string   `json:"categorical_features"`
	Excluded            []string   `json:"excluded,omitempty"` // boolean/datetime columns
}

// IsNumericFeature reports membership in the numeric feature set
func (s Schema) IsNumericFeature(name string) bool {
	return contains(s.NumericFeatures, name)
}

// IsCategoricalFeature reports membership in the categorical feature set
func (s Schema) IsCategoricalFeature(name string) bool {
	return contains(s.CategoricalFeatures, name)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// ============================================================================
// UNIVARIATE
// ============================================================================

// Bin is one histogram bucket over [Lower, Upper)
type Bin struct {
	Lower Float `json:"lower"`
	Upper Float `json:"upper"`
	Count int   `json:"count"`
}

// Histogram is an equal-width binning of the non-missing values
type Histogram struct {
	Bins []Bin `json:"bins"`
	Min  Float `json:"min"`
	Max  Float `json:"max"`
}

// Frequency is one category's share of a categorical column
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
	Share Float  `json:"share"`
}

// Quartiles are linearly interpolated order statistics
type Quartiles struct {
	Q1     Float `json:"q1"`
	Median Float `json:"median"`
	Q3     Float `json:"q3"`
	IQR    Float `json:"iqr"`
}

// OutlierBounds are Q1-1.5·IQR and Q3+1.5·IQR
type OutlierBounds struct {
	Lower Float `json:"lower"`
	Upper Float `json:"upper"`
}

// ColumnProfile summarizes one column. Numeric columns fill the histogram,
// quartile and outlier fields; other kinds fill Frequencies.
type ColumnProfile struct {
	Column       string             `json:"column"`
	Kind         dataset.ColumnKind `json:"kind"`
	RowCount     int                `json:"row_count"`
	ColumnCount  int                `json:"column_count"`
	MissingCount int                `json:"missing_count"`
	ValidCount   int                `json:"valid_count"`

	Mean          Float          `json:"mean"`
	StdDev        Float          `json:"std_dev"`
	Skewness      Float          `json:"skewness"`
	Kurtosis      Float          `json:"kurtosis"` // excess kurtosis
	Histogram     *Histogram     `json:"histogram,omitempty"`
	Quartiles     *Quartiles     `json:"quartiles,omitempty"`
	OutlierBounds *OutlierBounds `json:"outlier_bounds,omitempty"`
	OutlierCount  int            `json:"outlier_count"`

	Distinct    int         `json:"distinct,omitempty"`
	Frequencies []Frequency `json:"frequencies,omitempty"`
}

// ============================================================================
// BIVARIATE
// ============================================================================

// Point is one pairwise-complete observation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TrendLine is the least-squares fit y = Intercept + Slope·x
type TrendLine struct {
	Slope     Float `json:"slope"`
	Intercept Float `json:"intercept"`
	RSquared  Float `json:"r_squared"`
}

// BoxStats are the grouped box-plot statistics of a feature for one target class
type BoxStats struct {
	Class        string    `json:"class"`
	Count        int       `json:"count"`
	Min          Float     `json:"min"`
	Q1           Float     `json:"q1"`
	Median       Float     `json:"median"`
	Q3           Float     `json:"q3"`
	Max          Float     `json:"max"`
	LowerWhisker Float     `json:"lower_whisker"`
	UpperWhisker Float     `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// Relationship is the result of relating one feature to the target.
// A numeric target fills Points and Trend; a categorical target fills Groups.
type Relationship struct {
	Feature    string     `json:"feature"`
	Target     string     `json:"target"`
	TargetKind TargetKind `json:"target_kind"`

	Points   []Point    `json:"points,omitempty"`
	Trend    *TrendLine `json:"trend,omitempty"`
	TrendErr Condition  `json:"trend_error"`

	Groups []BoxStats `json:"groups,omitempty"`
}

// ============================================================================
// CORRELATION
// ============================================================================

// CorrelationEntry is one feature's Pearson coefficient against the target
type CorrelationEntry struct {
	Feature     string    `json:"feature"`
	Coefficient Float     `json:"coefficient"`
	N           int       `json:"n"` // pairwise-complete observations
	Err         Condition `json:"error"`
}

// CorrelationMatrix is a symmetric matrix of Pearson coefficients over a feature list
type CorrelationMatrix struct {
	Features []string
	values   *mat.SymDense
	index    map[string]int
}

// NewCorrelationMatrix wraps a symmetric matrix whose rows follow features.
// values is nil for an empty feature list.
func NewCorrelationMatrix(features []string, values *mat.SymDense) *CorrelationMatrix {
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f] = i
	}
	return &CorrelationMatrix{Features: features, values: values, index: index}
}

// Size returns the number of features
func (m *CorrelationMatrix) Size() int {
	return len(m.Features)
}

// AtIndex returns the coefficient at (i, j)
func (m *CorrelationMatrix) AtIndex(i, j int) float64 {
	if m.values == nil {
		return math.NaN()
	}
	return m.values.At(i, j)
}

// At returns the coefficient for a named pair
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return math.NaN(), false
	}
	j, ok := m.index[b]
	if !ok {
		return math.NaN(), false
	}
	return m.AtIndex(i, j), true
}

// MarshalJSON emits {"features": [...], "values": [[...]]}
func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	n := m.Size()
	rows := make([][]Float, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]Float, n)
		for j := 0; j < n; j++ {
			rows[i][j] = Float(m.AtIndex(i, j))
		}
	}
	return json.Marshal(struct {
		Features []string  `json:"features"`
		Values   [][]Float `json:"values"`
	}{m.Features, rows})
}

// RedundantPair is a pair of numeric features above the redundancy threshold.
// A precedes B in feature order.
type RedundantPair struct {
	A           string `json:"a"`
	B           string `json:"b"`
	Coefficient Float  `json:"coefficient"`
	Magnitude   Float  `json:"magnitude"`
}

// RedundancyReport lists redundant pairs, or says why the check does not apply
type RedundancyReport struct {
	Threshold  float64         `json:"threshold"`
	Applicable bool            `json:"applicable"`
	Reason     Condition       `json:"reason"`
	Pairs      []RedundantPair `json:"pairs"`
}

// PairCorrelation is the single-pair redundancy check
type PairCorrelation struct {
	A           string    `json:"a"`
	B           string    `json:"b"`
	Coefficient Float     `json:"coefficient"`
	Spearman    Float     `json:"spearman"` // rank correlation over the same rows
	Points      []Point   `json:"points"`
	Err         Condition `json:"error"`
}

// ============================================================================
// CATEGORICAL
// ============================================================================

// GroupStat is the target's central tendency and dispersion within one category
type GroupStat struct {
	Category     string `json:"category"`
	Median       Float  `json:"median"`
	StdDev       Float  `json:"std_dev"` // sample; NaN when Count < 2
	Count        int    `json:"count"`
	Insufficient bool   `json:"insufficient"`
}

// GroupedStats is the numeric-target impact table, ascending by median
type GroupedStats struct {
	Feature string      `json:"feature"`
	Target  string      `json:"target"`
	Groups  []GroupStat `json:"groups"`
}

// ContingencyTable is a row-normalized crosstab of feature values by target class
type ContingencyTable struct {
	Feature     string    `json:"feature"`
	Target      string    `json:"target"`
	Rows        []string  `json:"rows"`
	Columns     []string  `json:"columns"`
	Counts      [][]int   `json:"counts"`
	Proportions [][]Float `json:"proportions"`

	Association Association `json:"association"`
}

// Association is the chi-square test of independence over a contingency
// table. The float fields are NaN when the table has a single row or column.
type Association struct {
	ChiSquare        Float `json:"chi_square"`
	DegreesOfFreedom int   `json:"degrees_of_freedom"`
	PValue           Float `json:"p_value"`
	CramersV         Float `json:"cramers_v"`
}

// Proportion returns the share of class col within feature value row
func (t *ContingencyTable) Proportion(row, col string) (float64, bool) {
	i := indexOf(t.Rows, row)
	j := indexOf(t.Columns, col)
	if i < 0 || j < 0 {
		return 0, false
	}
	return float64(t.Proportions[i][j]), true
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

// ClassCount is one target class's support
type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
	Share Float  `json:"share"`
}
