package engine

import (
	"edascope/domain/core"
	"edascope/domain/dataset"

	"github.com/cockroachdb/errors"
)

// Config holds the tunable parameters of the analyses
type Config struct {
	HistogramBins       int     // equal-width bins for numeric profiles
	RedundancyThreshold float64 // default |r| above which two features are redundant
	WhiskerFactor       float64 // IQR multiplier for outlier bounds and whiskers
}

// DefaultConfig returns the standard box-plot and binning parameters
func DefaultConfig() Config {
	return Config{
		HistogramBins:       50,
		RedundancyThreshold: 0.8,
		WhiskerFactor:       1.5,
	}
}

// StatsEngine runs descriptive analyses over a dataset table. Every method
// is a pure function of its arguments; the engine holds configuration only
// and is safe for concurrent use.
type StatsEngine struct {
	cfg Config
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(cfg Config) *StatsEngine {
	def := DefaultConfig()
	if cfg.HistogramBins < 1 {
		cfg.HistogramBins = def.HistogramBins
	}
	if cfg.RedundancyThreshold <= 0 || cfg.RedundancyThreshold >= 1 {
		cfg.RedundancyThreshold = def.RedundancyThreshold
	}
	if cfg.WhiskerFactor <= 0 {
		cfg.WhiskerFactor = def.WhiskerFactor
	}
	return &StatsEngine{cfg: cfg}
}

// Config returns the effective configuration
func (e *StatsEngine) Config() Config {
	return e.cfg
}

// lookup returns a column or ErrColumnNotFound
func lookup(table *dataset.Table, name string) (dataset.Column, error) {
	col, ok := table.Column(name)
	if !ok {
		return dataset.Column{}, core.NewColumnNotFoundError(name)
	}
	return col, nil
}

// numericColumn returns a numeric column or a request error
func numericColumn(table *dataset.Table, name string) (dataset.Column, error) {
	col, err := lookup(table, name)
	if err != nil {
		return col, err
	}
	if !col.Kind.IsNumeric() {
		return col, core.NewKindMismatchError(name, string(col.Kind), string(dataset.KindNumeric))
	}
	return col, nil
}

// labelColumn returns a non-numeric column or a request error
func labelColumn(table *dataset.Table, name string) (dataset.Column, error) {
	col, err := lookup(table, name)
	if err != nil {
		return col, err
	}
	if col.Kind.IsNumeric() {
		return col, core.NewKindMismatchError(name, string(col.Kind), string(dataset.KindCategorical))
	}
	return col, nil
}

func numericColumns(table *dataset.Table, names []string) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, name := range names {
		col, err := numericColumn(table, name)
		if err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}
		out[i] = col.Floats()
	}
	return out, nil
}
