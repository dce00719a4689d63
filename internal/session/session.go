package session

import (
	"time"

	"edascope/adapters/stats/engine"
	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/domain/eda"
)

// Session binds a loaded table to a chosen target. The schema is computed
// once at creation; choosing another target yields a new Session value.
// A Session is safe for concurrent queries.
type Session struct {
	ID        core.SessionID
	Table     *dataset.Table
	Schema    eda.Schema
	CreatedAt time.Time

	engine *engine.StatsEngine
	cache  *MatrixCache
}

// Overview is the dataset summary shown after loading
type Overview struct {
	SessionID    core.SessionID `json:"session_id"`
	Name         string         `json:"name"`
	Rows         int            `json:"rows"`
	Columns      int            `json:"columns"`
	MissingCells int            `json:"missing_cells"`
	ColumnNames  []string       `json:"column_names"`
	Head         [][]string     `json:"head"`
	Schema       eda.Schema     `json:"schema"`
	Fingerprint  core.Hash      `json:"fingerprint"`
}

// HeadRows is the number of preview rows in an Overview
const HeadRows = 10

// New classifies the target and opens a session. It fails with
// ErrInvalidTarget when the target is not a column of the table.
func New(eng *engine.StatsEngine, table *dataset.Table, target string) (*Session, error) {
	return newWithID(core.NewSessionID(), eng, table, target)
}

func newWithID(id core.SessionID, eng *engine.StatsEngine, table *dataset.Table, target string) (*Session, error) {
	if table == nil {
		return nil, core.NewValidationError("table", "no dataset loaded")
	}
	schema, err := eng.Classify(table, target)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		Table:     table,
		Schema:    schema,
		CreatedAt: time.Now(),
		engine:    eng,
		cache:     NewMatrixCache(),
	}, nil
}

// SelectTarget returns a fresh session over the same table and ID with a new target
func (s *Session) SelectTarget(target string) (*Session, error) {
	return newWithID(s.ID, s.engine, s.Table, target)
}

// Target returns the target column name
func (s *Session) Target() string {
	return s.Schema.Target
}

// Kind returns the target kind
func (s *Session) Kind() eda.TargetKind {
	return s.Schema.TargetKind
}

// CacheStats exposes the correlation cache counters
func (s *Session) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Overview summarizes the table and the schema
func (s *Session) Overview() Overview {
	return Overview{
		SessionID:    s.ID,
		Name:         s.Table.Name,
		Rows:         s.Table.RowCount(),
		Columns:      s.Table.ColumnCount(),
		MissingCells: s.Table.MissingCount(),
		ColumnNames:  s.Table.ColumnNames(),
		Head:         s.Table.Head(HeadRows),
		Schema:       s.Schema,
		Fingerprint:  s.Table.Fingerprint(),
	}
}

// Profile summarizes any column, target included
func (s *Session) Profile(column string) (*eda.ColumnProfile, error) {
	return s.engine.Profile(s.Table, column)
}

// Relate relates a numeric feature to the target
func (s *Session) Relate(feature string) (*eda.Relationship, error) {
	if err := s.requireNumericFeature(feature); err != nil {
		return nil, err
	}
	return s.engine.Relate(s.Table, feature, s.Target(), s.Kind())
}

// TopKCorrelated ranks numeric features against a numeric target
func (s *Session) TopKCorrelated(k int) ([]eda.CorrelationEntry, error) {
	if err := s.requireTarget(eda.TargetNumeric); err != nil {
		return nil, err
	}
	return s.engine.TopKCorrelated(s.Table, s.Schema.NumericFeatures, s.Target(), k)
}

// CorrelationMatrix returns the memoized matrix over the numeric features
func (s *Session) CorrelationMatrix() (*eda.CorrelationMatrix, error) {
	features := s.Schema.NumericFeatures
	return s.cache.Get(s.Table, features, func() (*eda.CorrelationMatrix, error) {
		return s.engine.CorrelationMatrix(s.Table, features)
	})
}

// RedundantPairs reports redundant numeric feature pairs above threshold
func (s *Session) RedundantPairs(threshold float64) (*eda.RedundancyReport, error) {
	if len(s.Schema.NumericFeatures) < 2 {
		return s.engine.FindRedundantPairs(s.Table, s.Schema.NumericFeatures, threshold)
	}
	m, err := s.CorrelationMatrix()
	if err != nil {
		return nil, err
	}
	return s.engine.RedundantPairs(m, threshold)
}

// PairCorrelation checks a single pair of numeric features
func (s *Session) PairCorrelation(a, b string) (*eda.PairCorrelation, error) {
	if err := s.requireNumericFeature(a); err != nil {
		return nil, err
	}
	if err := s.requireNumericFeature(b); err != nil {
		return nil, err
	}
	return s.engine.PairCorrelation(s.Table, a, b)
}

// Impact groups a numeric target by a categorical feature
func (s *Session) Impact(feature string) (*eda.GroupedStats, error) {
	if err := s.requireTarget(eda.TargetNumeric); err != nil {
		return nil, err
	}
	if err := s.requireCategoricalFeature(feature); err != nil {
		return nil, err
	}
	return s.engine.Impact(s.Table, feature, s.Target())
}

// Crosstab cross-tabulates a categorical feature against a categorical target
func (s *Session) Crosstab(feature string) (*eda.ContingencyTable, error) {
	if err := s.requireTarget(eda.TargetCategorical); err != nil {
		return nil, err
	}
	if err := s.requireCategoricalFeature(feature); err != nil {
		return nil, err
	}
	return s.engine.Crosstab(s.Table, feature, s.Target())
}

// ClassDistribution counts the classes of a categorical target
func (s *Session) ClassDistribution() ([]eda.ClassCount, error) {
	if err := s.requireTarget(eda.TargetCategorical); err != nil {
		return nil, err
	}
	return s.engine.ClassDistribution(s.Table, s.Target())
}

func (s *Session) requireTarget(kind eda.TargetKind) error {
	if s.Kind() != kind {
		return core.NewKindMismatchError(s.Target(), string(s.Kind()), string(kind)+" target")
	}
	return nil
}

func (s *Session) requireNumericFeature(name string) error {
	if !s.Table.HasColumn(name) {
		return core.NewColumnNotFoundError(name)
	}
	if !s.Schema.IsNumericFeature(name) {
		return core.NewKindMismatchError(name, s.describe(name), "numeric feature")
	}
	return nil
}

func (s *Session) requireCategoricalFeature(name string) error {
	if !s.Table.HasColumn(name) {
		return core.NewColumnNotFoundError(name)
	}
	if !s.Schema.IsCategoricalFeature(name) {
		return core.NewKindMismatchError(name, s.describe(name), "categorical feature")
	}
	return nil
}

func (s *Session) describe(name string) string {
	if name == s.Target() {
		return "the target"
	}
	col, _ := s.Table.Column(name)
	return string(col.Kind)
}
