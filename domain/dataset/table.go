package dataset

import (
	"fmt"
	"strconv"

	"edascope/domain/core"

	"github.com/cockroachdb/errors"
)

// Table is the canonical data object for all statistical computation.
// It is immutable once constructed: accessors hand out copies.
type Table struct {
	Name string

	columns     []Column
	index       map[string]int
	rows        int
	fingerprint core.Hash
}

// NewTable builds a table and validates it: column names are unique and
// non-empty, kinds are known, and every column has the same length.
func NewTable(name string, columns ...Column) (*Table, error) {
	t := &Table{
		Name:    name,
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if err := t.addColumn(col); err != nil {
			return nil, err
		}
		if i == 0 {
			t.rows = col.Len()
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.fingerprint = t.computeFingerprint()
	return t, nil
}

func (t *Table) addColumn(col Column) error {
	if col.Name == "" {
		return core.NewValidationError("columns", fmt.Sprintf("column %d has an empty name", len(t.columns)))
	}
	if !col.Kind.Valid() {
		return core.NewValidationError(col.Name, fmt.Sprintf("unknown kind %q", col.Kind))
	}
	if _, dup := t.index[col.Name]; dup {
		return errors.Wrapf(core.ErrDuplicateColumn, "%q", col.Name)
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// Validate ensures the table is internally consistent
func (t *Table) Validate() error {
	for _, col := range t.columns {
		if col.Len() != t.rows {
			return errors.Wrapf(core.ErrRaggedColumns, "column %q has %d rows, expected %d",
				col.Name, col.Len(), t.rows)
		}
	}
	return nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns the columns in original order
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in original order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnInfos returns name, kind and missing count per column
func (t *Table) ColumnInfos() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.columns))
	for i, c := range t.columns {
		infos[i] = ColumnInfo{Name: c.Name, Kind: c.Kind, MissingCount: c.MissingCount()}
	}
	return infos
}

// HasColumn reports whether a column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a column by name
func (t *Table) Column(name string) (Column, bool) {
	idx, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[idx], true
}

// GetColumnData returns a copy of a numeric column's values
func (t *Table) GetColumnData(name string) ([]float64, bool) {
	col, ok := t.Column(name)
	if !ok || !col.Kind.IsNumeric() {
		return nil, false
	}
	return col.Floats(), true
}

// MissingCount returns the number of missing cells across the table
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.columns {
		n += c.MissingCount()
	}
	return n
}

// Head returns the first n rows in display form; missing cells are "".
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.columns))
		for j, c := range t.columns {
			switch {
			case c.IsMissing(i):
				row[j] = ""
			case c.Kind.IsNumeric():
				row[j] = strconv.FormatFloat(c.Float(i), 'g', -1, 64)
			default:
				row[j] = c.Label(i)
			}
		}
		rows[i] = row
	}
	return rows
}

// Fingerprint identifies the table's content: names, kinds and values.
// Two tables with the same fingerprint produce the same analyses.
func (t *Table) Fingerprint() core.Hash {
	return t.fingerprint
}

func (t *Table) computeFingerprint() core.Hash {
	f := core.NewFingerprinter().Int(t.rows).Int(len(t.columns))
	for _, c := range t.columns {
		f.Str(c.Name).Str(string(c.Kind))
		for i := 0; i < c.Len(); i++ {
			if c.Kind.IsNumeric() {
				f.Float(c.values[i])
			} else {
				f.Str(c.labels[i])
			}
		}
	}
	return f.Sum()
}
