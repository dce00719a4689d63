package dataset

import (
	"encoding/json"
	"math"
	"testing"

	"edascope/domain/core"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable("customers",
		NewNumericColumn("age", []float64{34, math.NaN(), 51}),
		NewCategoricalColumn("region", []string{"A", "B", ""}),
		NewLabelColumn("active", KindBoolean, []string{"true", "false", "true"}),
	)
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, 3, table.ColumnCount())
	assert.Equal(t, []string{"age", "region", "active"}, table.ColumnNames())
	assert.Equal(t, 2, table.MissingCount())
	assert.True(t, table.HasColumn("region"))
	assert.False(t, table.HasColumn("missing"))
}

func TestNewTableRejectsDuplicateColumns(t *testing.T) {
	_, err := NewTable("dup",
		NewNumericColumn("x", []float64{1}),
		NewNumericColumn("x", []float64{2}),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateColumn))
	assert.True(t, errors.Is(err, core.ErrInvalidDataset))
}

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable("ragged",
		NewNumericColumn("x", []float64{1, 2, 3}),
		NewCategoricalColumn("y", []string{"a"}),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRaggedColumns))
}

func TestNewTableRejectsUnknownKind(t *testing.T) {
	_, err := NewTable("bad", NewLabelColumn("x", ColumnKind("blob"), []string{"a"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidDataset))
}

func TestColumnAccessors(t *testing.T) {
	table := sampleTable(t)

	age, ok := table.Column("age")
	require.True(t, ok)
	assert.True(t, age.IsMissing(1))
	assert.Equal(t, 51.0, age.Float(2))
	assert.Equal(t, "", age.Label(0))
	assert.Equal(t, 1, age.MissingCount())

	region, ok := table.Column("region")
	require.True(t, ok)
	assert.True(t, region.IsMissing(2))
	assert.Equal(t, "B", region.Label(1))
	assert.True(t, math.IsNaN(region.Float(0)))

	data, ok := table.GetColumnData("age")
	require.True(t, ok)
	data[0] = -1
	again, _ := table.GetColumnData("age")
	assert.Equal(t, 34.0, again[0], "column data must be a copy")

	_, ok = table.GetColumnData("region")
	assert.False(t, ok)
}

func TestHead(t *testing.T) {
	table := sampleTable(t)

	head := table.Head(10)
	require.Len(t, head, 3)
	assert.Equal(t, []string{"34", "A", "true"}, head[0])
	assert.Equal(t, []string{"", "B", "false"}, head[1])

	assert.Len(t, table.Head(1), 1)
	assert.Empty(t, table.Head(-1))
}

func TestFingerprint(t *testing.T) {
	a := sampleTable(t)
	b := sampleTable(t)
	assert.True(t, a.Fingerprint().Equals(b.Fingerprint()))

	c, err := NewTable("customers",
		NewNumericColumn("age", []float64{34, math.NaN(), 52}),
		NewCategoricalColumn("region", []string{"A", "B", ""}),
		NewLabelColumn("active", KindBoolean, []string{"true", "false", "true"}),
	)
	require.NoError(t, err)
	assert.False(t, a.Fingerprint().Equals(c.Fingerprint()))
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindNumeric.IsFeatureKind())
	assert.True(t, KindCategorical.IsFeatureKind())
	assert.False(t, KindBoolean.IsFeatureKind())
	assert.False(t, KindDatetime.IsFeatureKind())
	assert.False(t, ColumnKind("other").Valid())
}

func TestNewDatasetInfo(t *testing.T) {
	info := NewDatasetInfo(sampleTable(t), "upload")

	assert.False(t, core.ID(info.ID).IsEmpty())
	assert.Equal(t, 3, info.RowCount)
	assert.InDelta(t, 2.0/9.0, info.MissingRate, 1e-12)
	require.Len(t, info.Columns, 3)
	assert.Equal(t, KindCategorical, info.Columns[1].Kind)

	raw, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"source":"upload"`)
}
