package coercer

import (
	"math"
	"testing"

	"edascope/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"1e3", 1000, true},
		{"$1,234.50", 1234.5, true},
		{"1,234", 1234, true},
		{"3,5", 3.5, true},
		{"1.234,56", 1234.56, true},
		{"(200)", -200, true},
		{"15%", 15, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.ParseNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseBoolean(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, in := range []string{"true", "TRUE", " False "} {
		_, ok := c.ParseBoolean(in)
		assert.True(t, ok, in)
	}
	for _, in := range []string{"1", "0", "yes", "no", "y", ""} {
		_, ok := c.ParseBoolean(in)
		assert.False(t, ok, in)
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	tests := []struct {
		name   string
		values []string
		want   dataset.ColumnKind
	}{
		{"numeric", []string{"1", "2.5", "", "4"}, dataset.KindNumeric},
		{"numeric with minority text", []string{"1", "2", "3", "4", "n/a"}, dataset.KindNumeric},
		{"mostly text", []string{"1", "x", "y", "z"}, dataset.KindCategorical},
		{"boolean", []string{"true", "False", ""}, dataset.KindBoolean},
		{"yes no stays categorical", []string{"yes", "no", "yes"}, dataset.KindCategorical},
		{"zero one stays numeric", []string{"0", "1", "1"}, dataset.KindNumeric},
		{"dates without parsing", []string{"2024-01-01", "2024-02-01"}, dataset.KindCategorical},
		{"all missing", []string{"", " "}, dataset.KindNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.AnalyzeTypeDistribution(tt.values).RecommendedKind)
		})
	}
}

func TestAnalyzeTypeDistribution_Timestamps(t *testing.T) {
	config := DefaultCoercionConfig()
	config.ParseTimestamps = true
	c := NewTypeCoercer(config)

	analysis := c.AnalyzeTypeDistribution([]string{"2024-01-01", "2024-02-01", "03/15/2024", ""})
	assert.Equal(t, dataset.KindDatetime, analysis.RecommendedKind)
	assert.Equal(t, 3, analysis.ValidCount)
	assert.InDelta(t, 1.0, analysis.TimestampRatio, 1e-12)
}

func TestCoerceColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	num := c.CoerceColumn("amount", []string{"10", "20", "", "30", "40", "oops"})
	require.Equal(t, dataset.KindNumeric, num.Kind)
	assert.True(t, num.IsMissing(2))
	assert.True(t, math.IsNaN(num.Float(5)), "unparseable minority becomes missing")
	assert.Equal(t, 2, num.MissingCount())

	flag := c.CoerceColumn("active", []string{"TRUE", "false", ""})
	require.Equal(t, dataset.KindBoolean, flag.Kind)
	assert.Equal(t, []string{"true", "false", ""}, flag.Labels())

	city := c.CoerceColumn("city", []string{" Austin ", "Boston", ""})
	require.Equal(t, dataset.KindCategorical, city.Kind)
	assert.Equal(t, []string{"Austin", "Boston", ""}, city.Labels())
}

func TestCoerceAs_Normalize(t *testing.T) {
	config := DefaultCoercionConfig()
	config.NormalizeStrings = true
	c := NewTypeCoercer(config)

	col := c.CoerceAs("city", dataset.KindCategorical, []string{"  New   YORK ", "new york"})
	assert.Equal(t, []string{"new york", "new york"}, col.Labels())
}
