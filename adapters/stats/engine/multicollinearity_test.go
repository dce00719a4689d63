package engine

import (
	"testing"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindRedundantPairs_IdenticalColumns asserts that x = y gives r = 1 and no redundant pair
func TestFindRedundantPairs_IdenticalColumns(t *testing.T) {
	e := newTestEngine()
	table := testkit.IdenticalTable()

	m, err := e.CorrelationMatrix(table, []string{"x", "y"})
	require.NoError(t, err)
	r, _ := m.At("x", "y")
	assert.Equal(t, 1.0, r)

	report, err := e.FindRedundantPairs(table, []string{"x", "y"}, 0.8)
	require.NoError(t, err)
	assert.True(t, report.Applicable)
	assert.Empty(t, report.Pairs)
}

func TestFindRedundantPairs_InsufficientFeatures(t *testing.T) {
	report, err := newTestEngine().FindRedundantPairs(testkit.IdenticalTable(), []string{"x"}, 0.8)
	require.NoError(t, err)

	assert.False(t, report.Applicable)
	assert.ErrorIs(t, report.Reason.Err, core.ErrInsufficientFeatures)
	assert.Empty(t, report.Pairs)
}

func TestFindRedundantPairs_BoundsAndOrder(t *testing.T) {
	table := testkit.MustTable("r",
		dataset.NewNumericColumn("a", []float64{1, 2, 3, 4, 5, 6}),
		dataset.NewNumericColumn("b", []float64{1.1, 2.3, 2.9, 4.2, 4.8, 6.1}),
		dataset.NewNumericColumn("c", []float64{6, 5.5, 3.9, 3.2, 2.4, 0.4}),
		dataset.NewNumericColumn("d", []float64{2, 9, 1, 7, 3, 4}),
	)
	threshold := 0.8

	report, err := newTestEngine().FindRedundantPairs(table, []string{"a", "b", "c", "d"}, threshold)
	require.NoError(t, err)
	require.True(t, report.Applicable)
	require.NotEmpty(t, report.Pairs)

	seen := make(map[[2]string]bool)
	for i, p := range report.Pairs {
		mag := float64(p.Magnitude)
		assert.Greater(t, mag, threshold)
		assert.Less(t, mag, 1.0)
		assert.False(t, seen[[2]string{p.B, p.A}], "both orderings of %s/%s", p.A, p.B)
		seen[[2]string{p.A, p.B}] = true
		if i > 0 {
			assert.GreaterOrEqual(t, float64(report.Pairs[i-1].Magnitude), mag)
		}
	}
	for p := range seen {
		assert.NotEqual(t, "d", p[0])
		assert.NotEqual(t, "d", p[1])
	}
}

func TestFindRedundantPairs_InvalidThreshold(t *testing.T) {
	e := newTestEngine()
	for _, th := range []float64{-0.1, 1.0, 1.5} {
		_, err := e.FindRedundantPairs(testkit.IdenticalTable(), []string{"x", "y"}, th)
		assert.ErrorIs(t, err, core.ErrInvalidParameter, "threshold %v", th)
	}
}

func TestPairCorrelation(t *testing.T) {
	e := newTestEngine()

	pair, err := e.PairCorrelation(testkit.IdenticalTable(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 1.0, float64(pair.Coefficient))
	assert.Len(t, pair.Points, 8)
	assert.False(t, pair.Err.Is())

	_, err = e.PairCorrelation(testkit.IdenticalTable(), "x", "x")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = e.PairCorrelation(testkit.ChurnedTable(), "age", "city")
	assert.ErrorIs(t, err, core.ErrKindMismatch)
}
