package report

import (
	"math"
	"strings"
	"testing"

	"edascope/adapters/stats/engine"
	"edascope/internal/session"
	"edascope/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, target string) *session.Session {
	t.Helper()
	s, err := session.New(engine.NewStatsEngine(engine.DefaultConfig()), testkit.Customers(), target)
	require.NoError(t, err)
	return s
}

func TestGenerate_CategoricalTarget(t *testing.T) {
	md, err := Generate(open(t, "churned"), DefaultOptions())
	require.NoError(t, err)
	text := string(md)

	assert.True(t, strings.HasPrefix(text, "# EDA report: "))
	assert.Contains(t, text, "Target `churned` (categorical)")
	assert.Contains(t, text, "## Class distribution")
	assert.Contains(t, text, "## Numeric features by class")
	assert.Contains(t, text, "## churned by city")
	assert.Contains(t, text, "Cramér's V = ")
	assert.Contains(t, text, "## Redundant features")
	assert.Contains(t, text, "| income | monthly_spend |")
	assert.NotContains(t, text, "## Correlation with target")
	assert.Contains(t, text, "- Excluded: ")
}

func TestGenerate_NumericTarget(t *testing.T) {
	md, err := Generate(open(t, "lifetime_value"), Options{TopK: 3, Threshold: 0.8})
	require.NoError(t, err)
	text := string(md)

	assert.Contains(t, text, "## Correlation with target")
	assert.Contains(t, text, "## Impact of plan")
	assert.NotContains(t, text, "## Class distribution")

	section := text[strings.Index(text, "## Correlation with target"):]
	section = section[:strings.Index(section, "\n\n## ")]
	// header, separator and three rows
	assert.Len(t, strings.Split(strings.TrimSpace(section), "\n"), 2+1+3)
}

func TestGenerate_InsufficientFeatures(t *testing.T) {
	s, err := session.New(engine.NewStatsEngine(engine.DefaultConfig()), testkit.RegionPriceTable(), "price")
	require.NoError(t, err)

	md, err := Generate(s, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(md), "Not applicable: insufficient features for analysis.")
	assert.Contains(t, string(md), "| B | 80 | n/a | 1 |")
}

func TestToHTML(t *testing.T) {
	out := string(ToHTML([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestNum(t *testing.T) {
	assert.Equal(t, "n/a", num(math.NaN()))
	assert.Equal(t, "0.5", num(0.5))
	assert.Equal(t, "1.235e+04", num(12345.0))
}
