package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"edascope/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCustomers(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, testkit.CSV(testkit.Customers()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "-f", writeCustomers(t), "-t", "churned")
	require.NoError(t, err)

	var ov struct {
		Rows   int `json:"rows"`
		Schema struct {
			TargetKind          string   `json:"target_kind"`
			NumericFeatures     []string `json:"numeric_features"`
			CategoricalFeatures []string `json:"categorical_features"`
		} `json:"schema"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ov))
	assert.Equal(t, 500, ov.Rows)
	assert.Equal(t, "categorical", ov.Schema.TargetKind)
	assert.Contains(t, ov.Schema.NumericFeatures, "income")
	assert.Contains(t, ov.Schema.CategoricalFeatures, "plan")
}

func TestCorrelate_ClampsK(t *testing.T) {
	out, err := execute(t, "correlate", "-f", writeCustomers(t), "-t", "lifetime_value", "--k", "1")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	// four numeric features, below the minimum of five
	assert.Len(t, entries, 4)
}

func TestRedundancy(t *testing.T) {
	out, err := execute(t, "redundancy", "-f", writeCustomers(t), "-t", "churned", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, `"a": "income"`)
	assert.Contains(t, out, `"b": "monthly_spend"`)
}

func TestKindMismatch(t *testing.T) {
	_, err := execute(t, "impact", "city", "-f", writeCustomers(t), "-t", "churned")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column kind not valid")
}

func TestMissingInputs(t *testing.T) {
	_, err := execute(t, "classify", "-t", "churned")
	require.Error(t, err)

	_, err = execute(t, "classify", "-f", writeCustomers(t))
	require.Error(t, err)
}

func TestReportToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.html")
	_, err := execute(t, "report", "-f", writeCustomers(t), "-t", "churned", "--html", "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1")
	assert.Contains(t, string(data), "Class distribution")
}
