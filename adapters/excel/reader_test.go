package excel

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeCSV(t, "age,income,city,churned,active\n"+
		"25,32000,Austin,yes,true\n"+
		"34,,Boston,no,false\n"+
		"45,51000.5,Austin,no,TRUE\n")

	table, err := NewDataReader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "data", table.Name)
	assert.Equal(t, 3, table.RowCount())

	kinds := map[string]dataset.ColumnKind{}
	for _, info := range table.ColumnInfos() {
		kinds[info.Name] = info.Kind
	}
	assert.Equal(t, dataset.KindNumeric, kinds["age"])
	assert.Equal(t, dataset.KindNumeric, kinds["income"])
	assert.Equal(t, dataset.KindCategorical, kinds["city"])
	assert.Equal(t, dataset.KindCategorical, kinds["churned"])
	assert.Equal(t, dataset.KindBoolean, kinds["active"])

	income, _ := table.GetColumnData("income")
	assert.True(t, math.IsNaN(income[1]))
}

func TestLoadReader_RoundTripsTestkitCSV(t *testing.T) {
	source := testkit.ChurnedTable()

	table, err := NewDataReader("").LoadReader("churn.csv", bytes.NewReader(testkit.CSV(source)))
	require.NoError(t, err)

	assert.Equal(t, source.ColumnNames(), table.ColumnNames())
	assert.Equal(t, source.MissingCount(), table.MissingCount())
	assert.Equal(t, source.Head(6), table.Head(6))
}

func TestLoad_PadsShortRowsAndRejectsLongRows(t *testing.T) {
	table, err := NewDataReader(writeCSV(t, "a,b,c\n1,2\n4,5,6\n")).Load()
	require.NoError(t, err)
	c, _ := table.GetColumnData("c")
	assert.True(t, math.IsNaN(c[0]))

	_, err = NewDataReader(writeCSV(t, "a,b\n1,2,3\n")).Load()
	assert.ErrorIs(t, err, core.ErrRaggedColumns)
}

func TestLoad_HeaderOnly(t *testing.T) {
	_, err := NewDataReader(writeCSV(t, "a,b\n")).Load()
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).Load()
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := NewDataReader("").LoadReader("data.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
	assert.False(t, SupportedFile("data.json"))
	assert.True(t, SupportedFile("DATA.XLSX"))
}

func TestLoad_MaxRows(t *testing.T) {
	config := DefaultExcelConfig()
	config.FilePath = writeCSV(t, "x\n1\n2\n3\n4\n")
	config.MaxRows = 2

	table, err := NewDataReaderWithConfig(config).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, table.RowCount())
}

func TestLoad_ParseTimestamps(t *testing.T) {
	content := "signup,value\n2024-01-01,1\n2024-02-15,2\n"

	table, err := NewDataReader(writeCSV(t, content)).Load()
	require.NoError(t, err)
	col, _ := table.Column("signup")
	assert.Equal(t, dataset.KindCategorical, col.Kind)

	config := DefaultExcelConfig()
	config.FilePath = writeCSV(t, content)
	config.CoercionConfig.ParseTimestamps = true
	table, err = NewDataReaderWithConfig(config).Load()
	require.NoError(t, err)
	col, _ = table.Column("signup")
	assert.Equal(t, dataset.KindDatetime, col.Kind)
	assert.Equal(t, "2024-01-01T00:00:00Z", col.Label(0))
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"x", " x ", "", "x", "x.1"})
	assert.Equal(t, []string{"x", "x.1", "Unnamed: 2", "x.2", "x.1.1"}, got)
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Customers"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"plan", "spend"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"basic", 12.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"plus", 30}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"basic", 15}))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	config := DefaultExcelConfig()
	config.FilePath = path
	config.Sheet = sheet
	table, err := NewDataReaderWithConfig(config).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"plan", "spend"}, table.ColumnNames())
	spend, ok := table.GetColumnData("spend")
	require.True(t, ok)
	assert.Equal(t, []float64{12.5, 30, 15}, spend)

	config.Sheet = "Missing"
	_, err = NewDataReaderWithConfig(config).Load()
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
}
