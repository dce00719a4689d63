package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"edascope/adapters/datareadiness/coercer"
	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config   ExcelConfig
	fileType string // "xlsx" or "csv"
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	config := DefaultExcelConfig()
	config.FilePath = filePath
	return NewDataReaderWithConfig(config)
}

// NewDataReaderWithConfig creates a reader from a full configuration
func NewDataReaderWithConfig(config ExcelConfig) *DataReader {
	return &DataReader{
		config:   config,
		fileType: fileTypeOf(config.FilePath),
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
		logger:   internal.DefaultLogger.Component("DataReader"),
	}
}

func fileTypeOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	default:
		return ""
	}
}

// SupportedFile reports whether a file name has a readable extension
func SupportedFile(name string) bool {
	return fileTypeOf(name) != ""
}

// Load reads the configured file and builds a typed table
func (r *DataReader) Load() (*dataset.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return r.BuildTable(strings.TrimSuffix(filepath.Base(r.config.FilePath), filepath.Ext(r.config.FilePath)), data)
}

// LoadReader reads an uploaded stream; name selects the format by extension
func (r *DataReader) LoadReader(name string, src io.Reader) (*dataset.Table, error) {
	data, err := r.ReadFrom(name, src)
	if err != nil {
		return nil, err
	}
	return r.BuildTable(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), data)
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Info("Starting to read %s file: %s", r.fileType, r.config.FilePath)

	f, err := os.Open(r.config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(core.ErrNotFound, "%s file %s", strings.ToUpper(r.fileType), r.config.FilePath)
		}
		return nil, errors.Wrap(err, "failed to open data file")
	}
	defer f.Close()

	return r.ReadFrom(r.config.FilePath, f)
}

// ReadFrom reads raw rows from a stream
func (r *DataReader) ReadFrom(name string, src io.Reader) (*ExcelData, error) {
	switch fileTypeOf(name) {
	case "csv":
		return r.readCSVData(src)
	case "xlsx":
		return r.readExcelData(src)
	default:
		return nil, core.NewValidationError("file", fmt.Sprintf("unsupported file type %q", filepath.Ext(name)))
	}
}

// readExcelData reads the configured sheet (or the first one) into structured format
func (r *DataReader) readExcelData(src io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, core.NewValidationError("file", fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheetName := r.config.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, core.NewValidationError("sheet", fmt.Sprintf("sheet %q not found", sheetName))
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", sheetName)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheetName, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows("XLSX", rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData(src io.Reader) (*ExcelData, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV data")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewValidationError("file", fmt.Sprintf("failed to read CSV file: %v", err))
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows("CSV", rows)
}

// processRows converts raw string rows into ExcelData format.
// Short rows are padded with empty cells; rows longer than the header are rejected.
func (r *DataReader) processRows(format string, rows [][]string) (*ExcelData, error) {
	if len(rows) < 2 {
		return nil, core.NewValidationError("file", "must have at least a header row and one data row")
	}

	headers := uniqueHeaders(rows[0])
	limit := len(rows) - 1
	if r.config.MaxRows > 0 && limit > r.config.MaxRows {
		r.logger.Warn("Truncating %d data rows to %d", limit, r.config.MaxRows)
		limit = r.config.MaxRows
	}

	dataRows := make([]RawRowData, 0, limit)
	for i := 1; i <= limit; i++ {
		row := rows[i]
		if len(row) > len(headers) {
			return nil, errors.Wrapf(core.ErrRaggedColumns, "row %d has %d cells, header has %d", i+1, len(row), len(headers))
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			rowData[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", format, len(headers), len(dataRows))
	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}

// uniqueHeaders trims header names, names blank ones "Unnamed: i" and
// suffixes repeats as name.1, name.2 so every column is addressable.
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		headers[i] = candidate
	}
	return headers
}

// InferColumnKinds analyzes each column's raw values with the coercer
func (r *DataReader) InferColumnKinds(data *ExcelData) []dataset.ColumnKind {
	kinds := make([]dataset.ColumnKind, len(data.Headers))
	for i := range data.Headers {
		kinds[i] = r.coercer.AnalyzeTypeDistribution(data.Column(i)).RecommendedKind
	}
	return kinds
}

// BuildTable types every column and assembles a validated table
func (r *DataReader) BuildTable(name string, data *ExcelData) (*dataset.Table, error) {
	kinds := r.InferColumnKinds(data)
	columns := make([]dataset.Column, len(data.Headers))
	for i, header := range data.Headers {
		columns[i] = r.coercer.CoerceAs(header, kinds[i], data.Column(i))
		r.logger.Trace("Column %q inferred as %s", header, kinds[i])
	}
	return dataset.NewTable(name, columns...)
}
