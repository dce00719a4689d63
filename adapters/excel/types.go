package excel

// RawRowData represents a row of raw cell text, one entry per header
type RawRowData []string

// ExcelData represents the complete raw dataset
type ExcelData struct {
	Headers []string     // Column headers, unique after mangling
	Rows    []RawRowData // Data rows, padded to len(Headers)
}

// Column returns the raw values of the column at index idx
func (d *ExcelData) Column(idx int) []string {
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		values[i] = row[idx]
	}
	return values
}
