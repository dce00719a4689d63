package excel

import (
	"edascope/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for a CSV or Excel data source
type ExcelConfig struct {
	FilePath       string                 `json:"file_path"`
	Sheet          string                 `json:"sheet"`    // xlsx only; empty selects the first sheet
	MaxRows        int                    `json:"max_rows"` // data rows kept; 0 keeps all
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
