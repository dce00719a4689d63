package ui

import (
	"io"

	"edascope/adapters/excel"
	"edascope/domain/core"
	"edascope/domain/dataset"

	"github.com/cockroachdb/errors"
)

// getDefaultTable returns the configured default dataset, loading it on first use
func (s *Server) getDefaultTable() (*dataset.Table, error) {
	s.defaultMu.Lock()
	defer s.defaultMu.Unlock()

	if s.defaultTable != nil {
		return s.defaultTable, nil
	}
	if s.config.Data.File == "" {
		return nil, errors.Wrap(core.NewParameterError("file", "no upload and no default dataset configured"), "create session")
	}

	cfg := s.readerConfig(s.config.Data.Sheet)
	cfg.FilePath = s.config.Data.File
	s.logger.Info("Loading default dataset %s", cfg.FilePath)

	table, err := excel.NewDataReaderWithConfig(cfg).Load()
	if err != nil {
		s.logger.Error("Default dataset %s failed to load: %v", cfg.FilePath, err)
		return nil, err
	}
	s.defaultTable = table
	s.logger.Info("Default dataset cached: %d rows, %d columns", table.RowCount(), table.ColumnCount())
	return table, nil
}

// loadUpload parses an uploaded CSV or xlsx file
func (s *Server) loadUpload(name, sheet string, src io.Reader) (*dataset.Table, error) {
	if !excel.SupportedFile(name) {
		return nil, core.NewParameterError("file", "expected a .csv or .xlsx file")
	}
	table, err := excel.NewDataReaderWithConfig(s.readerConfig(sheet)).LoadReader(name, src)
	if err != nil {
		s.logger.Warn("Upload %s rejected: %v", name, err)
		return nil, err
	}
	return table, nil
}
