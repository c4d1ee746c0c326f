package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used for single-table workbooks
const DefaultSheet = "Sheet1"

// XLSXWriter writes single-sheet Excel workbooks
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new XLSX writer instance
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// WriteXLSX writes headers and records to the first sheet of a new workbook.
// Cells that parse as numbers are stored as numbers; empty cells stay blank.
func (w *XLSXWriter) WriteXLSX(filePath, sheet string, options WriteOptions) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	w.logger.Debug("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("sheet", sheet),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	rows := make([][]string, 0, len(options.Records)+1)
	if len(options.Headers) > 0 {
		rows = append(rows, options.Headers)
	}
	rows = append(rows, options.Records...)

	for r, record := range rows {
		for c, value := range record {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			var cellValue interface{} = value
			if r > 0 || len(options.Headers) == 0 {
				if num, err := strconv.ParseFloat(value, 64); err == nil {
					cellValue = num
				}
			}
			if err := f.SetCellValue(sheet, cell, cellValue); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
