package dataset

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	apperrors "nutricli/internal/errors"
)

// ReadXLSX loads the first worksheet of a workbook, or the one named with
// WithSheet. The first row is the header; fully empty rows are skipped.
func ReadXLSX(path string, opts ...ReadOption) (*Frame, error) {
	o := newReadOptions(opts)

	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("malformed workbook", err).WithContext("path", path)
	}
	defer wb.Close()

	sheet := o.sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}

	var header []string
	var body [][]string
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if header == nil {
			header = row
			continue
		}
		if len(row) > len(header) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d fields, header has %d", i+1, len(row), len(header)), nil).
				WithContext("path", path)
		}
		// trailing blank cells are trimmed by the reader
		padded := make([]string, len(header))
		copy(padded, row)
		body = append(body, padded)
	}

	if header == nil {
		return nil, apperrors.NewParsingError("no columns to parse from file", nil).WithContext("path", path)
	}

	return buildFrame(header, body, o)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
