package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"nutricli/internal/config"
	apperrors "nutricli/internal/errors"
	"nutricli/internal/exporter"
)

// ReadOption customizes loading
type ReadOption func(*readOptions)

type readOptions struct {
	nullTokens map[string]struct{}
	sheet      string
}

// WithNullTokens replaces the set of cell values treated as missing
func WithNullTokens(tokens []string) ReadOption {
	return func(o *readOptions) {
		o.nullTokens = tokenSet(tokens)
	}
}

// WithSheet selects the worksheet read from an Excel workbook
func WithSheet(name string) ReadOption {
	return func(o *readOptions) {
		o.sheet = name
	}
}

func newReadOptions(opts []ReadOption) *readOptions {
	o := &readOptions{nullTokens: tokenSet(config.DefaultNullTokens)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens)+1)
	set[""] = struct{}{}
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ReadFile loads a table, choosing the reader from the file extension
func ReadFile(path string, opts ...ReadOption) (*Frame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, opts...)
	default:
		return ReadCSV(path, opts...)
	}
}

// ReadCSV loads a CSV file with a header row
func ReadCSV(path string, opts ...ReadOption) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer file.Close()

	f, err := ReadCSVFrom(file, opts...)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return f, nil
}

// ReadCSVFrom parses CSV from r. The first record is the header; every
// record must have the same number of fields.
func ReadCSVFrom(r io.Reader, opts ...ReadOption) (*Frame, error) {
	o := newReadOptions(opts)

	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("malformed CSV", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("no columns to parse from file", nil)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	return buildFrame(header, records[1:], o)
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path)).
			WithContext("path", path)
	}
	return apperrors.NewStorageError("failed to open input file", err).
		WithContext("path", path)
}

// buildFrame types each column from its raw cells
func buildFrame(header []string, rows [][]string, o *readOptions) (*Frame, error) {
	names := mangleDuplicates(header)
	columns := make([]*Column, len(names))
	cells := make([]string, len(rows))
	for j, name := range names {
		for i, row := range rows {
			cells[i] = row[j]
		}
		columns[j] = inferColumn(name, cells, o.nullTokens)
	}
	return New(columns...)
}

// mangleDuplicates renames repeated header names to name.1, name.2, ...
func mangleDuplicates(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	for i, h := range header {
		n, dup := seen[h]
		seen[h] = n + 1
		if !dup {
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s.%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

// inferColumn marks null tokens as missing and makes the column numeric
// when every present cell parses as a number. An empty table yields text
// columns; a column of only missing cells is numeric.
func inferColumn(name string, cells []string, nulls map[string]struct{}) *Column {
	n := len(cells)
	valid := make([]bool, n)
	for i, cell := range cells {
		_, isNull := nulls[cell]
		valid[i] = !isNull
	}

	if n > 0 {
		nums := make([]float64, n)
		numeric := true
		for i, cell := range cells {
			if !valid[i] {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				numeric = false
				break
			}
			nums[i] = v
		}
		if numeric {
			return NewNumericColumn(name, nums, valid)
		}
	}

	text := make([]string, n)
	for i, cell := range cells {
		if valid[i] {
			text[i] = cell
		}
	}
	return NewTextColumn(name, text, valid)
}

// WriteCSV writes the frame with a header row, replacing path
func WriteCSV(path string, f *Frame) error {
	stream, err := exporter.NewCSVWriter(nil).CreateStreamWriter(path, f.Names())
	if err != nil {
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", path)
	}
	for i, record := range f.Records() {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return apperrors.NewStorageError("failed to write CSV", err).
				WithContext("path", path).
				WithContext("row", i)
		}
	}
	if err := stream.Close(); err != nil {
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", path)
	}
	return nil
}

// WriteCSVTo writes the frame with a header row to w
func WriteCSVTo(w io.Writer, f *Frame) error {
	if err := exporter.WriteRecords(w, exporter.WriteOptions{
		Headers: f.Names(),
		Records: f.Records(),
	}); err != nil {
		return apperrors.NewStorageError("failed to write CSV", err)
	}
	return nil
}
