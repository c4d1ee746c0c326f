// Package dataset holds the in-memory table shared by every stage: typed
// columns with validity masks, CSV and XLSX loading, CSV writing and
// grouping.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "nutricli/internal/errors"
	"nutricli/internal/exporter"
)

// Frame is an ordered set of equal-length columns
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a frame from columns. All columns must have the same length
// and distinct names.
func New(columns ...*Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := f.addColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) addColumn(c *Column) error {
	if len(f.columns) > 0 && c.Len() != f.rows {
		return apperrors.NewSchemaError(c.Name,
			fmt.Sprintf("has %d rows, frame has %d", c.Len(), f.rows))
	}
	if _, exists := f.index[c.Name]; exists {
		return apperrors.NewSchemaError(c.Name, "duplicate column name")
	}
	if len(f.columns) == 0 {
		f.rows = c.Len()
	}
	f.index[c.Name] = len(f.columns)
	f.columns = append(f.columns, c)
	return nil
}

// Rows returns the number of rows
func (f *Frame) Rows() int {
	return f.rows
}

// Cols returns the number of columns
func (f *Frame) Cols() int {
	return len(f.columns)
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. The slice is shared.
func (f *Frame) Columns() []*Column {
	return f.columns
}

// Column returns the named column or nil
func (f *Frame) Column(name string) *Column {
	if i, ok := f.index[name]; ok {
		return f.columns[i]
	}
	return nil
}

// HasColumn reports whether the named column exists
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// NumericColumn returns the named column, or a schema error when it is
// absent or not numeric
func (f *Frame) NumericColumn(name string) (*Column, error) {
	c := f.Column(name)
	if c == nil {
		return nil, apperrors.NewSchemaError(name, "not present")
	}
	if c.Kind != Numeric {
		return nil, apperrors.NewSchemaError(name, fmt.Sprintf("expected numeric, found %s", c.Kind))
	}
	return c, nil
}

// SetColumn replaces the column with the same name or appends it
func (f *Frame) SetColumn(c *Column) error {
	if i, ok := f.index[c.Name]; ok {
		if c.Len() != f.rows {
			return apperrors.NewSchemaError(c.Name,
				fmt.Sprintf("has %d rows, frame has %d", c.Len(), f.rows))
		}
		f.columns[i] = c
		return nil
	}
	return f.addColumn(c)
}

// RenameColumns applies fn to every column name. Names that collide after
// renaming are rejected and the frame is left unchanged.
func (f *Frame) RenameColumns(fn func(string) string) error {
	renamed := make([]string, len(f.columns))
	index := make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		name := fn(c.Name)
		if _, exists := index[name]; exists {
			return apperrors.NewSchemaError(name, "duplicate column name after renaming")
		}
		index[name] = i
		renamed[i] = name
	}
	for i, c := range f.columns {
		c.Name = renamed[i]
	}
	f.index = index
	return nil
}

// SelectRows returns a new frame holding the given rows in order
func (f *Frame) SelectRows(indices []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.columns)), rows: len(indices)}
	for i, c := range f.columns {
		out.index[c.Name] = i
		out.columns = append(out.columns, c.take(indices))
	}
	return out
}

// RowKey returns a string identifying the exact contents of row i.
// Two rows share a key only when every cell is equal, missing cells
// included.
func (f *Frame) RowKey(i int) string {
	var b strings.Builder
	for _, c := range f.columns {
		if !c.Valid[i] {
			b.WriteString("\x00N")
		} else {
			b.WriteString("\x00V")
			switch c.Kind {
			case Numeric:
				b.WriteString(strconv.FormatUint(math.Float64bits(normalizeZero(c.Num[i])), 16))
			case Datetime:
				b.WriteString(strconv.FormatInt(c.Time[i].UnixNano(), 16))
			default:
				b.WriteString(c.Text[i])
			}
		}
		b.WriteByte('\x01')
	}
	return b.String()
}

func normalizeZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// Row returns the formatted cells of row i
func (f *Frame) Row(i int) []string {
	out := make([]string, len(f.columns))
	for j, c := range f.columns {
		out[j] = c.Cell(i)
	}
	return out
}

// Records returns every row formatted for output. Datetime layouts are
// chosen once per column.
func (f *Frame) Records() [][]string {
	layouts := make([]string, len(f.columns))
	for j, c := range f.columns {
		layouts[j] = c.timeLayout()
	}
	records := make([][]string, f.rows)
	for i := 0; i < f.rows; i++ {
		record := make([]string, len(f.columns))
		for j, c := range f.columns {
			if c.Valid[i] {
				record[j] = c.format(i, layouts[j])
			}
		}
		records[i] = record
	}
	return records
}

// Clone returns a deep copy of the frame
func (f *Frame) Clone() *Frame {
	out := &Frame{index: make(map[string]int, len(f.columns)), rows: f.rows}
	for i, c := range f.columns {
		out.index[c.Name] = i
		out.columns = append(out.columns, c.Clone())
	}
	return out
}

// ColumnInfo summarizes one column for logging
type ColumnInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	NonNull int    `json:"non_null"`
}

// Info returns the per-column kind and non-null count
func (f *Frame) Info() []ColumnInfo {
	info := make([]ColumnInfo, len(f.columns))
	for i, c := range f.columns {
		info[i] = ColumnInfo{Name: c.Name, Kind: c.Kind.String(), NonNull: c.Count()}
	}
	return info
}

// Render lays the frame out as a text table for logs
func (f *Frame) Render() string {
	return exporter.RenderTable(f.Names(), f.Records())
}
