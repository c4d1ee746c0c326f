package dataset

import (
	"time"

	"nutricli/internal/exporter"
)

// Kind is the value type held by a column
type Kind int

const (
	Text Kind = iota
	Numeric
	Datetime
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Datetime:
		return "datetime"
	default:
		return "text"
	}
}

// Column is a named, typed vector with a validity mask.
// Only the slice matching Kind is populated.
type Column struct {
	Name  string
	Kind  Kind
	Text  []string
	Num   []float64
	Time  []time.Time
	Valid []bool
}

// NewTextColumn creates a text column; valid may be nil for all-present
func NewTextColumn(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Kind: Text, Text: values, Valid: validMask(len(values), valid)}
}

// NewNumericColumn creates a numeric column; valid may be nil for all-present
func NewNumericColumn(name string, values []float64, valid []bool) *Column {
	return &Column{Name: name, Kind: Numeric, Num: values, Valid: validMask(len(values), valid)}
}

// NewDatetimeColumn creates a datetime column; valid may be nil for all-present
func NewDatetimeColumn(name string, values []time.Time, valid []bool) *Column {
	return &Column{Name: name, Kind: Datetime, Time: values, Valid: validMask(len(values), valid)}
}

func validMask(n int, valid []bool) []bool {
	if valid != nil {
		return valid
	}
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsNull reports whether cell i is missing
func (c *Column) IsNull(i int) bool {
	return !c.Valid[i]
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Count returns the number of present cells
func (c *Column) Count() int {
	return c.Len() - c.NullCount()
}

// NumericValues returns the present values of a numeric column in row order
func (c *Column) NumericValues() []float64 {
	if c.Kind != Numeric {
		return nil
	}
	out := make([]float64, 0, c.Len())
	for i, v := range c.Num {
		if c.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns the formatted present values in row order
func (c *Column) Strings() []string {
	out := make([]string, 0, c.Len())
	layout := c.timeLayout()
	for i := 0; i < c.Len(); i++ {
		if c.Valid[i] {
			out = append(out, c.format(i, layout))
		}
	}
	return out
}

// Cell returns the formatted value at row i, or "" when missing
func (c *Column) Cell(i int) string {
	if !c.Valid[i] {
		return ""
	}
	return c.format(i, c.timeLayout())
}

func (c *Column) format(i int, layout string) string {
	switch c.Kind {
	case Numeric:
		return exporter.FormatFloat(c.Num[i])
	case Datetime:
		return c.Time[i].Format(layout)
	default:
		return c.Text[i]
	}
}

// timeLayout picks one layout for the whole column so values line up
func (c *Column) timeLayout() string {
	if c.Kind != Datetime {
		return ""
	}
	present := make([]time.Time, 0, c.Len())
	for i, t := range c.Time {
		if c.Valid[i] {
			present = append(present, t)
		}
	}
	return exporter.TimeLayout(present)
}

// Clone returns a deep copy of the column
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	out.Valid = append([]bool(nil), c.Valid...)
	switch c.Kind {
	case Numeric:
		out.Num = append([]float64(nil), c.Num...)
	case Datetime:
		out.Time = append([]time.Time(nil), c.Time...)
	default:
		out.Text = append([]string(nil), c.Text...)
	}
	return out
}

// take returns a new column holding the given rows in order
func (c *Column) take(indices []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(indices))}
	switch c.Kind {
	case Numeric:
		out.Num = make([]float64, len(indices))
	case Datetime:
		out.Time = make([]time.Time, len(indices))
	default:
		out.Text = make([]string, len(indices))
	}
	for j, i := range indices {
		out.Valid[j] = c.Valid[i]
		switch c.Kind {
		case Numeric:
			out.Num[j] = c.Num[i]
		case Datetime:
			out.Time[j] = c.Time[i]
		default:
			out.Text[j] = c.Text[i]
		}
	}
	return out
}
