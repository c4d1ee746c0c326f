package insights

import (
	"math"

	"nutricli/internal/dataset"
	"nutricli/internal/exporter"
)

// Table holds one mean per nutrient for every category, ordered by category
type Table struct {
	KeyColumn string
	Nutrients []string
	Rows      []Row
}

// Row is the nutrient means of one category. NaN marks a category with no
// values for that nutrient.
type Row struct {
	Category string
	Means    []float64
}

// Headers returns the CSV header: the key column followed by the nutrients
func (t *Table) Headers() []string {
	return append([]string{t.KeyColumn}, t.Nutrients...)
}

// Records returns the table rows formatted for output
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		record := make([]string, 0, len(r.Means)+1)
		record = append(record, r.Category)
		for _, m := range r.Means {
			record = append(record, exporter.FormatFloat(m))
		}
		records[i] = record
	}
	return records
}

// Mean returns the mean of nutrient for category and whether it exists
func (t *Table) Mean(category, nutrient string) (float64, bool) {
	col := -1
	for j, n := range t.Nutrients {
		if n == nutrient {
			col = j
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.Category == category {
			return r.Means[col], !math.IsNaN(r.Means[col])
		}
	}
	return 0, false
}

// ExtremeRows returns the rows whose value in column equals the column
// maximum and the rows equal to the minimum, each in original order
func ExtremeRows(f *dataset.Frame, column string) (maxRows, minRows *dataset.Frame, err error) {
	col, err := f.NumericColumn(column)
	if err != nil {
		return nil, nil, err
	}

	hi, lo := math.Inf(-1), math.Inf(1)
	present := false
	for i, v := range col.Num {
		if !col.Valid[i] {
			continue
		}
		present = true
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	if !present {
		return f.SelectRows(nil), f.SelectRows(nil), nil
	}

	var hiIdx, loIdx []int
	for i, v := range col.Num {
		if !col.Valid[i] {
			continue
		}
		if v == hi {
			hiIdx = append(hiIdx, i)
		}
		if v == lo {
			loIdx = append(loIdx, i)
		}
	}
	return f.SelectRows(hiIdx), f.SelectRows(loIdx), nil
}

// GroupMeans averages each nutrient within every category of key,
// skipping missing values. Every nutrient must be a numeric column.
func GroupMeans(f *dataset.Frame, key string, nutrients []string) (*Table, error) {
	groups, err := f.GroupBy(key)
	if err != nil {
		return nil, err
	}

	table := &Table{
		KeyColumn: key,
		Nutrients: append([]string(nil), nutrients...),
		Rows:      make([]Row, len(groups)),
	}
	for gi, g := range groups {
		table.Rows[gi] = Row{Category: g.Key, Means: make([]float64, len(nutrients))}
	}

	for j, nutrient := range nutrients {
		means, ok, err := f.MeanBy(groups, nutrient)
		if err != nil {
			return nil, err
		}
		for gi := range groups {
			if ok[gi] {
				table.Rows[gi].Means[j] = means[gi]
			} else {
				table.Rows[gi].Means[j] = math.NaN()
			}
		}
	}
	return table, nil
}
