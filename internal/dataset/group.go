package dataset

import (
	"sort"

	apperrors "nutricli/internal/errors"
)

// Group is the set of rows sharing one key value
type Group struct {
	Key  string
	Rows []int
}

// GroupBy partitions rows by the value of column key. Groups are ordered by
// ascending key (numerically for numeric columns, chronologically for
// datetimes) and keep row indices in original order. Rows with a missing
// key are dropped.
func (f *Frame) GroupBy(key string) ([]Group, error) {
	col := f.Column(key)
	if col == nil {
		return nil, apperrors.NewSchemaError(key, "not present")
	}

	layout := col.timeLayout()
	byKey := make(map[string]int)
	var groups []Group
	var firstRow []int
	for i := 0; i < f.rows; i++ {
		if !col.Valid[i] {
			continue
		}
		k := col.format(i, layout)
		g, ok := byKey[k]
		if !ok {
			g = len(groups)
			byKey[k] = g
			groups = append(groups, Group{Key: k})
			firstRow = append(firstRow, i)
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := firstRow[order[a]], firstRow[order[b]]
		switch col.Kind {
		case Numeric:
			return col.Num[ra] < col.Num[rb]
		case Datetime:
			return col.Time[ra].Before(col.Time[rb])
		default:
			return col.Text[ra] < col.Text[rb]
		}
	})

	sorted := make([]Group, len(groups))
	for i, g := range order {
		sorted[i] = groups[g]
	}
	return sorted, nil
}

// MeanBy returns the mean of the present values of column value within
// each group. Groups without present values yield ok=false.
func (f *Frame) MeanBy(groups []Group, value string) (means []float64, ok []bool, err error) {
	col, err := f.NumericColumn(value)
	if err != nil {
		return nil, nil, err
	}
	means = make([]float64, len(groups))
	ok = make([]bool, len(groups))
	for gi, g := range groups {
		sum, n := 0.0, 0
		for _, i := range g.Rows {
			if col.Valid[i] {
				sum += col.Num[i]
				n++
			}
		}
		if n > 0 {
			means[gi] = sum / float64(n)
			ok[gi] = true
		}
	}
	return means, ok, nil
}
