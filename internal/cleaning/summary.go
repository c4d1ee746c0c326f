package cleaning

import (
	"time"

	"nutricli/internal/stats"
)

// Imputation strategies
const (
	StrategyMode   = "mode"
	StrategyMedian = "median"
)

// Summary describes what one cleaning run changed
type Summary struct {
	Input             string          `json:"input"`
	Output            string          `json:"output"`
	RowsIn            int             `json:"rows_in"`
	RowsOut           int             `json:"rows_out"`
	Columns           int             `json:"columns"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
	Imputations       []Imputation    `json:"imputations,omitempty"`
	DatetimeColumns   []string        `json:"datetime_columns,omitempty"`
	Outliers          []OutlierReport `json:"outliers,omitempty"`
	Duration          time.Duration   `json:"duration"`
}

// Imputation records the fill applied to one column
type Imputation struct {
	Column   string `json:"column"`
	Strategy string `json:"strategy"`
	Value    string `json:"value"`
	Count    int    `json:"count"`
}

// OutlierReport records the clipping applied to one numeric column
type OutlierReport struct {
	Column string       `json:"column"`
	Bounds stats.Bounds `json:"bounds"`
	Count  int          `json:"count"`
}

// ValuesImputed returns the total number of filled cells
func (s *Summary) ValuesImputed() int {
	n := 0
	for _, imp := range s.Imputations {
		n += imp.Count
	}
	return n
}

// OutliersClipped returns the total number of clamped cells
func (s *Summary) OutliersClipped() int {
	n := 0
	for _, o := range s.Outliers {
		n += o.Count
	}
	return n
}
