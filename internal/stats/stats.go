// Package stats provides the closed-form statistics used by the pipeline
// stages. Callers pass only valid (non-missing) values.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantile returns the q-th quantile (0 <= q <= 1) of x using linear
// interpolation between the closest ranks. x is not modified.
// Returns NaN for an empty slice.
func Quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	return quantileSorted(cp, q)
}

// quantileSorted is Quantile on an already sorted slice
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	rank := q * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Quartiles returns Q1, the median and Q3 of x in one sort
func Quartiles(x []float64) (q1, q2, q3 float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	return quantileSorted(cp, 0.25), quantileSorted(cp, 0.5), quantileSorted(cp, 0.75)
}

// Median returns the median value of the slice (allocates a copy)
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// Mean returns the arithmetic mean, or NaN for an empty slice
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two values yield NaN.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// Min returns the smallest value, or NaN for an empty slice
func Min(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Min(x)
}

// Max returns the largest value, or NaN for an empty slice
func Max(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Max(x)
}

// Correlation returns the Pearson correlation coefficient of x and y.
// Mismatched lengths, fewer than two pairs or a constant series yield NaN.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	if floats.Min(x) == floats.Max(x) || floats.Min(y) == floats.Max(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// ModeString returns the most frequent value and its count. Ties resolve to
// the lexicographically smallest value.
func ModeString(values []string) (string, int) {
	if len(values) == 0 {
		return "", 0
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	mode, best := "", 0
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, best
}

// Bounds is a closed clipping interval
type Bounds struct {
	Lower float64
	Upper float64
}

// IQRBounds returns [Q1 - k*IQR, Q3 + k*IQR] for x
func IQRBounds(x []float64, k float64) Bounds {
	q1, _, q3 := Quartiles(x)
	iqr := q3 - q1
	return Bounds{Lower: q1 - k*iqr, Upper: q3 + k*iqr}
}

// Contains reports whether v lies inside the bounds
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Clamp limits v to the bounds
func Clamp(v float64, b Bounds) float64 {
	if v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}
