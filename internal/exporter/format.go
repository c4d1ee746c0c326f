package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is used when every value of a datetime column is at midnight
	DateLayout = "2006-01-02"
	// DateTimeLayout is used otherwise
	DateTimeLayout = "2006-01-02 15:04:05"
)

// FormatFloat renders f the way the analysis tooling round-trips numbers:
// the shortest exact decimal, always with a fractional part, switching to
// exponent form below 1e-4 or from 1e16 upwards. NaN renders empty.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatFixed renders f with a fixed number of decimals, as used in reports
func FormatFixed(f float64, decimals int) string {
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// FormatInt formats an integer count
func FormatInt(i int) string {
	return strconv.Itoa(i)
}

// TimeLayout picks the layout for a datetime column: date only when every
// value falls on midnight
func TimeLayout(values []time.Time) string {
	for _, t := range values {
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
			return DateTimeLayout
		}
	}
	return DateLayout
}
