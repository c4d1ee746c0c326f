package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		q    float64
		want float64
	}{
		{"single value", []float64{7}, 0.25, 7},
		{"median odd", []float64{3, 1, 2}, 0.5, 2},
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"first quartile interpolates", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"third quartile interpolates", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"lower edge", []float64{5, 9, 1}, 0, 1},
		{"upper edge", []float64{5, 9, 1}, 1, 9},
		{"outlier sample q3", []float64{100, 100, 100, 1e6}, 0.75, 250075},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.x, tt.q), 1e-9)
		})
	}
}

func TestQuantile_DoesNotMutate(t *testing.T) {
	x := []float64{3, 1, 2}
	Quantile(x, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestEmptyInputsAreNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
	assert.True(t, math.IsNaN(Min(nil)))
	assert.True(t, math.IsNaN(Max(nil)))

	q1, q2, q3 := Quartiles(nil)
	assert.True(t, math.IsNaN(q1) && math.IsNaN(q2) && math.IsNaN(q3))
}

func TestDescriptive(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(x), 1e-12)
	assert.InDelta(t, 2.138089935, StdDev(x), 1e-9)
	assert.Equal(t, 2.0, Min(x))
	assert.Equal(t, 9.0, Max(x))
	assert.Equal(t, 4.5, Median(x))
}

func TestCorrelation(t *testing.T) {
	tests := []struct {
		name  string
		x, y  []float64
		want  float64
		isNaN bool
	}{
		{name: "perfect positive", x: []float64{1, 2, 3}, y: []float64{2, 4, 6}, want: 1},
		{name: "perfect negative", x: []float64{1, 2, 3}, y: []float64{3, 2, 1}, want: -1},
		{name: "constant series", x: []float64{1, 1, 1}, y: []float64{1, 2, 3}, isNaN: true},
		{name: "length mismatch", x: []float64{1, 2}, y: []float64{1}, isNaN: true},
		{name: "too short", x: []float64{1}, y: []float64{1}, isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correlation(tt.x, tt.y)
			if tt.isNaN {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		wantMode  string
		wantCount int
	}{
		{"empty", nil, "", 0},
		{"clear winner", []string{"b", "a", "b"}, "b", 2},
		{"tie picks smallest", []string{"pear", "apple", "pear", "apple"}, "apple", 2},
		{"all unique picks smallest", []string{"z", "m", "c"}, "c", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, count := ModeString(tt.values)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestIQRBoundsAndClamp(t *testing.T) {
	b := IQRBounds([]float64{1, 2, 3, 4}, 1.5)
	// Q1=1.75, Q3=3.25, IQR=1.5
	assert.InDelta(t, -0.5, b.Lower, 1e-12)
	assert.InDelta(t, 5.5, b.Upper, 1e-12)

	assert.Equal(t, -0.5, Clamp(-10, b))
	assert.Equal(t, 5.5, Clamp(10, b))
	assert.Equal(t, 3.0, Clamp(3, b))
	assert.True(t, b.Contains(5.5))
	assert.False(t, b.Contains(5.6))
}

func TestKDE(t *testing.T) {
	assert.Nil(t, NewKDE([]float64{1}))
	assert.Nil(t, NewKDE([]float64{2, 2, 2}))

	x := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	kde := NewKDE(x)
	require.NotNil(t, kde)
	assert.Greater(t, kde.Bandwidth(), 0.0)

	// density peaks near the centre of a symmetric sample
	assert.Greater(t, kde.PDF(3), kde.PDF(1))
	assert.Greater(t, kde.PDF(3), kde.PDF(5))

	xs, ys := kde.Curve(50)
	require.Len(t, xs, 50)
	require.Len(t, ys, 50)
	assert.Equal(t, 1.0, xs[0])
	assert.InDelta(t, 5.0, xs[49], 1e-12)
	for _, y := range ys {
		assert.GreaterOrEqual(t, y, 0.0)
	}
}
