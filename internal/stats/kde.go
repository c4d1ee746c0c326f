package stats

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
)

// KDE is a Gaussian kernel density estimate over a sample
type KDE struct {
	kde *moremath.KDE
	min float64
	max float64
}

// NewKDE builds a Gaussian KDE using Scott's rule (sigma * n^-1/5) for the
// bandwidth. It returns nil when the sample has fewer than two values or
// zero spread, since no density can be drawn.
func NewKDE(x []float64) *KDE {
	if len(x) < 2 {
		return nil
	}
	sd := StdDev(x)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}

	xs := make([]float64, len(x))
	copy(xs, x)

	return &KDE{
		kde: &moremath.KDE{
			Sample:    moremath.Sample{Xs: xs},
			Kernel:    moremath.GaussianKernel,
			Bandwidth: sd * math.Pow(float64(len(xs)), -0.2),
		},
		min: Min(xs),
		max: Max(xs),
	}
}

// PDF evaluates the density at x
func (k *KDE) PDF(x float64) float64 {
	return k.kde.PDF(x)
}

// Bandwidth returns the kernel bandwidth
func (k *KDE) Bandwidth() float64 {
	return k.kde.Bandwidth
}

// Curve samples the density at n evenly spaced points across the sample
// range and returns the x and y coordinates
func (k *KDE) Curve(n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = make([]float64, n)
	ys = make([]float64, n)
	step := (k.max - k.min) / float64(n-1)
	for i := 0; i < n; i++ {
		x := k.min + step*float64(i)
		xs[i] = x
		ys[i] = k.PDF(x)
	}
	return xs, ys
}
