// Package serial turns a serial interval distribution into the
// reversed weight vector consumed by the renewal equation.
package serial

import (
	"math"

	"github.com/gonum/floats"

	"bitbucket.org/Davydov/epiproj/config"
)

// Distribution is a serial interval distribution which can be
// evaluated at non-negative integer lags. *dist.Gamma implements it.
type Distribution interface {
	// Mass returns the probability of the lag.
	Mass(lag int) float64
	// Interval returns the length of one lag in days.
	Interval() int
}

// MassFunc adapts an ordinary function to a daily Distribution.
type MassFunc func(lag int) float64

// Mass calls f(lag).
func (f MassFunc) Mass(lag int) float64 {
	return f(lag)
}

// Interval returns 1.
func (f MassFunc) Interval() int {
	return 1
}

// Kernel is a serial interval specification. It is either a
// Continuous distribution or a Discrete mass vector.
type Kernel interface {
	// weights returns the masses of lags 0..tmax.
	weights(tmax int) ([]float64, error)
}

// Continuous is a kernel evaluated from a distribution. The masses
// are used as is, the distribution is trusted to be normalized.
type Continuous struct {
	Dist Distribution
}

// Discrete is a kernel given as masses of lags 0, 1, 2, ... It is
// normalized to sum to one.
type Discrete []float64

func (k Continuous) weights(tmax int) ([]float64, error) {
	if k.Dist == nil {
		return nil, config.Errorf("si", "no distribution")
	}
	if iv := k.Dist.Interval(); iv != 1 {
		return nil, config.Errorf("si", "interval is %d days, daily serial interval required", iv)
	}
	w := make([]float64, tmax+1)
	for lag := range w {
		m := k.Dist.Mass(lag)
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, config.Errorf("si", "invalid mass %v at lag %d", m, lag)
		}
		w[lag] = m
	}
	return w, nil
}

func (k Discrete) weights(tmax int) ([]float64, error) {
	if len(k) == 0 {
		return nil, config.Errorf("si", "empty mass vector")
	}
	for lag, m := range k {
		if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, config.Errorf("si", "invalid mass %v at lag %d", m, lag)
		}
	}
	sum := floats.Sum(k)
	if sum <= 0 {
		return nil, config.Errorf("si", "mass vector sums to zero")
	}
	norm := make([]float64, len(k))
	copy(norm, k)
	floats.Scale(1/sum, norm)

	w := make([]float64, tmax+1)
	copy(w, norm)
	return w, nil
}

// Build returns the weights of lags 0..tmax in reversed order: the
// first element is the weight of lag tmax and the last one is the
// weight of lag 0.
func Build(k Kernel, tmax int) ([]float64, error) {
	if k == nil {
		return nil, config.Errorf("si", "no serial interval")
	}
	if tmax < 0 {
		return nil, config.Errorf("si", "negative horizon %d", tmax)
	}
	w, err := k.weights(tmax)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(w)-1; i < j; i, j = i+1, j-1 {
		w[i], w[j] = w[j], w[i]
	}
	return w, nil
}
