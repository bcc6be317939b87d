// Package dist implements continuous distributions discretized on a
// daily grid, as used for serial intervals.
package dist

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/mathext"
)

/*

IncompleteGamma returns the incomplete gamma ratio I(x,alpha) where x
is the upper limit of the integration and alpha is the shape
parameter.

*/
func IncompleteGamma(x, alpha float64) float64 {
	return mathext.GammaInc(alpha, x)
}

// CDFGamma returns the distribution function of the gamma
// distribution with the given shape and scale.
func CDFGamma(x, shape, scale float64) float64 {
	if x <= 0 {
		return 0
	}
	return IncompleteGamma(x/scale, shape)
}

// Gamma is a gamma distribution discretized on integer days. The
// mass at day k is F(k+1-W) - F(k-W), where F is the continuous
// distribution function. W=0 puts all the mass of [k, k+1) to k,
// W=0.5 centers the intervals around k.
type Gamma struct {
	Shape float64
	Scale float64
	W     float64
}

// NewGamma creates a discretized gamma distribution with W=0.
func NewGamma(shape, scale float64) (*Gamma, error) {
	g := &Gamma{Shape: shape, Scale: scale}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}

// GammaFromMeanCV creates a discretized gamma distribution from the
// mean and the coefficient of variation of the continuous one.
func GammaFromMeanCV(mean, cv float64) (*Gamma, error) {
	if mean <= 0 || cv <= 0 {
		return nil, fmt.Errorf("Mean and cv should be positive, got mean=%v, cv=%v", mean, cv)
	}
	return NewGamma(1/(cv*cv), mean*cv*cv)
}

func (g *Gamma) check() error {
	if !(g.Shape > 0) || !(g.Scale > 0) || math.IsInf(g.Shape, 0) || math.IsInf(g.Scale, 0) {
		return fmt.Errorf("Gamma shape and scale should be positive, got shape=%v, scale=%v", g.Shape, g.Scale)
	}
	if g.W < 0 || g.W > 1 {
		return errors.New("Gamma W should be in [0, 1]")
	}
	return nil
}

// Mass returns the probability of day k.
func (g *Gamma) Mass(k int) float64 {
	if k < 0 {
		return 0
	}
	lo := float64(k) - g.W
	m := CDFGamma(lo+1, g.Shape, g.Scale) - CDFGamma(lo, g.Shape, g.Scale)
	if m < 0 {
		return 0
	}
	return m
}

// Interval returns the discretization step in days.
func (g *Gamma) Interval() int {
	return 1
}

// Mean returns the mean of the continuous distribution.
func (g *Gamma) Mean() float64 {
	return g.Shape * g.Scale
}

// LogLikelihood returns the log likelihood of observed intervals.
func (g *Gamma) LogLikelihood(x []int) (lnL float64) {
	for _, k := range x {
		lnL += math.Log(g.Mass(k))
	}
	return
}

func (g *Gamma) String() string {
	return fmt.Sprintf("<discrete gamma: shape=%g, scale=%g, w=%g>", g.Shape, g.Scale, g.W)
}
