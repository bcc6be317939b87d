package dist

import (
	"math"
	"testing"

	"github.com/op/go-logging"
	"golang.org/x/exp/rand"
)

const smallDiff = 1e-6

func init() {
	logging.SetLevel(logging.WARNING, "dist")
}

/*** Tests if a and b are approximately equal ***/
func appreq(a, b float64) bool {
	return math.Abs(a-b) <= smallDiff
}

func TestCDFGammaExponential(tst *testing.T) {
	// shape=1 is the exponential distribution
	for _, x := range []float64{0.1, 1, 2.5, 10} {
		if r, e := CDFGamma(x, 1, 2), 1-math.Exp(-x/2); !appreq(r, e) {
			tst.Error("Expected", e, "got", r)
		}
	}
	if CDFGamma(-1, 1.5, 2) != 0 {
		tst.Error("CDF should be zero for negative values")
	}
}

func TestGammaMassSum(tst *testing.T) {
	settings := []Gamma{
		{1.5, 2, 0},
		{1.5, 2, 0.5},
		{4, 1.2, 0},
		{0.7, 5, 1},
	}
	for _, g := range settings {
		sum := 0.0
		for k := 0; k < 500; k++ {
			m := g.Mass(k)
			if m < 0 {
				tst.Error("Negative mass", m, "for", g)
			}
			sum += m
		}
		if !appreq(sum, 1) {
			tst.Error("Mass sums to", sum, "for", g)
		}
		if g.Mass(-1) != 0 {
			tst.Error("Mass at negative day")
		}
	}
}

func TestGammaMassExponential(tst *testing.T) {
	g, err := NewGamma(1, 2)
	if err != nil {
		tst.Fatal(err)
	}
	e := math.Exp(-1.5) - math.Exp(-2)
	if r := g.Mass(3); !appreq(r, e) {
		tst.Error("Expected", e, "got", r)
	}
}

func TestGammaFromMeanCV(tst *testing.T) {
	g, err := GammaFromMeanCV(4.7, 0.6)
	if err != nil {
		tst.Fatal(err)
	}
	if !appreq(g.Mean(), 4.7) {
		tst.Error("Wrong mean", g.Mean())
	}
	if _, err := GammaFromMeanCV(-1, 0.5); err == nil {
		tst.Error("Negative mean accepted")
	}
	if _, err := NewGamma(0, 1); err == nil {
		tst.Error("Zero shape accepted")
	}
}

func TestFitDiscreteGamma(tst *testing.T) {
	r := rand.New(rand.NewSource(1))
	truth := Gamma{Shape: 3, Scale: 2}
	// draw by inverting the discrete distribution function
	x := make([]int, 2000)
	for i := range x {
		u := r.Float64()
		k, c := 0, truth.Mass(0)
		for c < u && k < 1000 {
			k++
			c += truth.Mass(k)
		}
		x[i] = k
	}

	g, err := FitDiscreteGamma(x, 0)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if math.Abs(g.Mean()-truth.Mean()) > 0.3 {
		tst.Error("Fitted mean", g.Mean(), "expected about", truth.Mean())
	}
	if g.LogLikelihood(x) < truth.LogLikelihood(x)-0.5 {
		tst.Error("Fit is worse than the truth")
	}
}

func TestFitDiscreteGammaErrors(tst *testing.T) {
	if _, err := FitDiscreteGamma([]int{3}, 0); err == nil {
		tst.Error("Single interval accepted")
	}
	if _, err := FitDiscreteGamma([]int{3, -1}, 0); err == nil {
		tst.Error("Negative interval accepted")
	}
}
