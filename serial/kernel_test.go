package serial

import (
	"errors"
	"math"
	"testing"

	"bitbucket.org/Davydov/epiproj/config"
	"bitbucket.org/Davydov/epiproj/dist"
)

const smallDiff = 1e-9

type weekly struct{}

func (weekly) Mass(lag int) float64 { return 0.5 }
func (weekly) Interval() int        { return 7 }

func TestBuildDiscrete(tst *testing.T) {
	w, err := Build(Discrete{0, 2, 1, 1}, 6)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	want := []float64{0, 0, 0, 0.25, 0.25, 0.5, 0}
	if len(w) != len(want) {
		tst.Fatal("Expected", want, "got", w)
	}
	for i := range want {
		if math.Abs(w[i]-want[i]) > smallDiff {
			tst.Error("Expected", want, "got", w)
			break
		}
	}
}

func TestBuildDiscreteTruncated(tst *testing.T) {
	w, err := Build(Discrete{0, 1, 1, 1, 1}, 2)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	want := []float64{0.25, 0.25, 0}
	for i := range want {
		if math.Abs(w[i]-want[i]) > smallDiff {
			tst.Error("Expected", want, "got", w)
			break
		}
	}
}

func TestBuildDiscreteDoesNotModifyInput(tst *testing.T) {
	m := Discrete{1, 1}
	if _, err := Build(m, 3); err != nil {
		tst.Fatal("Error:", err)
	}
	if m[0] != 1 || m[1] != 1 {
		tst.Error("Input modified:", m)
	}
}

func TestBuildContinuous(tst *testing.T) {
	g, err := dist.NewGamma(1.5, 2)
	if err != nil {
		tst.Fatal(err)
	}
	tmax := 41
	w, err := Build(Continuous{g}, tmax)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if len(w) != tmax+1 {
		tst.Fatal("Wrong length", len(w))
	}
	for lag := 0; lag <= tmax; lag++ {
		if math.Abs(w[tmax-lag]-g.Mass(lag)) > smallDiff {
			tst.Error("Wrong weight at lag", lag)
		}
	}
}

func TestBuildContinuousNotNormalized(tst *testing.T) {
	half := MassFunc(func(lag int) float64 {
		if lag == 1 {
			return 0.5
		}
		return 0
	})
	w, err := Build(Continuous{half}, 3)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if w[2] != 0.5 {
		tst.Error("Masses should be used as is, got", w)
	}
}

func TestBuildErrors(tst *testing.T) {
	kernels := []Kernel{
		Continuous{weekly{}},
		Continuous{},
		Discrete{},
		Discrete{0, 0},
		Discrete{1, -1},
		Discrete{1, math.NaN()},
		nil,
	}
	for i, k := range kernels {
		_, err := Build(k, 10)
		if !errors.Is(err, config.ErrConfiguration) {
			tst.Error("Kernel", i, "expected configuration error, got", err)
		}
	}
}
