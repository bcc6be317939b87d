package dist

import (
	"errors"
	"fmt"
	"math"

	lbfgsb "github.com/idavydov/go-lbfgsb"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("dist")

const (
	minPar = 1e-3
	maxPar = 1e3
	// tiny replaces zero masses in the likelihood so the objective
	// stays finite.
	tiny = 1e-300
)

// gammaFit is the negative log likelihood of a discretized gamma,
// minimized by L-BFGS-B.
type gammaFit struct {
	x     []int
	w     float64
	dH    float64
	grad  []float64
	calls int
}

func (f *gammaFit) EvaluateFunction(par []float64) float64 {
	f.calls++
	g := Gamma{Shape: par[0], Scale: par[1], W: f.w}
	lnL := 0.0
	for _, k := range f.x {
		lnL += math.Log(math.Max(g.Mass(k), tiny))
	}
	return -lnL
}

func (f *gammaFit) EvaluateGradient(par []float64) []float64 {
	if f.grad == nil {
		f.grad = make([]float64, len(par))
	}
	tmp := make([]float64, len(par))
	for i := range par {
		copy(tmp, par)
		tmp[i] = math.Max(par[i]-f.dH, minPar)
		l1 := f.EvaluateFunction(tmp)
		lo := tmp[i]
		tmp[i] = math.Min(par[i]+f.dH, maxPar)
		l2 := f.EvaluateFunction(tmp)
		f.grad[i] = (l2 - l1) / (tmp[i] - lo)
	}
	return f.grad
}

func (f *gammaFit) logger(info *lbfgsb.OptimizationIterationInformation) {
	log.Debugf("iter=%d, -lnL=%f, x=%v", info.Iteration, info.F, info.X)
}

// FitDiscreteGamma finds the maximum likelihood discretized gamma
// (with the given W) for observed serial intervals in days.
// The starting point is the method of moments estimate.
func FitDiscreteGamma(x []int, w float64) (*Gamma, error) {
	if len(x) < 2 {
		return nil, errors.New("At least two intervals are required")
	}
	mean, sq := 0.0, 0.0
	for _, k := range x {
		if k < 0 {
			return nil, fmt.Errorf("Negative interval: %d", k)
		}
		v := float64(k) + 0.5 - w
		mean += v
		sq += v * v
	}
	n := float64(len(x))
	mean /= n
	vr := sq/n - mean*mean
	if vr <= 0 {
		vr = mean
	}
	start := []float64{
		clamp(mean*mean/vr, minPar, maxPar),
		clamp(vr/mean, minPar, maxPar),
	}

	f := &gammaFit{x: x, w: w, dH: 1e-6}
	opt := new(lbfgsb.Lbfgsb)
	opt.SetApproximationSize(10)
	opt.SetFTolerance(1e-9)
	opt.SetGTolerance(1e-9)
	opt.SetBounds([][2]float64{{minPar, maxPar}, {minPar, maxPar}})
	opt.SetLogger(f.logger)

	res, exitStatus := opt.Minimize(f, start)
	log.Debugf("Exit status: %v, function calls: %d", exitStatus, f.calls)
	if exitStatus.Code != lbfgsb.SUCCESS && exitStatus.Code != lbfgsb.APPROXIMATE {
		return nil, fmt.Errorf("Gamma fit failed: %v", exitStatus.Message)
	}

	g := &Gamma{Shape: res.X[0], Scale: res.X[1], W: w}
	if err := g.check(); err != nil {
		return nil, err
	}
	log.Infof("Fitted %v, lnL=%f", g, -res.F)
	return g, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
