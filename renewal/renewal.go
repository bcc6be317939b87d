// Package renewal projects future incidence with a branching process
// driven by the renewal equation. Every day the expected count of a
// trajectory is its reproduction number times the convolution of all
// previous counts with the serial interval; the count itself is drawn
// from a Poisson or a negative binomial distribution.
package renewal

import (
	"runtime"
	"time"

	"github.com/gonum/blas/blas64"
	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"
	"golang.org/x/exp/rand"

	"bitbucket.org/Davydov/epiproj/config"
	"bitbucket.org/Davydov/epiproj/incidence"
	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/reproduction"
	"bitbucket.org/Davydov/epiproj/serial"
)

var log = logging.MustGetLogger("renewal")

// MaxExpected is the largest expected or drawn daily count.
const MaxExpected = projection.MaxCount

// Simulation is a validated projection run. Run can be called
// several times, every call starts from the observed data.
type Simulation struct {
	settings Settings
	dates    []time.Time
	observed []int
	// ws are the reversed serial interval weights of lags
	// tmax, ..., 1, 0.
	ws      []float64
	tmax    int
	periods *reproduction.Periods

	// traj has one row per observed and simulated day and one
	// column per trajectory.
	traj *mat64.Dense
	// rs are the reproduction numbers used for every simulated day
	// and trajectory during the last run.
	rs *mat64.Dense
	// current reproduction number of every trajectory
	current []float64
}

// New validates the inputs and prepares the serial interval kernel
// and the reproduction number periods. No random numbers are drawn.
func New(x *incidence.Incidence, r reproduction.Spec, si serial.Kernel, s Settings) (*Simulation, error) {
	if x == nil {
		return nil, config.Errorf("x", "not an incidence")
	}
	if x.Interval() != 1 {
		return nil, config.Errorf("x", "daily incidence required, got interval of %d days", x.Interval())
	}
	if x.NGroups() != 1 {
		return nil, config.Errorf("x", "single group incidence required, got %d groups", x.NGroups())
	}
	if err := s.check(); err != nil {
		return nil, err
	}

	nObs := x.Len()
	tmax := s.NDays + nObs - 1
	ws, err := serial.Build(si, tmax)
	if err != nil {
		return nil, err
	}
	periods, err := reproduction.Resolve(r, s.TimeChange, s.NDays, nObs+1)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, s.NDays)
	last := x.Last()
	for d := range dates {
		dates[d] = last.AddDate(0, 0, d+1)
	}

	s.TimeChange = append([]int(nil), s.TimeChange...)
	return &Simulation{
		settings: s,
		dates:    dates,
		observed: x.Counts(0),
		ws:       ws,
		tmax:     tmax,
		periods:  periods,
	}, nil
}

// Settings returns the settings of the simulation.
func (sim *Simulation) Settings() Settings {
	return sim.settings
}

// Periods returns the reproduction number periods.
func (sim *Simulation) Periods() *reproduction.Periods {
	return sim.periods
}

// R returns the reproduction numbers used in the last run, one row per
// simulated day and one column per trajectory. It is nil before the
// first run and after a failed one.
func (sim *Simulation) R() *mat64.Dense {
	if sim.rs == nil {
		return nil
	}
	return mat64.DenseCopyOf(sim.rs)
}

// Run simulates all the trajectories. With a single thread every
// random number comes from rng in a fixed order. With several threads
// every trajectory gets its own generator seeded from rng, the result
// does not depend on the number of threads.
//
// Run fails if an expected count grows beyond MaxExpected, no
// projection is returned in this case.
func (sim *Simulation) Run(rng *rand.Rand) (*projection.Projection, error) {
	s := sim.settings
	nObs := len(sim.observed)
	sim.traj = mat64.NewDense(nObs+s.NDays, s.NSim, nil)
	sim.rs = mat64.NewDense(s.NDays, s.NSim, nil)
	sim.current = make([]float64, s.NSim)

	for i, c := range sim.observed {
		row := sim.traj.RawRowView(i)
		for j := range row {
			row[j] = float64(c)
		}
	}

	var gens []*rand.Rand
	if s.Threads > 1 {
		gens = make([]*rand.Rand, s.NSim)
		for j := range gens {
			gens[j] = rand.New(rand.NewSource(rng.Uint64()))
		}
	}

	log.Infof("Simulating %d trajectories over %d days (%s model, %d period(s), fixed R within periods: %v)",
		s.NSim, s.NDays, s.Model, sim.periods.NPeriods(), s.FixWithin)

	entered := -1
	for d := 0; d < s.NDays; d++ {
		period := sim.periods.Index[d]
		drawR := !s.FixWithin || period != entered
		if period != entered {
			log.Debugf("Day %d: period %d", d+1, period+1)
			entered = period
		}
		if gens == nil {
			if drawR {
				sim.current = reproduction.Sample(rng, sim.periods.Pool(d), s.NSim, sim.current)
			}
			for j := 0; j < s.NSim; j++ {
				if err := sim.step(d, j, false, rng); err != nil {
					sim.rs = nil
					return nil, err
				}
			}
		} else if err := sim.parallelStep(d, drawR, gens); err != nil {
			sim.rs = nil
			return nil, err
		}
	}

	out := mat64.NewDense(s.NDays, s.NSim, nil)
	for d := 0; d < s.NDays; d++ {
		copy(out.RawRowView(d), sim.traj.RawRowView(nObs+d))
	}
	return projection.New(sim.dates, out, false)
}

// parallelStep simulates day d of all the trajectories using the
// per-trajectory generators.
func (sim *Simulation) parallelStep(d int, drawR bool, gens []*rand.Rand) error {
	nSim := sim.settings.NSim
	nWorkers := sim.settings.Threads
	if nWorkers > runtime.GOMAXPROCS(0) {
		nWorkers = runtime.GOMAXPROCS(0)
	}
	done := make(chan struct{}, nWorkers)
	tasks := make(chan int, nSim)
	errs := make([]error, nSim)

	for i := 0; i < nWorkers; i++ {
		go func() {
			for j := range tasks {
				errs[j] = sim.step(d, j, drawR, gens[j])
			}
			done <- struct{}{}
		}()
	}

	for j := 0; j < nSim; j++ {
		tasks <- j
	}
	close(tasks)

	for i := 0; i < nWorkers; i++ {
		<-done
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// step draws the count of trajectory j on simulated day d (0-based).
// Only row nObs+d and column j are written.
func (sim *Simulation) step(d, j int, drawR bool, rng *rand.Rand) error {
	if drawR {
		sim.current[j] = reproduction.Draw(rng, sim.periods.Pool(d))
	}
	r := sim.current[j]
	sim.rs.Set(d, j, r)

	mu := r * sim.forceOfInfection(d, j)
	// also catches NaN
	if !(mu <= MaxExpected) {
		return config.Errorf("R", "expected count %g on day %d of trajectory %d exceeds %g, "+
			"use smaller reproduction numbers or fewer days", mu, d+1, j+1, float64(MaxExpected))
	}
	v := sim.settings.Model.draw(rng, mu, sim.settings.Size)
	if !(v <= MaxExpected) {
		return config.Errorf("R", "count %g on day %d of trajectory %d exceeds %g, "+
			"use smaller reproduction numbers or fewer days", v, d+1, j+1, float64(MaxExpected))
	}
	raw := sim.traj.RawMatrix()
	raw.Data[(len(sim.observed)+d)*raw.Stride+j] = v
	return nil
}

// forceOfInfection convolves all the counts of trajectory j before
// simulated day d with the serial interval: the count of day i gets
// the weight of lag a-i, where a is the absolute index of day d.
func (sim *Simulation) forceOfInfection(d, j int) float64 {
	a := len(sim.observed) + d
	raw := sim.traj.RawMatrix()
	return blas64.Implementation().Ddot(a, sim.ws[sim.tmax-a:sim.tmax], 1, raw.Data[j:], raw.Stride)
}

// Project validates the inputs, runs the simulation and returns the
// projection.
func Project(x *incidence.Incidence, r reproduction.Spec, si serial.Kernel, s Settings, rng *rand.Rand) (*projection.Projection, error) {
	sim, err := New(x, r, si, s)
	if err != nil {
		return nil, err
	}
	return sim.Run(rng)
}
