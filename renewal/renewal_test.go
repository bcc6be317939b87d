package renewal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"
	"golang.org/x/exp/rand"

	"bitbucket.org/Davydov/epiproj/config"
	"bitbucket.org/Davydov/epiproj/dist"
	"bitbucket.org/Davydov/epiproj/incidence"
	"bitbucket.org/Davydov/epiproj/projection"
	"bitbucket.org/Davydov/epiproj/reproduction"
	"bitbucket.org/Davydov/epiproj/serial"
)

var observed = []int{0, 2, 2, 3, 3, 5, 5, 5, 6, 6, 6, 6}

func init() {
	logging.SetLevel(logging.WARNING, "renewal")
}

func daily(tst *testing.T, counts []int) *incidence.Incidence {
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(counts))
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	x, err := incidence.New(dates, counts)
	if err != nil {
		tst.Fatal("Error creating incidence:", err)
	}
	return x
}

func gammaSI(tst *testing.T) serial.Kernel {
	g, err := dist.NewGamma(1.5, 2)
	if err != nil {
		tst.Fatal(err)
	}
	return serial.Continuous{Dist: g}
}

func uniformPool(seed uint64, n int, lo, hi float64) reproduction.SinglePeriod {
	rng := rand.New(rand.NewSource(seed))
	pool := make(reproduction.SinglePeriod, n)
	for i := range pool {
		pool[i] = lo + (hi-lo)*rng.Float64()
	}
	return pool
}

func settings(nsim, ndays int) Settings {
	s := DefaultSettings()
	s.NSim = nsim
	s.NDays = ndays
	return s
}

func TestProjectShape(tst *testing.T) {
	x := daily(tst, observed)
	p, err := Project(x, uniformPool(1, 1000, 0.8, 1.9), gammaSI(tst), settings(100, 30),
		rand.New(rand.NewSource(1)))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	ndays, nsim := p.Dims()
	if ndays != 30 || nsim != 100 {
		tst.Fatal("Expected 30x100, got", ndays, nsim)
	}
	dates := p.Dates()
	for i, d := range dates {
		if e := x.Last().AddDate(0, 0, i+1); !d.Equal(e) {
			tst.Error("Date", i, "expected", e, "got", d)
		}
	}
	for i := 0; i < ndays; i++ {
		for _, v := range p.Row(i) {
			if v < 0 {
				tst.Fatal("Negative count", v)
			}
		}
	}
	if p.IsCumulative() {
		tst.Error("Projection should not be cumulative")
	}
}

func TestFirstDayExpectation(tst *testing.T) {
	x := daily(tst, observed)
	pool := uniformPool(2, 1000, 0.8, 1.9)
	g, _ := dist.NewGamma(1.5, 2)

	conv := 0.0
	for i, c := range observed {
		conv += g.Mass(len(observed)-i) * float64(c)
	}
	meanR := 0.0
	for _, r := range pool {
		meanR += r
	}
	meanR /= float64(len(pool))

	p, err := Project(x, pool, serial.Continuous{Dist: g}, settings(4000, 1), rand.New(rand.NewSource(3)))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	mean := 0.0
	for _, v := range p.Row(0) {
		mean += float64(v)
	}
	mean /= float64(p.NSim())

	expected := meanR * conv
	tst.Log("mean=", mean, ", expected=", expected)
	if math.Abs(mean-expected) > 0.1*expected {
		tst.Error("Expected first day mean about", expected, "got", mean)
	}
}

func TestForceOfInfection(tst *testing.T) {
	x := daily(tst, []int{1, 2, 3})
	s := settings(5, 2)
	sim, err := New(x, reproduction.SinglePeriod{1}, serial.Discrete{0, 0.5, 0.5}, s)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	p, err := sim.Run(rand.New(rand.NewSource(1)))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	for j := 0; j < s.NSim; j++ {
		if f := sim.forceOfInfection(0, j); math.Abs(f-2.5) > 1e-12 {
			tst.Error("Expected force of infection 2.5, got", f)
		}
		e := 0.5*float64(p.At(0, j)) + 0.5*3
		if f := sim.forceOfInfection(1, j); math.Abs(f-e) > 1e-12 {
			tst.Error("Expected force of infection", e, "got", f)
		}
	}
}

func TestReproducible(tst *testing.T) {
	x := daily(tst, observed)
	pool := uniformPool(1, 100, 0.8, 1.9)
	for _, threads := range []int{1, 3} {
		s := settings(50, 20)
		s.Threads = threads
		s.Model = NegBin
		p1, err := Project(x, pool, gammaSI(tst), s, rand.New(rand.NewSource(7)))
		if err != nil {
			tst.Fatal("Error:", err)
		}
		p2, _ := Project(x, pool, gammaSI(tst), s, rand.New(rand.NewSource(7)))
		if !p1.Equal(p2) {
			tst.Error("Projections differ for the same seed, threads =", threads)
		}
	}
}

func TestThreadsIndependent(tst *testing.T) {
	x := daily(tst, observed)
	pool := uniformPool(1, 100, 0.8, 1.9)
	var res []*projection.Projection
	for _, threads := range []int{2, 5} {
		s := settings(40, 15)
		s.Threads = threads
		p, err := Project(x, pool, gammaSI(tst), s, rand.New(rand.NewSource(11)))
		if err != nil {
			tst.Fatal("Error:", err)
		}
		res = append(res, p)
	}
	for i := 0; i < 15; i++ {
		a, b := res[0].Row(i), res[1].Row(i)
		for j := range a {
			if a[j] != b[j] {
				tst.Fatal("Result depends on the number of threads")
			}
		}
	}
}

func TestThreadsIndependentPeriods(tst *testing.T) {
	x := daily(tst, observed)
	pools := reproduction.MultiPeriod{{1, 1.2}, {0.8, 0.9, 1.1}, {0.5, 0.6, 0.7}}
	var res []*projection.Projection
	var rs []*Simulation
	for _, threads := range []int{4, 2} {
		s := settings(25, 12)
		s.Threads = threads
		s.FixWithin = true
		s.TimeChange = []int{1, 5}
		sim, err := New(x, pools, gammaSI(tst), s)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		p, err := sim.Run(rand.New(rand.NewSource(13)))
		if err != nil {
			tst.Fatal("Error:", err)
		}
		res = append(res, p)
		rs = append(rs, sim)
	}
	if !res[0].Equal(res[1]) {
		tst.Fatal("Result depends on the number of threads")
	}

	r := rs[0].R()
	if !mat64.Equal(r, rs[1].R()) {
		tst.Fatal("Reproduction numbers depend on the number of threads")
	}
	for j := 0; j < 25; j++ {
		for d := 0; d < 12; d++ {
			pool := pools[1]
			if d >= 4 {
				pool = pools[2]
			}
			if !inPool(r.At(d, j), pool) {
				tst.Fatal("Day", d+1, "R", r.At(d, j), "not from pool", pool)
			}
			if d != 0 && d != 4 && r.At(d, j) != r.At(d-1, j) {
				tst.Fatal("R changed within a period for trajectory", j, "day", d+1)
			}
		}
	}
}

func inPool(v float64, pool []float64) bool {
	for _, p := range pool {
		if v == p {
			return true
		}
	}
	return false
}

func TestRunTooLarge(tst *testing.T) {
	x := daily(tst, []int{10})
	si := serial.Discrete{0, 1}
	cases := []struct {
		r     float64
		ndays int
		model Model
	}{
		{2, 70, Poisson},
		{2, 70, NegBin},
		{40, 200, Poisson},
		{40, 200, NegBin},
	}
	for _, set := range cases {
		for _, threads := range []int{1, 3} {
			s := settings(20, set.ndays)
			s.Model = set.model
			s.Threads = threads
			p, err := Project(x, reproduction.SinglePeriod{set.r}, si, s, rand.New(rand.NewSource(1)))
			if err == nil {
				tst.Fatal("Expected an error for R =", set.r, "over", set.ndays, "days, got", p.Row(p.NDays()-1))
			}
			if !errors.Is(err, config.ErrConfiguration) {
				tst.Error("Expected a configuration error, got", err)
			}
			if p != nil {
				tst.Error("Partial projection returned")
			}
		}
	}

	// still below the limit
	p, err := Project(x, reproduction.SinglePeriod{2}, si, settings(2, 40), rand.New(rand.NewSource(1)))
	if err != nil {
		tst.Fatal("Error:", err)
	}
	for i := 0; i < p.NDays(); i++ {
		for _, v := range p.Row(i) {
			if v < 0 || v > MaxExpected {
				tst.Fatal("Invalid count", v, "on day", i+1)
			}
		}
	}
}

func TestFixWithin(tst *testing.T) {
	x := daily(tst, observed)
	pools := reproduction.MultiPeriod{{1, 1.5, 2, 2.5}, {0.5, 0.6, 0.7}}
	s := settings(30, 20)
	s.FixWithin = true
	s.TimeChange = []int{10}
	sim, err := New(x, pools, gammaSI(tst), s)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if _, err := sim.Run(rand.New(rand.NewSource(5))); err != nil {
		tst.Fatal("Error:", err)
	}
	r := sim.R()
	for j := 0; j < s.NSim; j++ {
		for d := 1; d < s.NDays; d++ {
			if d == 9 {
				continue
			}
			if r.At(d, j) != r.At(d-1, j) {
				tst.Fatal("R changed within a period for trajectory", j, "day", d+1)
			}
		}
		if r.At(0, j) < 1 || r.At(19, j) > 0.7 {
			tst.Error("R drawn from a wrong pool:", r.At(0, j), r.At(19, j))
		}
	}
}

func TestResampleDaily(tst *testing.T) {
	x := daily(tst, observed)
	s := settings(30, 20)
	sim, err := New(x, reproduction.SinglePeriod{1, 1.5, 2}, gammaSI(tst), s)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if _, err := sim.Run(rand.New(rand.NewSource(5))); err != nil {
		tst.Fatal("Error:", err)
	}
	r := sim.R()
	changed := false
	for j := 0; j < s.NSim && !changed; j++ {
		for d := 1; d < s.NDays; d++ {
			if r.At(d, j) != r.At(0, j) {
				changed = true
				break
			}
		}
	}
	if !changed {
		tst.Error("R was never resampled")
	}
}

func TestSingleR(tst *testing.T) {
	x := daily(tst, observed)
	for _, fix := range []bool{false, true} {
		s := settings(20, 60)
		s.FixWithin = fix
		sim, err := New(x, reproduction.SinglePeriod{2.1}, gammaSI(tst), s)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if _, err := sim.Run(rand.New(rand.NewSource(1))); err != nil {
			tst.Fatal("Error:", err)
		}
		r := sim.R()
		for d := 0; d < s.NDays; d++ {
			for j := 0; j < s.NSim; j++ {
				if r.At(d, j) != 2.1 {
					tst.Fatal("Expected R=2.1, got", r.At(d, j))
				}
			}
		}
	}
}

func TestNegBinZeroMean(tst *testing.T) {
	x := daily(tst, []int{0, 0, 0, 0})
	for _, size := range []float64{1e-6, 0.03, 1, 100} {
		s := settings(50, 30)
		s.Model = NegBin
		s.Size = size
		p, err := Project(x, reproduction.SinglePeriod{1.5, 3}, gammaSI(tst), s, rand.New(rand.NewSource(1)))
		if err != nil {
			tst.Fatal("Error:", err)
		}
		for i := 0; i < p.NDays(); i++ {
			for _, v := range p.Row(i) {
				if v != 0 {
					tst.Fatal("Expected zero counts, got", v, "size =", size)
				}
			}
		}
	}
}

func TestDispersion(tst *testing.T) {
	if dispersion(0, 0.03) != 1 {
		tst.Error("Zero mean should give size 1")
	}
	if math.Abs(dispersion(10, 0.03)-0.3) > 1e-12 {
		tst.Error("Expected size 0.3, got", dispersion(10, 0.03))
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if negBinomial(rng, 0, 1) != 0 || poisson(rng, 0) != 0 {
			tst.Fatal("Zero mean draw should be zero")
		}
	}
}

func TestDrawMoments(tst *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 20000
	settings := []struct {
		m        Model
		mu, size float64
		variance float64
	}{
		{Poisson, 4, 0, 4},
		{NegBin, 10, 0.5, 10 + 10*10/5.},
	}
	for _, s := range settings {
		sum, sq := 0.0, 0.0
		for i := 0; i < n; i++ {
			v := s.m.draw(rng, s.mu, s.size)
			if v < 0 || v != math.Trunc(v) {
				tst.Fatal("Invalid count", v)
			}
			sum += v
			sq += v * v
		}
		mean := sum / float64(n)
		vr := sq/float64(n) - mean*mean
		if math.Abs(mean-s.mu) > 0.05*s.mu {
			tst.Error(s.m, "expected mean", s.mu, "got", mean)
		}
		if math.Abs(vr-s.variance) > 0.15*s.variance {
			tst.Error(s.m, "expected variance", s.variance, "got", vr)
		}
	}
}

func TestNewErrors(tst *testing.T) {
	x := daily(tst, observed)
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	weekly, err := incidence.New([]time.Time{start, start.AddDate(0, 0, 7)}, []int{1, 2})
	if err != nil {
		tst.Fatal(err)
	}
	grouped, err := incidence.NewGrouped([]time.Time{start, start.AddDate(0, 0, 1)},
		[][]int{{1, 2}, {3, 4}}, nil)
	if err != nil {
		tst.Fatal(err)
	}
	pool := reproduction.SinglePeriod{1.5}

	mod := func(f func(*Settings)) Settings {
		s := settings(10, 10)
		f(&s)
		return s
	}

	cases := []struct {
		name string
		x    *incidence.Incidence
		r    reproduction.Spec
		si   serial.Kernel
		s    Settings
	}{
		{"nil incidence", nil, pool, gammaSI(tst), settings(10, 10)},
		{"weekly", weekly, pool, gammaSI(tst), settings(10, 10)},
		{"groups", grouped, pool, gammaSI(tst), settings(10, 10)},
		{"n_sim", x, pool, gammaSI(tst), settings(0, 10)},
		{"n_days", x, pool, gammaSI(tst), settings(10, 0)},
		{"size", x, pool, gammaSI(tst), mod(func(s *Settings) { s.Model = NegBin; s.Size = 0 })},
		{"model", x, pool, gammaSI(tst), mod(func(s *Settings) { s.Model = Model(7) })},
		{"pools", x, reproduction.MultiPeriod{{1}, {2}}, gammaSI(tst), mod(func(s *Settings) { s.TimeChange = []int{2, 4} })},
		{"bare", x, reproduction.SinglePeriod{1, 2, 3}, gammaSI(tst), mod(func(s *Settings) { s.TimeChange = []int{2} })},
		{"time change", x, reproduction.MultiPeriod{{1}, {2}}, gammaSI(tst), mod(func(s *Settings) { s.TimeChange = []int{-2} })},
		{"si", x, pool, serial.Discrete{}, settings(10, 10)},
	}
	for _, c := range cases {
		_, err := New(c.x, c.r, c.si, c.s)
		if !errors.Is(err, config.ErrConfiguration) {
			tst.Error(c.name, ": expected configuration error, got", err)
		}
	}
}

func TestParseModel(tst *testing.T) {
	for _, m := range []Model{Poisson, NegBin} {
		pm, err := ParseModel(m.String())
		if err != nil || pm != m {
			tst.Error("Cannot parse", m)
		}
	}
	if _, err := ParseModel("binomial"); err == nil {
		tst.Error("Unknown model accepted")
	}
}
