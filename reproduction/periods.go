// Package reproduction resolves reproduction number pools to time
// periods of a projection and samples reproduction numbers from them.
package reproduction

import (
	"math"

	"bitbucket.org/Davydov/epiproj/config"
)

// Spec is a reproduction number specification: SinglePeriod or
// MultiPeriod.
type Spec interface {
	// pools returns one pool per period.
	pools(nPeriods int) ([][]float64, error)
}

// SinglePeriod is one pool of candidate reproduction numbers.
//
// When it is combined with time changes it is treated as a bare
// sequence: every value becomes the one-element pool of its period.
// This only works if there are as many values as periods.
type SinglePeriod []float64

// MultiPeriod is an ordered list of pools, one per time period.
type MultiPeriod [][]float64

func (r SinglePeriod) pools(nPeriods int) ([][]float64, error) {
	if nPeriods == 1 {
		return [][]float64{r}, nil
	}
	if len(r) != nPeriods {
		return nil, config.Errorf("R", "%d values for %d time periods", len(r), nPeriods)
	}
	res := make([][]float64, nPeriods)
	for i := range r {
		res[i] = r[i : i+1]
	}
	return res, nil
}

func (r MultiPeriod) pools(nPeriods int) ([][]float64, error) {
	if len(r) != nPeriods {
		return nil, config.Errorf("R", "%d pools for %d time periods", len(r), nPeriods)
	}
	return r, nil
}

// Periods maps every simulated day to its reproduction number pool.
type Periods struct {
	// Pools are the sampling pools, one per period.
	Pools [][]float64
	// Index[d] is the period of simulated day d+1.
	Index []int
}

// CheckTimeChange validates time change points: positive and
// strictly increasing.
func CheckTimeChange(timeChange []int) error {
	for i, tc := range timeChange {
		if tc < 1 {
			return config.Errorf("time_change", "time changes should be positive, got %d", tc)
		}
		if i > 0 && tc <= timeChange[i-1] {
			return config.Errorf("time_change", "time changes should be increasing, got %v", timeChange)
		}
	}
	return nil
}

// Resolve creates the Periods for nDays simulated days. Time changes
// are given relative to the first simulated day (day 1); offset is
// the absolute index of day 1, i.e. the observed length plus one.
func Resolve(r Spec, timeChange []int, nDays, offset int) (*Periods, error) {
	if r == nil {
		return nil, config.Errorf("R", "no reproduction number")
	}
	if err := CheckTimeChange(timeChange); err != nil {
		return nil, err
	}
	pools, err := r.pools(len(timeChange) + 1)
	if err != nil {
		return nil, err
	}
	for i, pool := range pools {
		if len(pool) == 0 {
			return nil, config.Errorf("R", "empty pool for period %d", i+1)
		}
		for _, v := range pool {
			if !(v > 0) || math.IsInf(v, 0) {
				return nil, config.Errorf("R", "values should be positive, got %v in period %d", v, i+1)
			}
		}
	}

	// absolute day index of every boundary
	bounds := make([]int, len(timeChange))
	for i, tc := range timeChange {
		bounds[i] = tc + offset - 1
	}

	p := &Periods{
		Pools: pools,
		Index: make([]int, nDays),
	}
	period := 0
	for d := range p.Index {
		day := offset + d
		for period < len(bounds) && day >= bounds[period] {
			period++
		}
		p.Index[d] = period
	}
	return p, nil
}

// NPeriods returns the number of periods.
func (p *Periods) NPeriods() int {
	return len(p.Pools)
}

// Pool returns the pool of simulated day d+1.
func (p *Periods) Pool(d int) []float64 {
	return p.Pools[p.Index[d]]
}
