package projection

import (
	"errors"
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Cumulate returns the cumulative counts of every trajectory.
func (p *Projection) Cumulate() (*Projection, error) {
	if p.cumulative {
		return nil, errors.New("Projection is already cumulative")
	}
	m := mat64.DenseCopyOf(p.counts)
	for i := 1; i < p.NDays(); i++ {
		prev := m.RawRowView(i - 1)
		row := m.RawRowView(i)
		for j := range row {
			row[j] += prev[j]
		}
	}
	res := &Projection{counts: m, dates: p.Dates(), cumulative: true}
	if err := res.check(); err != nil {
		return nil, err
	}
	return res, nil
}

// Add returns the element-wise sum of two projections with the same
// dates, number of trajectories and cumulative flag.
func (p *Projection) Add(q *Projection) (*Projection, error) {
	if !sameDates(p.dates, q.dates) {
		return nil, errors.New("Cannot add projections with different dates")
	}
	if p.NSim() != q.NSim() {
		return nil, fmt.Errorf("Cannot add projections with %d and %d simulations", p.NSim(), q.NSim())
	}
	if p.cumulative != q.cumulative {
		return nil, errors.New("Cannot add cumulative and non-cumulative projections")
	}
	m := mat64.DenseCopyOf(p.counts)
	m.Add(m, q.counts)
	res := &Projection{counts: m, dates: p.Dates(), cumulative: p.cumulative}
	if err := res.check(); err != nil {
		return nil, err
	}
	return res, nil
}

// Merge binds the trajectories of several projections with the same
// dates and cumulative flag.
func Merge(ps ...*Projection) (*Projection, error) {
	if len(ps) == 0 {
		return nil, errors.New("Nothing to merge")
	}
	first := ps[0]
	nsim := 0
	for _, q := range ps {
		if !sameDates(first.dates, q.dates) {
			return nil, errors.New("Cannot merge projections with different dates")
		}
		if first.cumulative != q.cumulative {
			return nil, errors.New("Cannot merge cumulative and non-cumulative projections")
		}
		nsim += q.NSim()
	}
	m := mat64.NewDense(first.NDays(), nsim, nil)
	for i := 0; i < first.NDays(); i++ {
		dst := m.RawRowView(i)
		off := 0
		for _, q := range ps {
			off += copy(dst[off:], q.counts.RawRowView(i))
		}
	}
	return &Projection{counts: m, dates: first.Dates(), cumulative: first.cumulative}, nil
}
