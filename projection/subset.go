package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/gonum/matrix/mat64"

	"bitbucket.org/Davydov/epiproj/incidence"
)

// ErrEmptySelection is returned when a subset keeps no data.
var ErrEmptySelection = errors.New("No data retained.")

// Bound is an inclusive date limit of a subset. The zero Bound is
// unset and does not restrict the dates.
type Bound struct {
	date  time.Time
	day   int
	byDay bool
	set   bool
}

// AtDate returns a Bound at a calendar date.
func AtDate(t time.Time) Bound {
	return Bound{date: incidence.Day(t), set: true}
}

// AtDay returns a Bound at a 1-based position among the dates.
func AtDay(i int) Bound {
	return Bound{day: i, byDay: true, set: true}
}

// IsSet reports whether the bound restricts the dates.
func (b Bound) IsSet() bool {
	return b.set
}

// resolve converts the bound to a calendar date. Positions outside of
// the projection are extrapolated by days.
func (b Bound) resolve(dates []time.Time) time.Time {
	if !b.byDay {
		return b.date
	}
	n := len(dates)
	switch {
	case b.day < 1:
		return dates[0].AddDate(0, 0, b.day-1)
	case b.day > n:
		return dates[n-1].AddDate(0, 0, b.day-n)
	}
	return dates[b.day-1]
}

func (b Bound) String() string {
	switch {
	case !b.set:
		return "<unset>"
	case b.byDay:
		return fmt.Sprintf("day %d", b.day)
	}
	return b.date.Format(incidence.DateLayout)
}

// Selector selects trajectories. The zero Selector selects all of
// them.
type Selector struct {
	mask    []bool
	indices []int
	byIndex bool
	byMask  bool
}

// AllSims selects all the trajectories.
func AllSims() Selector {
	return Selector{}
}

// SimMask selects the trajectories for which mask is true. The mask
// should have one value per trajectory.
func SimMask(mask []bool) Selector {
	return Selector{mask: append([]bool(nil), mask...), byMask: true}
}

// SimIndices selects trajectories by their 0-based indices, in the
// given order.
func SimIndices(indices ...int) Selector {
	return Selector{indices: append([]int(nil), indices...), byIndex: true}
}

// columns returns the selected column indices.
func (s Selector) columns(nsim int) ([]int, error) {
	switch {
	case s.byIndex:
		for _, j := range s.indices {
			if j < 0 || j >= nsim {
				return nil, fmt.Errorf("Simulation index %d out of range [0, %d)", j, nsim)
			}
		}
		return s.indices, nil
	case s.byMask:
		if len(s.mask) != nsim {
			return nil, fmt.Errorf("Mask of length %d for %d simulations", len(s.mask), nsim)
		}
		var cols []int
		for j, keep := range s.mask {
			if keep {
				cols = append(cols, j)
			}
		}
		return cols, nil
	}
	cols := make([]int, nsim)
	for j := range cols {
		cols[j] = j
	}
	return cols, nil
}

// SubsetOptions restricts a projection. The zero value keeps
// everything.
type SubsetOptions struct {
	// From is the first date to keep.
	From Bound
	// To is the last date to keep.
	To Bound
	// Sims selects the trajectories.
	Sims Selector
}

// Subset returns a new projection restricted to the dates between
// opts.From and opts.To (inclusive) and to the selected trajectories.
// The receiver is not modified.
func (p *Projection) Subset(opts SubsetOptions) (*Projection, error) {
	from, to := p.dates[0], p.dates[len(p.dates)-1]
	if opts.From.IsSet() {
		from = opts.From.resolve(p.dates)
	}
	if opts.To.IsSet() {
		to = opts.To.resolve(p.dates)
	}

	var rows []int
	for i, d := range p.dates {
		if !d.Before(from) && !d.After(to) {
			rows = append(rows, i)
		}
	}
	cols, err := opts.Sims.columns(p.NSim())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(cols) == 0 {
		return nil, ErrEmptySelection
	}

	m := mat64.NewDense(len(rows), len(cols), nil)
	dates := make([]time.Time, len(rows))
	for i, r := range rows {
		dates[i] = p.dates[r]
		src := p.counts.RawRowView(r)
		dst := m.RawRowView(i)
		for j, c := range cols {
			dst[j] = src[c]
		}
	}
	return &Projection{counts: m, dates: dates, cumulative: p.cumulative}, nil
}
