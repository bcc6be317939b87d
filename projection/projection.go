// Package projection stores simulated case counts: a matrix with one
// row per future date and one column per simulated trajectory.
package projection

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gonum/matrix/mat64"

	"bitbucket.org/Davydov/epiproj/incidence"
)

// MaxCount is the largest count a projection holds. Counts are stored
// as float64, integers are exact up to this value.
const MaxCount = 1 << 53

// Projection is an immutable matrix of simulated counts with its
// dates. Trajectories (columns) are exchangeable.
type Projection struct {
	counts     *mat64.Dense
	dates      []time.Time
	cumulative bool
}

// New creates a projection from a matrix of counts with one row per
// date. The matrix is copied.
func New(dates []time.Time, counts *mat64.Dense, cumulative bool) (*Projection, error) {
	if counts == nil {
		return nil, errors.New("No counts")
	}
	r, c := counts.Dims()
	if r != len(dates) {
		return nil, fmt.Errorf("Got %d dates for %d rows", len(dates), r)
	}
	if r == 0 || c == 0 {
		return nil, errors.New("Empty projection")
	}
	p := &Projection{
		counts:     mat64.DenseCopyOf(counts),
		dates:      make([]time.Time, len(dates)),
		cumulative: cumulative,
	}
	for i, d := range dates {
		p.dates[i] = incidence.Day(d)
		if i > 0 && !p.dates[i].After(p.dates[i-1]) {
			return nil, fmt.Errorf("Dates are not increasing at %s", p.dates[i].Format(incidence.DateLayout))
		}
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// check verifies that all the counts are integers in [0, MaxCount].
func (p *Projection) check() error {
	for i := range p.dates {
		for _, v := range p.counts.RawRowView(i) {
			if !(v >= 0 && v <= MaxCount) || v != math.Trunc(v) {
				return fmt.Errorf("Invalid count %v at %s", v, p.dates[i].Format(incidence.DateLayout))
			}
		}
	}
	return nil
}

// FromCounts creates a projection from integer counts, counts[i][j]
// being the count of trajectory j at dates[i].
func FromCounts(dates []time.Time, counts [][]int, cumulative bool) (*Projection, error) {
	if len(counts) == 0 || len(counts[0]) == 0 {
		return nil, errors.New("Empty projection")
	}
	nsim := len(counts[0])
	m := mat64.NewDense(len(counts), nsim, nil)
	for i, row := range counts {
		if len(row) != nsim {
			return nil, fmt.Errorf("Row %d has %d values, expected %d", i+1, len(row), nsim)
		}
		for j, v := range row {
			m.Set(i, j, float64(v))
		}
	}
	return New(dates, m, cumulative)
}

// Dims returns the number of dates and the number of trajectories.
func (p *Projection) Dims() (ndays, nsim int) {
	return p.counts.Dims()
}

// NDays returns the number of dates.
func (p *Projection) NDays() int {
	return len(p.dates)
}

// NSim returns the number of trajectories.
func (p *Projection) NSim() int {
	_, c := p.counts.Dims()
	return c
}

// Dates returns a copy of the dates.
func (p *Projection) Dates() []time.Time {
	return append([]time.Time(nil), p.dates...)
}

// IsCumulative reports whether the counts are cumulative.
func (p *Projection) IsCumulative() bool {
	return p.cumulative
}

// At returns the count of trajectory j at date i.
func (p *Projection) At(i, j int) int {
	return int(p.counts.At(i, j))
}

// Row returns the counts of all trajectories at date i.
func (p *Projection) Row(i int) []int {
	row := p.counts.RawRowView(i)
	res := make([]int, len(row))
	for j, v := range row {
		res[j] = int(v)
	}
	return res
}

// Sim returns trajectory j.
func (p *Projection) Sim(j int) []int {
	col := mat64.Col(nil, j, p.counts)
	res := make([]int, len(col))
	for i, v := range col {
		res[i] = int(v)
	}
	return res
}

// Counts returns the counts as a slice of rows.
func (p *Projection) Counts() [][]int {
	res := make([][]int, p.NDays())
	for i := range res {
		res[i] = p.Row(i)
	}
	return res
}

// Matrix returns a copy of the count matrix.
func (p *Projection) Matrix() *mat64.Dense {
	return mat64.DenseCopyOf(p.counts)
}

// Equal reports whether two projections have the same dates, counts
// and cumulative flag.
func (p *Projection) Equal(q *Projection) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.cumulative != q.cumulative || !sameDates(p.dates, q.dates) {
		return false
	}
	return mat64.Equal(p.counts, q.counts)
}

func sameDates(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (p *Projection) String() string {
	var buffer bytes.Buffer
	ndays, nsim := p.Dims()
	kind := "incidence"
	if p.cumulative {
		kind = "cumulative"
	}
	buffer.WriteString(fmt.Sprintf("<projection (%s): %d dates from %s to %s, %d simulations\n",
		kind, ndays, p.dates[0].Format(incidence.DateLayout),
		p.dates[ndays-1].Format(incidence.DateLayout), nsim))
	for i := 0; i < ndays; i++ {
		if i == 10 {
			buffer.WriteString("...\n")
			break
		}
		buffer.WriteString("  ")
		buffer.WriteString(p.dates[i].Format(incidence.DateLayout))
		for j, v := range p.counts.RawRowView(i) {
			if j == 10 {
				buffer.WriteString("\t...")
				break
			}
			buffer.WriteByte('\t')
			buffer.WriteString(strconv.Itoa(int(v)))
		}
		buffer.WriteByte('\n')
	}
	buffer.WriteByte('>')
	return buffer.String()
}
