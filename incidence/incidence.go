// Package incidence stores observed case counts binned by calendar
// date, one column per group.
package incidence

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the date format used for reading and writing dates.
const DateLayout = "2006-01-02"

// Incidence is a series of case counts over contiguous, equally
// spaced dates.
type Incidence struct {
	dates    []time.Time
	counts   [][]int // counts[day][group]
	groups   []string
	interval int
}

// Day truncates t to the midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// New creates a single group incidence from dates and counts.
func New(dates []time.Time, counts []int) (*Incidence, error) {
	gc := make([][]int, len(counts))
	for i, c := range counts {
		gc[i] = []int{c}
	}
	return NewGrouped(dates, gc, nil)
}

// NewGrouped creates an incidence with several groups. counts[i]
// holds the counts of every group at dates[i]. If groups is nil,
// groups are named group1, group2 and so on.
func NewGrouped(dates []time.Time, counts [][]int, groups []string) (*Incidence, error) {
	if len(dates) == 0 {
		return nil, errors.New("Empty incidence")
	}
	if len(dates) != len(counts) {
		return nil, fmt.Errorf("Got %d dates and %d count rows", len(dates), len(counts))
	}
	ng := len(counts[0])
	if ng == 0 {
		return nil, errors.New("Incidence has no groups")
	}
	if groups == nil {
		groups = make([]string, ng)
		for i := range groups {
			groups[i] = fmt.Sprintf("group%d", i+1)
		}
	}
	if len(groups) != ng {
		return nil, fmt.Errorf("Got %d group names for %d groups", len(groups), ng)
	}

	x := &Incidence{
		dates:  make([]time.Time, len(dates)),
		counts: make([][]int, len(counts)),
		groups: append([]string(nil), groups...),
	}
	for i, d := range dates {
		x.dates[i] = Day(d)
		if len(counts[i]) != ng {
			return nil, fmt.Errorf("Row %d has %d counts, expected %d", i+1, len(counts[i]), ng)
		}
		for _, c := range counts[i] {
			if c < 0 {
				return nil, fmt.Errorf("Negative count %d at %s", c, x.dates[i].Format(DateLayout))
			}
		}
		x.counts[i] = append([]int(nil), counts[i]...)
	}

	interval, err := spacing(x.dates)
	if err != nil {
		return nil, err
	}
	x.interval = interval
	return x, nil
}

// spacing returns the common number of days between consecutive
// dates. A single date is assumed to be daily.
func spacing(dates []time.Time) (int, error) {
	if len(dates) < 2 {
		return 1, nil
	}
	interval := DaysBetween(dates[0], dates[1])
	if interval < 1 {
		return 0, fmt.Errorf("Dates are not increasing at %s", dates[1].Format(DateLayout))
	}
	for i := 2; i < len(dates); i++ {
		if d := DaysBetween(dates[i-1], dates[i]); d != interval {
			return 0, fmt.Errorf("Irregular date spacing at %s: %d days instead of %d",
				dates[i].Format(DateLayout), d, interval)
		}
	}
	return interval, nil
}

// FromDates bins individual onset dates into an incidence with the
// given interval in days. Empty bins are kept as zero counts.
func FromDates(onsets []time.Time, interval int) (*Incidence, error) {
	if len(onsets) == 0 {
		return nil, errors.New("No onset dates")
	}
	if interval < 1 {
		return nil, fmt.Errorf("Interval should be positive, got %d", interval)
	}
	sorted := make([]time.Time, len(onsets))
	for i, t := range onsets {
		sorted[i] = Day(t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	first := sorted[0]
	nbins := DaysBetween(first, sorted[len(sorted)-1])/interval + 1
	dates := make([]time.Time, nbins)
	counts := make([]int, nbins)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i*interval)
	}
	for _, t := range sorted {
		counts[DaysBetween(first, t)/interval]++
	}
	return New(dates, counts)
}

// Len returns the number of dates.
func (x *Incidence) Len() int {
	return len(x.dates)
}

// Interval returns the number of days between consecutive dates.
func (x *Incidence) Interval() int {
	return x.interval
}

// NGroups returns the number of groups.
func (x *Incidence) NGroups() int {
	return len(x.groups)
}

// Groups returns the group names.
func (x *Incidence) Groups() []string {
	return append([]string(nil), x.groups...)
}

// Dates returns a copy of the dates.
func (x *Incidence) Dates() []time.Time {
	return append([]time.Time(nil), x.dates...)
}

// Last returns the last date.
func (x *Incidence) Last() time.Time {
	return x.dates[len(x.dates)-1]
}

// Counts returns the counts of group g.
func (x *Incidence) Counts(g int) []int {
	res := make([]int, len(x.counts))
	for i, row := range x.counts {
		res[i] = row[g]
	}
	return res
}

// Total returns the counts summed over all the groups.
func (x *Incidence) Total() []int {
	res := make([]int, len(x.counts))
	for i, row := range x.counts {
		for _, c := range row {
			res[i] += c
		}
	}
	return res
}

func (x *Incidence) String() string {
	return fmt.Sprintf("<incidence: %d dates from %s to %s, interval %d, %d group(s)>",
		x.Len(), x.dates[0].Format(DateLayout), x.Last().Format(DateLayout),
		x.interval, x.NGroups())
}
