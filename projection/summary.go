package projection

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultQuantiles are the quantiles reported by default.
var DefaultQuantiles = []float64{0.025, 0.25, 0.5, 0.75, 0.975}

// Summary holds per-date statistics over the trajectories.
type Summary struct {
	Dates     []time.Time `json:"dates"`
	Mean      []float64   `json:"mean"`
	SD        []float64   `json:"sd"`
	Min       []float64   `json:"min"`
	Max       []float64   `json:"max"`
	Quantiles []float64   `json:"quantiles"`
	// Q[i][k] is quantile Quantiles[k] at Dates[i].
	Q [][]float64 `json:"q"`
}

// Summary computes per-date statistics. If quantiles is nil
// DefaultQuantiles are used.
func (p *Projection) Summary(quantiles []float64) (*Summary, error) {
	if quantiles == nil {
		quantiles = DefaultQuantiles
	}
	for _, q := range quantiles {
		if q < 0 || q > 1 {
			return nil, fmt.Errorf("Quantile %v is not in [0, 1]", q)
		}
	}
	n := p.NDays()
	s := &Summary{
		Dates:     p.Dates(),
		Mean:      make([]float64, n),
		SD:        make([]float64, n),
		Min:       make([]float64, n),
		Max:       make([]float64, n),
		Quantiles: append([]float64(nil), quantiles...),
		Q:         make([][]float64, n),
	}
	sorted := make([]float64, p.NSim())
	for i := 0; i < n; i++ {
		copy(sorted, p.counts.RawRowView(i))
		sort.Float64s(sorted)
		s.Mean[i] = stat.Mean(sorted, nil)
		if len(sorted) > 1 {
			s.SD[i] = stat.StdDev(sorted, nil)
		}
		s.Min[i] = sorted[0]
		s.Max[i] = sorted[len(sorted)-1]
		s.Q[i] = make([]float64, len(quantiles))
		for k, q := range quantiles {
			s.Q[i][k] = stat.Quantile(q, stat.Empirical, sorted, nil)
		}
	}
	return s, nil
}
