// Package fanplot draws a projection: a shaded band between two
// quantiles, the median and a few individual trajectories.
package fanplot

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/epiproj/incidence"
	"bitbucket.org/Davydov/epiproj/projection"
)

// Options control the plot.
type Options struct {
	// Title of the plot.
	Title string
	// Lower and Upper are the quantiles delimiting the band.
	Lower, Upper float64
	// NTraj is the number of trajectories drawn.
	NTraj int
	// Observed incidence drawn before the projection, optional.
	Observed *incidence.Incidence
	// Width and Height of the image.
	Width, Height vg.Length
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Title:  "Projected incidence",
		Lower:  0.025,
		Upper:  0.975,
		NTraj:  10,
		Width:  8 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

var (
	bandColor = color.RGBA{R: 70, G: 130, B: 180, A: 80}
	trajColor = color.RGBA{R: 128, G: 128, B: 128, A: 120}
	obsColor  = color.RGBA{A: 255}
)

// New creates the plot.
func New(p *projection.Projection, opts Options) (*plot.Plot, error) {
	if !(opts.Lower < opts.Upper) {
		return nil, errors.New("Lower quantile should be smaller than upper quantile")
	}
	s, err := p.Summary([]float64{opts.Lower, 0.5, opts.Upper})
	if err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.Title.Text = opts.Title
	pl.X.Label.Text = "Date"
	pl.Y.Label.Text = "Cases"
	if p.IsCumulative() {
		pl.Y.Label.Text = "Cumulative cases"
	}
	pl.X.Tick.Marker = plot.TimeTicks{Format: incidence.DateLayout}

	dates := p.Dates()
	// x coordinate of date i
	unix := func(i int) float64 {
		return float64(dates[i].Unix())
	}

	n := p.NDays()
	band := make(plotter.XYs, 0, 2*n)
	median := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		band = append(band, plotter.XY{X: unix(i), Y: s.Q[i][2]})
		median[i] = plotter.XY{X: unix(i), Y: s.Q[i][1]}
	}
	for i := n - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: unix(i), Y: s.Q[i][0]})
	}
	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return nil, err
	}
	poly.Color = bandColor
	poly.LineStyle.Width = 0
	pl.Add(poly)

	ntraj := opts.NTraj
	if ntraj > p.NSim() {
		ntraj = p.NSim()
	}
	for j := 0; j < ntraj; j++ {
		traj := make(plotter.XYs, n)
		for i, v := range p.Sim(j) {
			traj[i] = plotter.XY{X: unix(i), Y: float64(v)}
		}
		l, err := plotter.NewLine(traj)
		if err != nil {
			return nil, err
		}
		l.Color = trajColor
		l.Width = vg.Points(0.5)
		pl.Add(l)
	}

	ml, err := plotter.NewLine(median)
	if err != nil {
		return nil, err
	}
	ml.Width = vg.Points(2)
	pl.Add(ml)
	pl.Legend.Add("median", ml)
	pl.Legend.Add("band", poly)

	if x := opts.Observed; x != nil && !p.IsCumulative() {
		obs := make(plotter.XYs, x.Len())
		total := x.Total()
		for i, d := range x.Dates() {
			obs[i] = plotter.XY{X: float64(d.Unix()), Y: float64(total[i])}
		}
		sc, err := plotter.NewScatter(obs)
		if err != nil {
			return nil, err
		}
		sc.Color = obsColor
		pl.Add(sc)
		pl.Legend.Add("observed", sc)
	}
	return pl, nil
}

// Save draws the projection to a file. The format is taken from the
// file extension (png, svg, pdf, ...).
func Save(p *projection.Projection, fileName string, opts Options) error {
	pl, err := New(p, opts)
	if err != nil {
		return err
	}
	return pl.Save(opts.Width, opts.Height, fileName)
}
