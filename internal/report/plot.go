package report

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kcz17/harness/internal/timeline"
)

// PlotPercentiles are the lines drawn by WritePlot.
var PlotPercentiles = []float64{50, 95, 99}

// WritePlot draws the latency percentiles of every bucket over time.
func WritePlot(tl *timeline.Timeline, path string) error {
	p, err := plot.New()
	if err != nil {
		return errors.Wrap(err, "could not create plot")
	}
	p.Title.Text = "Latency over time"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Latency (ms)"

	var lines []interface{}
	for _, percentile := range PlotPercentiles {
		points := make(plotter.XYs, 0, len(tl.Elements()))
		for _, e := range tl.Elements() {
			if e.Samples == 0 {
				continue
			}
			v := mustDistribution(e.Metrics).ValueAtQuantile(percentile)
			points = append(points, plotter.XY{
				X: time.Duration(e.Time).Seconds(),
				Y: float64(v) / float64(time.Millisecond),
			})
		}
		lines = append(lines, "p"+formatPercentile(percentile), points)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return errors.Wrap(err, "could not add percentile lines")
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "could not save plot to %s", path)
	}
	return nil
}
