package report

import (
	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/stats"
	"github.com/kcz17/harness/internal/timeline"
)

// SteadyState compares the latency distribution of the first and last
// non-empty buckets with a two-sample KS-test. ok is false when fewer than
// two buckets hold samples.
func SteadyState(tl *timeline.Timeline, percentile stats.Percentile) (result stats.KSResult, ok bool) {
	var first, last metrics.Distribution
	for _, e := range tl.Elements() {
		if e.Samples == 0 {
			continue
		}
		d := mustDistribution(e.Metrics)
		if first == nil {
			first = d
		} else {
			last = d
		}
	}
	if first == nil || last == nil {
		return stats.KSResult{}, false
	}
	return stats.KolmogorovSmirnovTest(weighted(first), weighted(last), percentile), true
}

func weighted(d metrics.Distribution) stats.Weighted {
	bars := d.Bars()
	w := stats.Weighted{
		Values:  make([]float64, len(bars)),
		Weights: make([]float64, len(bars)),
	}
	for i, b := range bars {
		w.Values[i] = float64(b.To)
		w.Weights[i] = float64(b.Count)
	}
	return w
}
