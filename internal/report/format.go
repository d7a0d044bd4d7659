// Package report renders the combined measurements of a run.
package report

import (
	"fmt"
	"strings"

	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/timeline"
)

// SummaryPercentiles are the columns of a summary line.
var SummaryPercentiles = []float64{25, 50, 75, 90, 95, 99, 99.9, 100}

func mustDistribution(s metrics.Sink) metrics.Distribution {
	d, ok := metrics.DistributionOf(s)
	if !ok {
		panic(fmt.Sprintf("expected a sink with a latency distribution; got %T", s))
	}
	return d
}

// CCDF returns one (value, probability, count) point per non-empty bar,
// where probability is the fraction of samples above the bar.
func CCDF(d metrics.Distribution) []CCDFPoint {
	total := d.Count()
	if total == 0 {
		return nil
	}
	var points []CCDFPoint
	remaining := total
	for _, b := range d.Bars() {
		remaining -= b.Count
		points = append(points, CCDFPoint{
			Value:       b.To,
			Probability: float64(remaining) / float64(total),
			Count:       b.Count,
		})
	}
	return points
}

type CCDFPoint struct {
	Value       uint64
	Probability float64
	Count       int64
}

// FormatDetailedTimeline writes one line per non-empty bar of every bucket:
// prefix, bucket time, value, probability and count, tab separated.
func FormatDetailedTimeline(prefix string, tl *timeline.Timeline) string {
	var lines []string
	for _, e := range tl.Elements() {
		for _, p := range CCDF(mustDistribution(e.Metrics)) {
			lines = append(lines, fmt.Sprintf("%s\t%d\t%d\t%v\t%d", prefix, e.Time, p.Value, p.Probability, p.Count))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatSummaryTimeline writes one line per bucket: prefix, bucket time and
// the latency at each of SummaryPercentiles.
func FormatSummaryTimeline(prefix string, tl *timeline.Timeline) string {
	lines := make([]string, 0, len(tl.Elements()))
	for _, e := range tl.Elements() {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%s", prefix, e.Time, summaryColumns(mustDistribution(e.Metrics))))
	}
	return strings.Join(lines, "\n")
}

// FormatSummary describes a distribution as a header and a values line.
func FormatSummary(prefix string, s metrics.Sink) string {
	d := mustDistribution(s)
	header := []string{"prefix", "count"}
	for _, p := range SummaryPercentiles {
		header = append(header, "p"+formatPercentile(p))
	}
	return fmt.Sprintf("%s\n%s\t%d\t%s", strings.Join(header, "\t"), prefix, d.Count(), summaryColumns(d))
}

func summaryColumns(d metrics.Distribution) string {
	columns := make([]string, len(SummaryPercentiles))
	for i, p := range SummaryPercentiles {
		columns[i] = fmt.Sprintf("%d", d.ValueAtQuantile(p))
	}
	return strings.Join(columns, "\t")
}

func formatPercentile(p float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", p), "0"), ".")
}
