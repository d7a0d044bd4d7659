package report

import (
	"time"

	"github.com/kcz17/harness/internal/collector"
	"github.com/kcz17/harness/internal/logging"
	"github.com/kcz17/harness/internal/timeline"
)

// Log sends the overall summary and, for timelined sinks, every bucket to
// the logger.
func Log(logger logging.Logger, prefix string, c *collector.Collector) {
	sink := c.Sink()
	d := mustDistribution(sink)
	logger.LogSummary(prefix, c.RecordedSamples(),
		time.Duration(d.ValueAtQuantile(50)),
		time.Duration(d.ValueAtQuantile(95)),
		time.Duration(d.ValueAtQuantile(99)),
		time.Duration(d.ValueAtQuantile(100)))

	tl, ok := sink.(*timeline.Timeline)
	if !ok {
		return
	}
	for _, e := range tl.Elements() {
		bucket := mustDistribution(e.Metrics)
		logger.LogBucket(prefix, e.Time, e.Samples,
			time.Duration(bucket.ValueAtQuantile(50)),
			time.Duration(bucket.ValueAtQuantile(95)),
			time.Duration(bucket.ValueAtQuantile(99)))
	}
}
