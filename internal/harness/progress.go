package harness

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kcz17/harness/internal/collector"
	"github.com/kcz17/harness/internal/logging"
	"github.com/kcz17/harness/internal/monitoring/responsetime"
	"github.com/kcz17/harness/internal/run"
	"github.com/kcz17/harness/internal/source"
	"github.com/kcz17/harness/internal/status"
)

// Progress reports recent latencies once per interval of run time. The live
// window is cleared once warmup ends so reports cover the steady state only.
type Progress struct {
	worker    int
	ctx       *run.Context
	interval  uint64
	next      uint64
	warmupEnd uint64
	warmedUp  bool
	live      responsetime.Collector
	logger    logging.Logger
	tracker   *status.Tracker
	source    *source.Source
	collector *collector.Collector
	reports   int
}

func (p *Progress) Step() {
	if p.interval == 0 || !p.ctx.Started() {
		return
	}
	elapsed := p.ctx.Elapsed()
	if !p.warmedUp && elapsed >= p.warmupEnd {
		p.warmedUp = true
		if p.warmupEnd > 0 {
			p.live.Reset()
			logrus.WithFields(logrus.Fields{
				"worker":  p.worker,
				"elapsed": time.Duration(elapsed),
			}).Debug("warmup complete, resetting live latency window")
		}
	}
	if elapsed < p.next {
		return
	}
	p.next = (elapsed/p.interval + 1) * p.interval
	p.Report()
}

func (p *Progress) Report() {
	aggregation := p.live.Aggregate()
	elapsed := time.Duration(p.ctx.Elapsed())
	recorded := p.collector.RecordedSamples()

	p.logger.LogProgress(p.worker, elapsed, recorded, aggregation.P50, aggregation.P75, aggregation.P95)
	if p.tracker != nil {
		p.tracker.Update(status.WorkerProgress{
			Worker:   p.worker,
			Elapsed:  elapsed,
			Emitted:  p.source.Emitted(),
			Recorded: recorded,
			P50:      aggregation.P50,
			P75:      aggregation.P75,
			P95:      aggregation.P95,
		})
	}
	p.reports++
}

// Reports is the number of progress reports made.
func (p *Progress) Reports() int { return p.reports }
