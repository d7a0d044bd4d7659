package harness

import (
	"github.com/kcz17/harness/internal/collector"
	"github.com/kcz17/harness/internal/run"
	"github.com/kcz17/harness/internal/source"
)

// Acknowledger pops every pending send time the pipeline has fully processed
// and records it as complete at the current elapsed time.
type Acknowledger struct {
	ctx       *run.Context
	collector *collector.Collector
	// inline is set when the source acknowledges on its own. The step hook
	// then only takes over once the source is done.
	inline *source.Source
}

func (a *Acknowledger) Acknowledge() {
	if !a.ctx.Started() {
		return
	}
	a.collector.AcknowledgeWhile(a.ctx.Elapsed(), a.ctx.Probe().Passed)
}

func (a *Acknowledger) Step() {
	if a.inline != nil && a.inline.State() != source.Done {
		return
	}
	a.Acknowledge()
}
