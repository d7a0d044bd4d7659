package harness

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kcz17/harness/internal/collector"
)

// cancellationCheckSteps is how many steps a worker takes between checks of
// its context.
const cancellationCheckSteps = 1024

// Result is the combination of every worker's collector.
type Result struct {
	Collector *collector.Collector
	Workers   int
	Emitted   int
	Elapsed   time.Duration
}

// RunWorker steps the pipeline until every scheduled unit has been injected,
// processed and acknowledged.
func RunWorker(ctx context.Context, p *Pipeline) error {
	for steps := uint64(1); p.Worker.Step(); steps++ {
		if steps%cancellationCheckSteps == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "worker %d aborted after %d steps", p.Index, steps)
			}
		}
	}

	if p.Collector.Pending() {
		return errors.Errorf("expected no pending send times once worker %d finished", p.Index)
	}
	p.Progress.Report()
	return nil
}

// Execute runs one pipeline per worker in parallel and combines their
// collectors once all have finished.
func Execute(ctx context.Context, options Options, env Environment) (*Result, error) {
	if err := options.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid harness options")
	}

	pipelines := make([]*Pipeline, options.Workers)
	for i := range pipelines {
		p, err := NewPipeline(i, options, env)
		if err != nil {
			return nil, err
		}
		pipelines[i] = p
	}

	logrus.WithFields(logrus.Fields{
		"workers":    options.Workers,
		"throughput": options.Throughput,
		"duration":   options.Duration,
		"sink":       options.SinkKind,
		"ack":        options.AckMode,
	}).Info("starting run")

	start := env.Clock.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pipelines {
		p := p
		g.Go(func() error {
			return RunWorker(gctx, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collectors := make([]*collector.Collector, len(pipelines))
	emitted := 0
	for i, p := range pipelines {
		collectors[i] = p.Collector
		emitted += p.Source.Emitted()
	}

	return &Result{
		Collector: collector.CombineAll(collectors),
		Workers:   options.Workers,
		Emitted:   emitted,
		Elapsed:   env.Clock.Now().Sub(start),
	}, nil
}
