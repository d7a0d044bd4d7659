package harness

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kcz17/harness/internal/collector"
	"github.com/kcz17/harness/internal/dataflow"
	"github.com/kcz17/harness/internal/logging"
	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/monitoring/responsetime"
	"github.com/kcz17/harness/internal/payload"
	"github.com/kcz17/harness/internal/run"
	"github.com/kcz17/harness/internal/schedule"
	"github.com/kcz17/harness/internal/source"
	"github.com/kcz17/harness/internal/status"
	"github.com/kcz17/harness/internal/timeline"
	"github.com/kcz17/harness/internal/wordcount"
)

// Environment holds the collaborators shared by every worker.
type Environment struct {
	Clock  run.Clock
	Logger logging.Logger
	// Tracker is optional.
	Tracker *status.Tracker
}

// Pipeline is one worker's private instance of the harness: a flow-controlled
// source feeding the word count, with completions acknowledged into a
// collector.
type Pipeline struct {
	Index        int
	Worker       *dataflow.Worker
	Context      *run.Context
	Source       *source.Source
	Counter      *wordcount.Counter
	Collector    *collector.Collector
	Acknowledger *Acknowledger
	Progress     *Progress
}

func NewPipeline(index int, options Options, env Environment) (*Pipeline, error) {
	if err := options.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid harness options")
	}

	payloadOptions := options.Payload
	payloadOptions.Keys = options.Keys
	generator, err := payload.NewGenerator(payload.Seed(options.Seed, index), payloadOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create payload generator for worker %d", index)
	}

	var workerOpts []dataflow.Option
	if options.ProcessingCapacity > 0 {
		workerOpts = append(workerOpts, dataflow.WithCapacity(options.ProcessingCapacity))
	}
	counter := wordcount.NewCounter()
	worker := dataflow.NewWorker(index, options.Workers, counter, workerOpts...)
	ctx := run.NewContext(env.Clock, worker.Probe())

	live := responsetime.New(options.ProgressWindow)
	sink, collectorOpts := assembleSink(options)
	collectorOpts = append(collectorOpts, collector.WithObserver(live.Observe))
	c := collector.New(newSchedule(options), sink, collectorOpts...)

	sourceOpts := []source.Option{
		source.WithLoad(payload.InitialLoad(index, options.Workers, options.Keys)),
		source.WithGranularity(uint64(options.Granularity)),
	}
	if options.WaitForLoad {
		sourceOpts = append(sourceOpts, source.WithWaitForLoad())
	}
	ack := &Acknowledger{ctx: ctx, collector: c}
	if options.AckMode == AckInline {
		sourceOpts = append(sourceOpts, source.WithInlineAcknowledger(ack))
	}
	src := source.New(ctx, newSchedule(options), generator, sourceOpts...)
	if options.AckMode == AckInline {
		ack.inline = src
	}

	progress := &Progress{
		worker:    index,
		ctx:       ctx,
		interval:  uint64(options.ProgressInterval),
		warmupEnd: uint64(options.Warmup),
		live:      live,
		logger:    env.Logger,
		tracker:   env.Tracker,
		source:    src,
		collector: c,
	}

	worker.NewSource("input", src)
	worker.AddSink(ack)
	worker.AddSink(progress)

	return &Pipeline{
		Index:        index,
		Worker:       worker,
		Context:      ctx,
		Source:       src,
		Counter:      counter,
		Collector:    c,
		Acknowledger: ack,
		Progress:     progress,
	}, nil
}

// newSchedule returns a fresh copy of the schedule. The source and the
// collector each replay their own.
func newSchedule(options Options) *schedule.ConstantThroughput {
	return schedule.NewConstantThroughput(
		options.FirstSendTime(),
		uint64(time.Second)/options.Throughput,
		uint64(options.Duration),
	)
}

func newHistogram() metrics.Sink { return metrics.NewHistogram() }

// assembleSink builds the metrics sink and decides where transients are
// excluded: in the collector, or inside the sink itself.
func assembleSink(options Options) (metrics.Sink, []collector.Option) {
	window := options.Window()
	inCollector := []collector.Option{collector.WithWindow(window)}

	switch options.SinkKind {
	case metrics.KindWindowed:
		return metrics.NewWindowed(metrics.NewHistogram(), window), nil
	case metrics.KindSamples:
		return metrics.NewSamples(), inCollector
	case metrics.KindTimelined:
		dt := uint64(options.TimelineInterval)
		if options.IncludeTransients {
			base := metrics.NewWindowed(metrics.NewHistogram(), window)
			return timeline.New(0, uint64(options.Duration), dt, base, newHistogram), nil
		}
		return timeline.New(window.WarmupEnd, window.ExperimentEnd, dt, metrics.NewHistogram(), newHistogram), inCollector
	default:
		return metrics.NewHistogram(), inCollector
	}
}
