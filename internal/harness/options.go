package harness

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/payload"
)

// AckMode selects where completions are acknowledged.
type AckMode int

const (
	// AckProbe acknowledges at the end of every step, after the operator.
	AckProbe AckMode = iota
	// AckInline acknowledges from within the source, before it emits.
	AckInline
)

func (m AckMode) String() string {
	return [...]string{"probe", "inline"}[m]
}

type Options struct {
	Workers int
	// Throughput is the number of units each worker injects per second. It
	// must divide 1e9.
	Throughput uint64
	Duration   time.Duration
	// Granularity rounds every emission target down to a multiple of itself.
	Granularity time.Duration
	// Warmup and Cooldown are excluded from statistics at the start and end
	// of the run respectively.
	Warmup   time.Duration
	Cooldown time.Duration

	Keys        uint64
	WaitForLoad bool
	Payload     payload.Options
	Seed        uint64

	AckMode  AckMode
	SinkKind metrics.Kind
	// TimelineInterval is the bucket width of timelined sinks.
	TimelineInterval time.Duration
	// IncludeTransients makes a timelined sink cover the whole run; only its
	// overall histogram excludes warmup and cooldown.
	IncludeTransients bool

	// ProcessingCapacity limits records processed per step, zero meaning
	// unlimited.
	ProcessingCapacity int

	ProgressInterval time.Duration
	// ProgressWindow is the number of recent latencies progress reports are
	// computed over, zero meaning all of them.
	ProgressWindow int
}

func DefaultOptions() Options {
	return Options{
		Workers:          1,
		Throughput:       1000,
		Duration:         10 * time.Second,
		Granularity:      time.Millisecond,
		Warmup:           2 * time.Second,
		Cooldown:         2 * time.Second,
		Keys:             1000,
		Payload:          payload.Options{Distribution: payload.Uniform},
		Seed:             1,
		AckMode:          AckProbe,
		SinkKind:         metrics.KindTimelined,
		TimelineInterval: time.Second,
		ProgressInterval: time.Second,
		ProgressWindow:   10000,
	}
}

func (o Options) Validate() error {
	if o.Workers <= 0 {
		return errors.Errorf("expected workers > 0; got %d", o.Workers)
	}
	if o.Throughput == 0 || uint64(time.Second)%o.Throughput != 0 {
		return errors.Errorf("expected throughput to be a divisor of 1_000_000_000ns; got %d", o.Throughput)
	}
	if o.Duration <= 0 {
		return errors.Errorf("expected duration > 0; got %v", o.Duration)
	}
	if o.Granularity <= 0 {
		return errors.Errorf("expected granularity > 0; got %v", o.Granularity)
	}
	if o.Warmup < 0 || o.Cooldown < 0 || o.Warmup+o.Cooldown >= o.Duration {
		return errors.Errorf("expected warmup + cooldown < duration; got %v + %v >= %v", o.Warmup, o.Cooldown, o.Duration)
	}
	if o.Keys < uint64(o.Workers) {
		return errors.Errorf("expected at least one key per worker; got %d keys for %d workers", o.Keys, o.Workers)
	}
	switch o.SinkKind {
	case metrics.KindRaw, metrics.KindWindowed, metrics.KindSamples:
	case metrics.KindTimelined:
		if o.TimelineInterval <= 0 {
			return errors.Errorf("expected timeline interval > 0; got %v", o.TimelineInterval)
		}
	default:
		return errors.Errorf("unexpected sink kind %d", o.SinkKind)
	}
	if o.AckMode != AckProbe && o.AckMode != AckInline {
		return errors.Errorf("unexpected ack mode %d", o.AckMode)
	}
	if o.ProcessingCapacity < 0 || o.ProgressWindow < 0 || o.ProgressInterval < 0 {
		return errors.New("expected processing capacity, progress window and progress interval >= 0")
	}
	return nil
}

// Window is the admission window over scheduled send times.
func (o Options) Window() metrics.Window {
	return metrics.Window{
		WarmupEnd:     uint64(o.Warmup),
		ExperimentEnd: uint64(o.Duration - o.Cooldown),
	}
}

// FirstSendTime is 1ns when waiting for the load, so that the source holds
// its first target strictly after the seed batch at time 0.
func (o Options) FirstSendTime() uint64 {
	if o.WaitForLoad {
		return 1
	}
	return 0
}
