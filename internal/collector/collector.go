package collector

import (
	"fmt"

	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/schedule"
)

// Collector converts completion signals into latency samples. It replays the
// source's schedule as its queue of pending send times: every
// acknowledgement pops pending times in order and records (sendTime, at).
//
// Only pairs whose send time lies in the admission window reach the sink
// and are counted by RecordedSamples.
type Collector struct {
	pending  schedule.Times
	sink     metrics.Sink
	window   metrics.Window
	observer func(begin, end uint64)
	recorded int
}

type Option func(*Collector)

// WithWarmup excludes send times before t.
func WithWarmup(t uint64) Option {
	return func(c *Collector) { c.window.WarmupEnd = t }
}

// WithCooldown excludes send times from t onwards.
func WithCooldown(t uint64) Option {
	return func(c *Collector) { c.window.ExperimentEnd = t }
}

func WithWindow(w metrics.Window) Option {
	return func(c *Collector) { c.window = w }
}

// WithObserver is called with every admitted pair after it is recorded.
func WithObserver(observe func(begin, end uint64)) Option {
	return func(c *Collector) { c.observer = observe }
}

func New(pending schedule.Times, sink metrics.Sink, opts ...Option) *Collector {
	c := &Collector{
		pending: pending,
		sink:    sink,
		window:  metrics.Unbounded(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) record(begin, at uint64) {
	if !c.window.Admits(begin) {
		return
	}
	c.sink.Record(begin, at)
	c.recorded++
	if c.observer != nil {
		c.observer(begin, at)
	}
}

// AcknowledgeNext pops exactly one pending send time and records it against
// at. Acknowledging with nothing pending is a programming error.
func (c *Collector) AcknowledgeNext(at uint64) {
	begin, ok := c.pending.Next()
	if !ok {
		panic("expected a pending input time in Collector.AcknowledgeNext(); got none")
	}
	c.record(begin, at)
}

// AcknowledgeTill pops every pending send time <= bound, returning how many
// were popped.
func (c *Collector) AcknowledgeTill(at, bound uint64) int {
	return c.AcknowledgeWhile(at, func(t uint64) bool { return t <= bound })
}

// AcknowledgeWhile pops pending send times for as long as complete reports
// them complete, returning how many were popped.
func (c *Collector) AcknowledgeWhile(at uint64, complete func(t uint64) bool) int {
	n := 0
	for {
		begin, ok := c.pending.Peek()
		if !ok || !complete(begin) {
			return n
		}
		c.pending.Next()
		c.record(begin, at)
		n++
	}
}

// Pending reports whether any send time is still awaiting acknowledgement.
func (c *Collector) Pending() bool {
	return !c.pending.Exhausted()
}

func (c *Collector) RecordedSamples() int { return c.recorded }

func (c *Collector) Sink() metrics.Sink { return c.sink }

func (c *Collector) Window() metrics.Window { return c.window }

// Combine merges the samples of two collectors. Both must share the same
// admission window; the sinks enforce their own shape.
func (c *Collector) Combine(other *Collector) *Collector {
	if c.window != other.window {
		panic(fmt.Sprintf("expected equal admission windows in Collector.Combine(); got %s and %s", c.window, other.window))
	}
	return &Collector{
		pending:  c.pending,
		sink:     c.sink.Combine(other.sink),
		window:   c.window,
		recorded: c.recorded + other.recorded,
	}
}

func CombineAll(collectors []*Collector) *Collector {
	if len(collectors) == 0 {
		panic("expected at least one collector in CombineAll(); got none")
	}
	combined := collectors[0]
	for _, c := range collectors[1:] {
		combined = combined.Combine(c)
	}
	return combined
}
