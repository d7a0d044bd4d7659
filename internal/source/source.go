// Package source implements the flow-controlled source: it injects the
// scheduled units no faster than wall time allows, and only once the
// pipeline has caught up with what was injected before.
package source

import (
	"fmt"

	"github.com/kcz17/harness/internal/dataflow"
	"github.com/kcz17/harness/internal/run"
	"github.com/kcz17/harness/internal/schedule"
)

type State int

const (
	Loading State = iota
	Waiting
	Running
	Done
)

func (s State) String() string {
	return [...]string{"loading", "waiting", "running", "done"}[s]
}

// Generator produces the record sent at a scheduled time.
type Generator interface {
	Next(t uint64) dataflow.Record
}

// Acknowledger is invoked at the start of every running step when
// acknowledgement happens inline with the source.
type Acknowledger interface {
	Acknowledge()
}

type Source struct {
	ctx         *run.Context
	cursor      *schedule.Cursor
	generator   Generator
	load        []dataflow.Record
	loadTime    uint64
	granularity uint64
	waitForLoad bool
	ack         Acknowledger
	state       State
	target      uint64
	emitted     int
}

type Option func(*Source)

// WithLoad sets the seed batch emitted before any scheduled unit.
func WithLoad(records []dataflow.Record) Option {
	return func(s *Source) { s.load = records }
}

// WithLoadTime sets the time the seed batch is emitted at. It must not be
// later than the first scheduled time.
func WithLoadTime(t uint64) Option {
	return func(s *Source) { s.loadTime = t }
}

// WithGranularity rounds each emission target down to a multiple of g
// nanoseconds.
func WithGranularity(g uint64) Option {
	return func(s *Source) { s.granularity = g }
}

// WithWaitForLoad holds back the schedule until the seed batch has been
// processed.
func WithWaitForLoad() Option {
	return func(s *Source) { s.waitForLoad = true }
}

func WithInlineAcknowledger(a Acknowledger) Option {
	return func(s *Source) { s.ack = a }
}

func New(ctx *run.Context, times schedule.Times, generator Generator, opts ...Option) *Source {
	s := &Source{
		ctx:         ctx,
		cursor:      schedule.NewCursor(times),
		generator:   generator,
		granularity: 1,
		state:       Loading,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.granularity == 0 {
		panic("expected granularity > 0 in source.New(); got 0")
	}
	if first, ok := s.cursor.Peek(); ok && s.loadTime > first {
		panic(fmt.Sprintf("expected load time <= first scheduled time %d in source.New(); got %d", first, s.loadTime))
	}
	return s
}

// Run advances the state machine by one invocation. Loading and Waiting
// fall through to Running within the same invocation once they are done.
func (s *Source) Run(c *dataflow.Capability, out *dataflow.Output) {
	if s.state == Loading {
		s.runLoading(c, out)
	}
	if s.state == Waiting {
		if !s.ctx.Probe().Reached(c.Time()) {
			return
		}
		s.target = c.Time()
		s.state = Running
	}
	if s.state == Running {
		s.runRunning(c, out)
	}
}

func (s *Source) runLoading(c *dataflow.Capability, out *dataflow.Output) {
	if len(s.load) > 0 {
		out.GiveBatch(s.loadTime, s.load)
	}

	first, ok := s.cursor.Peek()
	if !ok {
		c.Release()
		s.state = Done
		return
	}

	token := s.loadTime
	if first > token {
		token = first
	}
	c.Downgrade(token)

	if s.waitForLoad {
		s.state = Waiting
		return
	}
	s.target = 0
	s.state = Running
}

func (s *Source) runRunning(c *dataflow.Capability, out *dataflow.Output) {
	// The pipeline has not caught up with the previous target yet.
	if !s.ctx.Probe().Reached(s.target) {
		return
	}

	s.ctx.Start()
	if s.ack != nil {
		s.ack.Acknowledge()
	}

	target := s.ctx.Elapsed() / s.granularity * s.granularity
	if drain, ok := s.cursor.DrainUntilIncl(target); ok {
		for t, more := drain.Next(); more; t, more = drain.Next() {
			out.Give(t, s.generator.Next(t))
			s.emitted++
		}
	}

	if target > s.target {
		s.target = target
	}
	if s.cursor.Exhausted() {
		c.Release()
		s.state = Done
		return
	}
	// Nothing at or before target remains to be given.
	if target+1 > c.Time() {
		c.Downgrade(target + 1)
	}
}

func (s *Source) State() State { return s.state }

// Target is the watermark the pipeline must reach before the next emission.
func (s *Source) Target() uint64 { return s.target }

// Emitted is the number of scheduled units injected so far.
func (s *Source) Emitted() int { return s.emitted }
