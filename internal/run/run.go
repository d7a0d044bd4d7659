// Package run holds the state shared by the components of one worker's
// pipeline: the wall clock, the moment the run started and the probe
// observing downstream progress.
package run

import "time"

type Clock interface {
	Now() time.Time
}

type RealtimeClock struct{}

func NewRealtimeClock() RealtimeClock {
	return RealtimeClock{}
}

func (RealtimeClock) Now() time.Time { return time.Now() }

// Probe reports the pipeline watermark.
type Probe interface {
	// Reached reports whether the watermark is at or beyond t.
	Reached(t uint64) bool
	// Passed reports whether every unit at time t has been processed.
	Passed(t uint64) bool
}

// Context is created once per pipeline. The source stamps the start of the
// run; everything else reads it.
type Context struct {
	clock   Clock
	probe   Probe
	start   time.Time
	started bool
}

func NewContext(clock Clock, probe Probe) *Context {
	return &Context{clock: clock, probe: probe}
}

// Start stamps the run start. Only the first call has any effect.
func (c *Context) Start() {
	if c.started {
		return
	}
	c.start = c.clock.Now()
	c.started = true
}

func (c *Context) Started() bool { return c.started }

func (c *Context) StartTime() time.Time { return c.start }

// Elapsed is the time since the run started in nanoseconds, or zero before
// the run has started.
func (c *Context) Elapsed() uint64 {
	if !c.started {
		return 0
	}
	d := c.clock.Now().Sub(c.start)
	if d < 0 {
		return 0
	}
	return uint64(d)
}

func (c *Context) Probe() Probe { return c.probe }

func (c *Context) Clock() Clock { return c.clock }
