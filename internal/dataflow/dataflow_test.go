package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOperator struct {
	times   []uint64
	records int
}

func (o *recordingOperator) Process(t uint64, records []Record) {
	o.times = append(o.times, t)
	o.records += len(records)
}

// scriptedSource replays one call per step.
type scriptedSource struct {
	steps []func(c *Capability, out *Output)
}

func (s *scriptedSource) Run(c *Capability, out *Output) {
	if len(s.steps) == 0 {
		c.Release()
		return
	}
	s.steps[0](c, out)
	s.steps = s.steps[1:]
}

func TestCapability_Downgrade(t *testing.T) {
	c := &Capability{}
	c.Downgrade(10)
	assert.Equal(t, uint64(10), c.Time())
	c.Downgrade(10)
	assert.Panics(t, func() { c.Downgrade(9) }, "expected a regression to panic")

	c.Release()
	assert.True(t, c.Released())
	assert.Panics(t, func() { c.Downgrade(20) })
}

func TestOutput_GivePanicsBeforeCapability(t *testing.T) {
	w := NewWorker(0, 1, &recordingOperator{})
	out := &Output{worker: w, cap: &Capability{time: 5}}
	assert.Panics(t, func() { out.Give(4, Record{}) })
	assert.NotPanics(t, func() { out.Give(5, Record{}) })
}

func TestWorker_ProcessesInTimeOrder(t *testing.T) {
	op := &recordingOperator{}
	w := NewWorker(0, 1, op)
	w.NewSource("input", &scriptedSource{steps: []func(*Capability, *Output){
		func(c *Capability, out *Output) {
			out.Give(7, Record{Key: 1})
			out.Give(3, Record{Key: 2})
			out.Give(7, Record{Key: 3})
			c.Downgrade(8)
		},
	}})

	require.True(t, w.Step())
	assert.Equal(t, []uint64{3, 7}, op.times)
	assert.Equal(t, 3, op.records)

	assert.False(t, w.Step(), "expected no work once the source released its capability")
	assert.Equal(t, uint64(2), w.Steps())
}

func TestProbe_Watermark(t *testing.T) {
	w := NewWorker(0, 1, &recordingOperator{}, WithCapacity(1))
	w.NewSource("input", &scriptedSource{steps: []func(*Capability, *Output){
		func(c *Capability, out *Output) {
			out.Give(2, Record{})
			out.Give(4, Record{})
			c.Downgrade(10)
		},
		func(c *Capability, out *Output) {},
	}})
	p := w.Probe()

	wm, ok := p.Watermark()
	require.True(t, ok)
	assert.Equal(t, uint64(0), wm, "expected the initial capability to hold the watermark at 0")

	w.Step()
	wm, _ = p.Watermark()
	assert.Equal(t, uint64(4), wm, "expected the record at 4 to still be queued")
	assert.True(t, p.Reached(4))
	assert.False(t, p.Passed(4))
	assert.True(t, p.Passed(3))

	w.Step()
	wm, _ = p.Watermark()
	assert.Equal(t, uint64(10), wm)

	w.Step()
	assert.True(t, p.Done())
	assert.True(t, p.Passed(1<<63), "expected a completed probe to have passed every time")
}

func TestNewWorker_PanicsOnBadIndex(t *testing.T) {
	assert.Panics(t, func() { NewWorker(2, 2, &recordingOperator{}) })
	assert.Panics(t, func() { NewWorker(0, 0, &recordingOperator{}) })
}
