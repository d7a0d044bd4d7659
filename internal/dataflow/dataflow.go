// Package dataflow is a minimal step-driven host for a single-worker
// pipeline: sources holding capabilities emit timestamped records, one
// operator consumes them in time order, and a probe reports the watermark
// below which no further records can appear.
//
// It implements only what the harness consumes. There is no exchange
// between workers and no general scheduling.
package dataflow

import (
	"fmt"
	"sort"
)

// Record is a single unit of input.
type Record struct {
	Key   uint64
	Value uint64
}

// Operator is the business computation. Process receives every record of a
// timestamp, in non-decreasing timestamp order across calls.
type Operator interface {
	Process(t uint64, records []Record)
}

// Source is invoked once per step for as long as its capability has not
// been released.
type Source interface {
	Run(c *Capability, out *Output)
}

// Sink is invoked at the end of every step, once records have been
// processed.
type Sink interface {
	Step()
}

// Capability is the right to emit records at or after Time.
type Capability struct {
	time     uint64
	released bool
}

func (c *Capability) Time() uint64 { return c.time }

func (c *Capability) Released() bool { return c.released }

// Downgrade advances the capability. Capabilities never move backwards.
func (c *Capability) Downgrade(t uint64) {
	if c.released {
		panic("expected a held capability in Capability.Downgrade(); got a released one")
	}
	if t < c.time {
		panic(fmt.Sprintf("expected capability to never regress in Capability.Downgrade(); got %d after %d", t, c.time))
	}
	c.time = t
}

func (c *Capability) Release() {
	c.released = true
}

type batch struct {
	time    uint64
	records []Record
}

// Output accepts records on behalf of a source.
type Output struct {
	worker *Worker
	cap    *Capability
}

func (o *Output) Give(t uint64, r Record) {
	o.GiveBatch(t, []Record{r})
}

func (o *Output) GiveBatch(t uint64, records []Record) {
	if o.cap.released {
		panic("expected a held capability in Output.GiveBatch(); got a released one")
	}
	if t < o.cap.time {
		panic(fmt.Sprintf("expected record time >= capability time %d in Output.GiveBatch(); got %d", o.cap.time, t))
	}
	if len(records) == 0 {
		return
	}
	o.worker.enqueue(t, records)
}

type source struct {
	name string
	src  Source
	cap  *Capability
	out  *Output
}

// Worker is one single-threaded instance of the pipeline.
type Worker struct {
	index    int
	peers    int
	op       Operator
	sources  []*source
	sinks    []Sink
	batches  []batch
	capacity int
	steps    uint64
	probe    *Probe
}

type Option func(*Worker)

// WithCapacity limits how many records the operator processes per step.
// Anything beyond stays queued, holding the watermark back.
func WithCapacity(records int) Option {
	return func(w *Worker) { w.capacity = records }
}

func NewWorker(index, peers int, op Operator, opts ...Option) *Worker {
	if peers <= 0 || index < 0 || index >= peers {
		panic(fmt.Sprintf("expected 0 <= index < peers in dataflow.NewWorker(); got index %d, peers %d", index, peers))
	}
	w := &Worker{
		index: index,
		peers: peers,
		op:    op,
	}
	w.probe = &Probe{worker: w}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Index() int { return w.index }

func (w *Worker) Peers() int { return w.peers }

func (w *Worker) Steps() uint64 { return w.steps }

// NewSource registers src with a capability at time zero.
func (w *Worker) NewSource(name string, src Source) {
	c := &Capability{}
	w.sources = append(w.sources, &source{
		name: name,
		src:  src,
		cap:  c,
		out:  &Output{worker: w, cap: c},
	})
}

func (w *Worker) AddSink(s Sink) {
	w.sinks = append(w.sinks, s)
}

func (w *Worker) Probe() *Probe { return w.probe }

func (w *Worker) enqueue(t uint64, records []Record) {
	i := sort.Search(len(w.batches), func(i int) bool { return w.batches[i].time >= t })
	if i < len(w.batches) && w.batches[i].time == t {
		w.batches[i].records = append(w.batches[i].records, records...)
		return
	}
	w.batches = append(w.batches, batch{})
	copy(w.batches[i+1:], w.batches[i:])
	w.batches[i] = batch{time: t, records: append([]Record(nil), records...)}
}

// Step runs every live source once, processes queued records in time order
// (up to the capacity, if set) and then steps every sink. It reports whether
// any work remains.
func (w *Worker) Step() bool {
	w.steps++

	for _, s := range w.sources {
		if !s.cap.released {
			s.src.Run(s.cap, s.out)
		}
	}

	budget := w.capacity
	for len(w.batches) > 0 {
		head := &w.batches[0]
		records := head.records
		if w.capacity > 0 {
			if budget == 0 {
				break
			}
			if len(records) > budget {
				records = records[:budget]
			}
			budget -= len(records)
		}
		w.op.Process(head.time, records)
		head.records = head.records[len(records):]
		if len(head.records) == 0 {
			w.batches = w.batches[1:]
		}
	}

	for _, s := range w.sinks {
		s.Step()
	}

	return !w.probe.Done()
}

// Probe observes the worker's progress.
type Probe struct {
	worker *Worker
}

// Watermark is the earliest time at which a record may still be processed.
// ok is false once all sources have released their capabilities and every
// record has been processed.
func (p *Probe) Watermark() (t uint64, ok bool) {
	w := p.worker
	for _, s := range w.sources {
		if s.cap.released {
			continue
		}
		if !ok || s.cap.time < t {
			t, ok = s.cap.time, true
		}
	}
	if len(w.batches) > 0 && (!ok || w.batches[0].time < t) {
		t, ok = w.batches[0].time, true
	}
	return t, ok
}

// Reached reports whether the watermark is at or beyond t.
func (p *Probe) Reached(t uint64) bool {
	wm, ok := p.Watermark()
	return !ok || wm >= t
}

// Passed reports whether every record at time t has been processed.
func (p *Probe) Passed(t uint64) bool {
	wm, ok := p.Watermark()
	return !ok || wm > t
}

func (p *Probe) Done() bool {
	_, ok := p.Watermark()
	return !ok
}
