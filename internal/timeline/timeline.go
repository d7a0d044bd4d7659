package timeline

import (
	"fmt"

	"github.com/kcz17/harness/internal/metrics"
)

// Element is one bucket of a timeline, covering [Time, Time+dt).
type Element struct {
	Time    uint64
	Metrics metrics.Sink
	Samples int
}

func (e Element) Combined(other Element) Element {
	if e.Time != other.Time {
		panic(fmt.Sprintf("expected equal element times in Element.Combined(); got %d and %d", e.Time, other.Time))
	}
	return Element{
		Time:    e.Time,
		Metrics: e.Metrics.Combine(other.Metrics),
		Samples: e.Samples + other.Samples,
	}
}

// Timeline is a metrics sink which, besides delegating every record to an
// overall base sink, buckets records into fixed-width windows by their begin
// (scheduled send) time.
//
// The bucket cursor only moves forward: a record whose begin time is earlier
// than the current bucket is attributed to the current bucket. Records must
// therefore be delivered in non-decreasing begin order, which holds when
// acknowledgements follow watermark progress.
type Timeline struct {
	base     metrics.Sink
	start    uint64
	end      uint64
	dt       uint64
	cur      int
	curTime  uint64
	elements []Element
}

// New precomputes the buckets for [start, end) at stride dt. newBucket
// creates the sink for each bucket.
func New(start, end, dt uint64, base metrics.Sink, newBucket func() metrics.Sink) *Timeline {
	if dt == 0 {
		panic("expected dt > 0 in timeline.New(); got 0")
	}

	var elements []Element
	for t := start; t < end; t += dt {
		elements = append(elements, Element{Time: t, Metrics: newBucket()})
		if t > ^uint64(0)-dt {
			break
		}
	}

	return &Timeline{
		base:     base,
		start:    start,
		end:      end,
		dt:       dt,
		cur:      0,
		curTime:  start,
		elements: elements,
	}
}

func (t *Timeline) Record(begin, end uint64) {
	if begin >= t.end || len(t.elements) == 0 {
		panic(fmt.Sprintf("expected begin time within timeline [%d, %d) in Timeline.Record(); got %d",
			t.start, t.end, begin))
	}
	if begin >= t.curTime {
		skip := (begin - t.curTime) / t.dt
		if skip >= uint64(len(t.elements)-t.cur) {
			panic(fmt.Sprintf("expected bucket for %d within %d buckets in Timeline.Record(); got %d past bucket %d",
				begin, len(t.elements), skip, t.cur))
		}
		t.cur += int(skip)
		t.curTime += skip * t.dt
	}
	t.base.Record(begin, end)

	e := &t.elements[t.cur]
	e.Metrics.Record(begin, end)
	e.Samples++
}

func (t *Timeline) Combine(other metrics.Sink) metrics.Sink {
	o, ok := other.(*Timeline)
	if !ok {
		panic(fmt.Sprintf("expected timelined sink in Timeline.Combine(); got %T", other))
	}
	if t.dt != o.dt {
		panic(fmt.Sprintf("expected equal dt in Timeline.Combine(); got %d and %d", t.dt, o.dt))
	}
	if t.start != o.start || len(t.elements) != len(o.elements) {
		panic(fmt.Sprintf("expected equal timeline shapes in Timeline.Combine(); got start %d with %d buckets and start %d with %d buckets",
			t.start, len(t.elements), o.start, len(o.elements)))
	}

	elements := make([]Element, len(t.elements))
	for i := range t.elements {
		elements[i] = t.elements[i].Combined(o.elements[i])
	}
	return &Timeline{
		base:     t.base.Combine(o.base),
		start:    t.start,
		end:      t.end,
		dt:       t.dt,
		cur:      t.cur,
		curTime:  t.curTime,
		elements: elements,
	}
}

func (t *Timeline) Kind() metrics.Kind { return metrics.KindTimelined }

// Unwrap exposes the overall base sink.
func (t *Timeline) Unwrap() metrics.Sink { return t.base }

func (t *Timeline) Base() metrics.Sink { return t.base }

func (t *Timeline) Elements() []Element { return t.elements }

func (t *Timeline) Start() uint64 { return t.start }

func (t *Timeline) End() uint64 { return t.end }

func (t *Timeline) Dt() uint64 { return t.dt }
