package metrics

import (
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	DefaultLowest  int64 = 1
	DefaultHighest       = int64(time.Hour)
	DefaultSigFigs       = 3
)

// Histogram is the raw latency accumulator. Latencies above the trackable
// range are saturated at the highest trackable value.
type Histogram struct {
	hist    *hdrhistogram.Histogram
	lowest  int64
	highest int64
	sigFigs int
}

func NewHistogram() *Histogram {
	return NewHistogramWithRange(DefaultLowest, DefaultHighest, DefaultSigFigs)
}

func NewHistogramWithRange(lowest, highest int64, sigFigs int) *Histogram {
	return &Histogram{
		hist:    hdrhistogram.New(lowest, highest, sigFigs),
		lowest:  lowest,
		highest: highest,
		sigFigs: sigFigs,
	}
}

func (h *Histogram) Record(begin, end uint64) {
	v := Latency(begin, end)
	if v > uint64(h.highest) {
		v = uint64(h.highest)
	}
	if err := h.hist.RecordValue(int64(v)); err != nil {
		panic(fmt.Errorf("unexpected err in Histogram.Record() for latency %d: %w", v, err))
	}
}

func (h *Histogram) Combine(other Sink) Sink {
	o, ok := other.(*Histogram)
	if !ok {
		panic(mismatch("Histogram.Combine()", h, other))
	}
	if h.lowest != o.lowest || h.highest != o.highest || h.sigFigs != o.sigFigs {
		panic(fmt.Sprintf("expected equal histogram ranges in Histogram.Combine(); got [%d, %d, %d] and [%d, %d, %d]",
			h.lowest, h.highest, h.sigFigs, o.lowest, o.highest, o.sigFigs))
	}

	combined := NewHistogramWithRange(h.lowest, h.highest, h.sigFigs)
	for _, src := range []*hdrhistogram.Histogram{h.hist, o.hist} {
		if dropped := combined.hist.Merge(src); dropped != 0 {
			panic(fmt.Sprintf("expected no dropped values in Histogram.Combine(); got %d", dropped))
		}
	}
	return combined
}

func (h *Histogram) Kind() Kind { return KindRaw }

func (h *Histogram) Count() int64 {
	return h.hist.TotalCount()
}

func (h *Histogram) ValueAtQuantile(q float64) uint64 {
	return uint64(h.hist.ValueAtQuantile(q))
}

func (h *Histogram) Mean() float64 {
	return h.hist.Mean()
}

func (h *Histogram) Max() uint64 {
	return uint64(h.hist.Max())
}

func (h *Histogram) Bars() []Bar {
	var bars []Bar
	for _, b := range h.hist.Distribution() {
		if b.Count == 0 {
			continue
		}
		bars = append(bars, Bar{From: uint64(b.From), To: uint64(b.To), Count: b.Count})
	}
	return bars
}
