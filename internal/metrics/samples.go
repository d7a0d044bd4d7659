package metrics

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
)

// Samples keeps every latency. As storage and computation are both O(n), it
// is meant for short runs where exact percentiles are wanted.
type Samples struct {
	latencies []float64
}

func NewSamples() *Samples {
	return &Samples{latencies: []float64{}}
}

func (s *Samples) Record(begin, end uint64) {
	s.latencies = append(s.latencies, float64(Latency(begin, end)))
}

func (s *Samples) Combine(other Sink) Sink {
	o, ok := other.(*Samples)
	if !ok {
		panic(mismatch("Samples.Combine()", s, other))
	}
	latencies := make([]float64, 0, len(s.latencies)+len(o.latencies))
	latencies = append(latencies, s.latencies...)
	latencies = append(latencies, o.latencies...)
	return &Samples{latencies: latencies}
}

func (s *Samples) Kind() Kind { return KindSamples }

func (s *Samples) Count() int64 {
	return int64(len(s.latencies))
}

func (s *Samples) ValueAtQuantile(q float64) uint64 {
	// The stats package requires input arrays to be non-empty.
	if len(s.latencies) == 0 {
		return 0
	}

	// stats.Percentile rejects ranks below the first sample, which are the
	// minimum by definition.
	var v float64
	var err error
	if q <= 0 || q/100*float64(len(s.latencies)) < 1 {
		v, err = stats.Min(s.latencies)
	} else {
		v, err = stats.Percentile(s.latencies, q)
	}
	if err != nil {
		panic(fmt.Errorf("unexpected err in Samples.ValueAtQuantile() while calculating p%v: %w", q, err))
	}
	return uint64(v)
}

func (s *Samples) Bars() []Bar {
	sorted := make([]float64, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Float64s(sorted)

	var bars []Bar
	for _, v := range sorted {
		u := uint64(v)
		if n := len(bars); n > 0 && bars[n-1].To == u {
			bars[n-1].Count++
			continue
		}
		bars = append(bars, Bar{From: u, To: u, Count: 1})
	}
	return bars
}

// Values returns a copy of the recorded latencies in nanoseconds.
func (s *Samples) Values() []float64 {
	values := make([]float64, len(s.latencies))
	copy(values, s.latencies)
	return values
}
