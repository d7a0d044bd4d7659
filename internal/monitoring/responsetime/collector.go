// Package responsetime keeps a live view of recent latencies, used for
// progress reporting while a run is in flight.
package responsetime

import "time"

type Aggregation struct {
	P50   time.Duration // P50 is the 50th percentile latency.
	P75   time.Duration // P75 is the 75th percentile latency.
	P95   time.Duration // P95 is the 95th percentile latency.
	Count int           // Count is the number of latencies aggregated.
}

type Collector interface {
	Observe(begin, end uint64) // Observe records a unit sent at begin and acknowledged at end.
	Aggregate() *Aggregation   // Aggregate calculates percentiles over the latencies held.
	Reset()                    // Reset drops every latency held so far.
}

// New returns a collector over the last size latencies, or over every latency
// since the last reset if size is zero.
func New(size int) Collector {
	if size <= 0 {
		return NewExactWindow()
	}
	return NewRollingWindow(size)
}
