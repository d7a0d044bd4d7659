package metrics

import "fmt"

// Kind tags the concrete variant behind a Sink.
type Kind int

const (
	KindRaw Kind = iota
	KindWindowed
	KindTimelined
	KindSamples
)

func (k Kind) String() string {
	return [...]string{"raw", "windowed", "timelined", "samples"}[k]
}

// Sink accumulates (begin, end) pairs, where begin is the scheduled send
// time of a unit and end the time it was acknowledged as complete.
type Sink interface {
	Record(begin, end uint64)
	// Combine merges two sinks of identical shape into a new sink. Combining
	// sinks with different parameters is a programming error and panics.
	Combine(other Sink) Sink
	Kind() Kind
}

// Distribution is implemented by sinks which can summarise the latencies they
// have accumulated.
type Distribution interface {
	Count() int64
	// ValueAtQuantile returns the latency at percentile q, 0 <= q <= 100.
	ValueAtQuantile(q float64) uint64
	// Bars returns the non-empty latency ranges in ascending order.
	Bars() []Bar
}

// Bar is a contiguous latency range [From, To] and how many samples fell in it.
type Bar struct {
	From  uint64
	To    uint64
	Count int64
}

// Wrapper is implemented by decorating sinks.
type Wrapper interface {
	Unwrap() Sink
}

// DistributionOf finds the first Distribution in a chain of decorators.
func DistributionOf(s Sink) (Distribution, bool) {
	for s != nil {
		if d, ok := s.(Distribution); ok {
			return d, true
		}
		w, ok := s.(Wrapper)
		if !ok {
			return nil, false
		}
		s = w.Unwrap()
	}
	return nil, false
}

// Latency is end - begin, clamped at zero for acknowledgements observed
// within the same clock reading as the send.
func Latency(begin, end uint64) uint64 {
	if end < begin {
		return 0
	}
	return end - begin
}

// CombineAll folds all sinks with Combine, left to right.
func CombineAll(sinks []Sink) Sink {
	if len(sinks) == 0 {
		panic("expected at least one sink in CombineAll(); got none")
	}
	combined := sinks[0]
	for _, s := range sinks[1:] {
		combined = combined.Combine(s)
	}
	return combined
}

func mismatch(method string, want Sink, got Sink) string {
	return fmt.Sprintf("expected %s sink in %s; got %T", want.Kind(), method, got)
}
