package schedule

import (
	"fmt"
	"math"
	"time"
)

// Times is a resumable sequence of logical send times, in nanoseconds since
// the start of a run. Implementations produce strictly increasing values.
type Times interface {
	// Next consumes and returns the next time.
	Next() (uint64, bool)
	// Peek returns the next time without consuming it.
	Peek() (uint64, bool)
	// Exhausted is true once no further times remain.
	Exhausted() bool
}

// ConstantThroughput produces first, first+interArrival, first+2*interArrival,
// and so on, stopping strictly before end. The logical send times are
// decoupled from wall-clock jitter: latency is always accounted against the
// time a unit was scheduled, not the time it was actually emitted.
type ConstantThroughput struct {
	next         uint64
	interArrival uint64
	end          uint64
}

func NewConstantThroughput(first, interArrival, end uint64) *ConstantThroughput {
	if interArrival == 0 {
		panic("expected interArrival > 0 in NewConstantThroughput(); got 0")
	}

	return &ConstantThroughput{
		next:         first,
		interArrival: interArrival,
		end:          end,
	}
}

// ForThroughput builds the schedule for perSecond units per second over the
// given duration, starting at time zero. perSecond must divide one second.
func ForThroughput(perSecond uint64, duration time.Duration) *ConstantThroughput {
	if perSecond == 0 || uint64(time.Second)%perSecond != 0 {
		panic(fmt.Sprintf("expected perSecond to divide %d in ForThroughput(); got %d", uint64(time.Second), perSecond))
	}
	return NewConstantThroughput(0, uint64(time.Second)/perSecond, uint64(duration))
}

func (s *ConstantThroughput) Next() (uint64, bool) {
	if s.Exhausted() {
		return 0, false
	}

	n := s.next
	if s.next > math.MaxUint64-s.interArrival {
		// The following value is unrepresentable, so it lies beyond end.
		s.next = s.end
	} else {
		s.next += s.interArrival
	}
	return n, true
}

func (s *ConstantThroughput) Peek() (uint64, bool) {
	if s.Exhausted() {
		return 0, false
	}
	return s.next, true
}

func (s *ConstantThroughput) Exhausted() bool {
	return s.next >= s.end
}

// Remaining is the number of times not yet consumed.
func (s *ConstantThroughput) Remaining() uint64 {
	if s.Exhausted() {
		return 0
	}
	return (s.end - s.next + s.interArrival - 1) / s.interArrival
}

// InterArrival is the gap between consecutive times.
func (s *ConstantThroughput) InterArrival() uint64 {
	return s.interArrival
}
