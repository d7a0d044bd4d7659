package schedule

// Cursor wraps a schedule so callers can repeatedly take every time up to a
// bound without losing their position in it.
//
// A Cursor distinguishes between a schedule that has nothing due yet and one
// that is permanently exhausted: DrainUntilIncl returns ok == false only in
// the latter case, which is what tells the source to stop polling.
type Cursor struct {
	times Times
}

func NewCursor(times Times) *Cursor {
	return &Cursor{times: times}
}

func (c *Cursor) Next() (uint64, bool) {
	return c.times.Next()
}

func (c *Cursor) Peek() (uint64, bool) {
	return c.times.Peek()
}

func (c *Cursor) Exhausted() bool {
	return c.times.Exhausted()
}

// DrainUntilIncl returns a lazy sequence over the remaining times <= bound.
// Values are consumed from the underlying schedule as the Drain produces
// them; values the caller never pulls stay in the schedule.
func (c *Cursor) DrainUntilIncl(bound uint64) (*Drain, bool) {
	if c.times.Exhausted() {
		return nil, false
	}
	return &Drain{cursor: c, bound: bound}, true
}

// Drain is a forward-only, non-restartable view over a Cursor.
type Drain struct {
	cursor *Cursor
	bound  uint64
}

func (d *Drain) Next() (uint64, bool) {
	t, ok := d.cursor.times.Peek()
	if !ok || t > d.bound {
		return 0, false
	}
	d.cursor.times.Next()
	return t, true
}

// All consumes the rest of the drain.
func (d *Drain) All() []uint64 {
	var times []uint64
	for t, ok := d.Next(); ok; t, ok = d.Next() {
		times = append(times, t)
	}
	return times
}
