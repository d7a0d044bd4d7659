package metrics

import (
	"fmt"
	"math"
)

// Window is the admission window [WarmupEnd, ExperimentEnd) over scheduled
// send times. Units sent before WarmupEnd or from ExperimentEnd onwards are
// startup and shutdown transients and are excluded from statistics.
type Window struct {
	WarmupEnd     uint64
	ExperimentEnd uint64
}

// Unbounded admits every send time.
func Unbounded() Window {
	return Window{WarmupEnd: 0, ExperimentEnd: math.MaxUint64}
}

func (w Window) Admits(begin uint64) bool {
	return begin >= w.WarmupEnd && begin < w.ExperimentEnd
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.WarmupEnd, w.ExperimentEnd)
}

// Windowed forwards to the wrapped sink only pairs whose begin time lies in
// the window.
type Windowed struct {
	inner  Sink
	window Window
}

func NewWindowed(inner Sink, window Window) *Windowed {
	return &Windowed{inner: inner, window: window}
}

func (w *Windowed) Record(begin, end uint64) {
	if w.window.Admits(begin) {
		w.inner.Record(begin, end)
	}
}

func (w *Windowed) Combine(other Sink) Sink {
	o, ok := other.(*Windowed)
	if !ok {
		panic(mismatch("Windowed.Combine()", w, other))
	}
	if w.window != o.window {
		panic(fmt.Sprintf("expected equal windows in Windowed.Combine(); got %s and %s", w.window, o.window))
	}
	return &Windowed{inner: w.inner.Combine(o.inner), window: w.window}
}

func (w *Windowed) Kind() Kind { return KindWindowed }

func (w *Windowed) Unwrap() Sink { return w.inner }

func (w *Windowed) Window() Window { return w.window }
