package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLatency_ClampsAtZero(t *testing.T) {
	assert.Equal(t, uint64(5), Latency(10, 15))
	assert.Equal(t, uint64(0), Latency(15, 10))
}

func TestHistogram_RecordsLatency(t *testing.T) {
	h := NewHistogram()
	for i := uint64(1); i <= 100; i++ {
		h.Record(1_000, 1_000+i*uint64(time.Microsecond))
	}

	assert.Equal(t, int64(100), h.Count())
	p50 := h.ValueAtQuantile(50)
	assert.InDeltaf(t, float64(50*time.Microsecond), float64(p50), float64(time.Microsecond),
		"expected p50 near 50us; got %v", time.Duration(p50))
	assert.NotEmpty(t, h.Bars())
}

func TestHistogram_SaturatesAboveRange(t *testing.T) {
	h := NewHistogramWithRange(1, 1_000, 2)
	h.Record(0, 10_000)

	assert.Equal(t, int64(1), h.Count())
	assert.LessOrEqual(t, h.Max(), uint64(1_100))
}

func TestHistogram_CombinePanicsOnMismatchedRange(t *testing.T) {
	a := NewHistogramWithRange(1, 1_000, 2)
	b := NewHistogramWithRange(1, 2_000, 2)
	assert.Panics(t, func() { a.Combine(b) })
}

func TestHistogram_CombinePanicsOnDifferentKind(t *testing.T) {
	assert.Panics(t, func() { NewHistogram().Combine(NewSamples()) })
}

func TestHistogram_CombineDoesNotMutateInputs(t *testing.T) {
	a, b := NewHistogram(), NewHistogram()
	a.Record(0, 10)
	b.Record(0, 20)
	b.Record(0, 30)

	c := a.Combine(b).(*Histogram)
	assert.Equal(t, int64(3), c.Count())
	assert.Equal(t, int64(1), a.Count())
	assert.Equal(t, int64(2), b.Count())
}

func TestSamples_Percentiles(t *testing.T) {
	s := NewSamples()
	assert.Equal(t, uint64(0), s.ValueAtQuantile(50), "expected empty samples to report zero")

	for _, v := range []uint64{10, 20, 30, 40} {
		s.Record(0, v)
	}
	assert.Equal(t, uint64(10), s.ValueAtQuantile(0))
	assert.Equal(t, uint64(40), s.ValueAtQuantile(100))
	assert.Equal(t, int64(4), s.Count())
}

func TestSamples_BarsGroupEqualValues(t *testing.T) {
	s := NewSamples()
	for _, v := range []uint64{5, 1, 5, 3} {
		s.Record(0, v)
	}

	assert.Equal(t, []Bar{
		{From: 1, To: 1, Count: 1},
		{From: 3, To: 3, Count: 1},
		{From: 5, To: 5, Count: 2},
	}, s.Bars())
}

func TestWindowed_AdmitsHalfOpenWindow(t *testing.T) {
	inner := NewSamples()
	w := NewWindowed(inner, Window{WarmupEnd: 10, ExperimentEnd: 20})

	for _, begin := range []uint64{9, 10, 15, 19, 20} {
		w.Record(begin, begin+1)
	}

	assert.Equal(t, int64(3), inner.Count())
}

func TestWindowed_CombinePanicsOnDifferentWindows(t *testing.T) {
	a := NewWindowed(NewHistogram(), Window{WarmupEnd: 0, ExperimentEnd: 10})
	b := NewWindowed(NewHistogram(), Window{WarmupEnd: 1, ExperimentEnd: 10})
	assert.Panics(t, func() { a.Combine(b) })
}

func TestDistributionOf_UnwrapsDecorators(t *testing.T) {
	h := NewHistogram()
	d, ok := DistributionOf(NewWindowed(NewWindowed(h, Unbounded()), Unbounded()))

	require.True(t, ok)
	assert.Same(t, h, d)
}

func TestCombineAll_PanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { CombineAll(nil) })
}

func TestProperty_Combine_IsAssociative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		window := Window{WarmupEnd: 100, ExperimentEnd: 900}
		sinks := make([]Sink, 3)
		for i := range sinks {
			sinks[i] = NewWindowed(NewHistogram(), window)
			begins := rapid.SliceOf(rapid.Uint64Range(0, 1_000)).Draw(rt, "begins")
			for _, b := range begins {
				sinks[i].Record(b, b+rapid.Uint64Range(0, 1_000_000).Draw(rt, "latency"))
			}
		}

		left := sinks[0].Combine(sinks[1]).Combine(sinks[2])
		right := sinks[0].Combine(sinks[1].Combine(sinks[2]))

		l, _ := DistributionOf(left)
		r, _ := DistributionOf(right)
		assert.Equal(rt, l.Count(), r.Count())
		assert.Equal(rt, l.Bars(), r.Bars())
		assert.Equal(rt, l.ValueAtQuantile(99), r.ValueAtQuantile(99))
	})
}
