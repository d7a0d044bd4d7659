package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/schedule"
	"github.com/kcz17/harness/internal/timeline"
)

func TestCollector_AcknowledgeNext(t *testing.T) {
	sink := metrics.NewSamples()
	c := New(schedule.NewConstantThroughput(0, 10, 30), sink)

	c.AcknowledgeNext(5)
	c.AcknowledgeNext(25)

	assert.Equal(t, 2, c.RecordedSamples())
	assert.Equal(t, []float64{5, 15}, sink.Values())
	assert.True(t, c.Pending())
}

func TestCollector_AcknowledgeNextPanicsWhenNothingPending(t *testing.T) {
	c := New(schedule.NewConstantThroughput(0, 10, 10), metrics.NewHistogram())

	c.AcknowledgeNext(1)
	assert.Panics(t, func() { c.AcknowledgeNext(2) })
}

func TestCollector_AcknowledgeTill(t *testing.T) {
	sink := metrics.NewSamples()
	c := New(schedule.NewConstantThroughput(0, 10, 100), sink)

	n := c.AcknowledgeTill(50, 20)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{50, 40, 30}, sink.Values())

	n = c.AcknowledgeTill(60, 20)
	assert.Equal(t, 0, n, "expected already acknowledged times not to be popped again")
}

func TestCollector_AcknowledgeWhile(t *testing.T) {
	c := New(schedule.NewConstantThroughput(0, 10, 100), metrics.NewHistogram())

	watermark := uint64(35)
	n := c.AcknowledgeWhile(40, func(t uint64) bool { return watermark > t })

	assert.Equal(t, 4, n)
	assert.Equal(t, 4, c.RecordedSamples())
}

func TestCollector_WindowExcludesTransients(t *testing.T) {
	sink := metrics.NewSamples()
	c := New(schedule.NewConstantThroughput(0, 10, 100), sink, WithWarmup(20), WithCooldown(60))

	c.AcknowledgeTill(1_000, 100)

	assert.Equal(t, 4, c.RecordedSamples(), "expected only 20, 30, 40, 50 to be admitted")
	assert.Equal(t, int64(4), sink.Count())
	assert.False(t, c.Pending())
}

func TestCollector_CombinePanicsOnDifferentWindows(t *testing.T) {
	a := New(schedule.NewConstantThroughput(0, 10, 100), metrics.NewHistogram(), WithWarmup(10))
	b := New(schedule.NewConstantThroughput(0, 10, 100), metrics.NewHistogram(), WithWarmup(20))

	assert.Panics(t, func() { a.Combine(b) })
}

func TestCollector_CombinePanicsOnDifferentTimelines(t *testing.T) {
	newBucket := func() metrics.Sink { return metrics.NewHistogram() }
	a := New(schedule.NewConstantThroughput(0, 10, 100), timeline.New(0, 100, 10, metrics.NewHistogram(), newBucket))
	b := New(schedule.NewConstantThroughput(0, 10, 100), timeline.New(0, 100, 20, metrics.NewHistogram(), newBucket))

	assert.Panics(t, func() { a.Combine(b) })
}

func TestCombineAll(t *testing.T) {
	var collectors []*Collector
	for i := 0; i < 3; i++ {
		c := New(schedule.NewConstantThroughput(0, 10, 100), metrics.NewHistogram())
		c.AcknowledgeTill(200, uint64(i)*10)
		collectors = append(collectors, c)
	}

	combined := CombineAll(collectors)
	assert.Equal(t, 1+2+3, combined.RecordedSamples())
	d, ok := metrics.DistributionOf(combined.Sink())
	require.True(t, ok)
	assert.Equal(t, int64(6), d.Count())
}

// The recorded count equals the number of acknowledged send times inside the
// window, however the three acknowledgement styles are interleaved.
func TestProperty_Collector_RecordedSamplesMatchesAdmitted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		interArrival := rapid.Uint64Range(1, 20).Draw(rt, "interArrival")
		end := rapid.Uint64Range(0, 1_000).Draw(rt, "end")
		warmup := rapid.Uint64Range(0, 1_000).Draw(rt, "warmup")
		cooldown := rapid.Uint64Range(0, 1_000).Draw(rt, "cooldown")

		c := New(schedule.NewConstantThroughput(0, interArrival, end), metrics.NewHistogram(),
			WithWarmup(warmup), WithCooldown(cooldown))
		shadow := schedule.NewConstantThroughput(0, interArrival, end)

		admitted := 0
		popped := func(n int) {
			for i := 0; i < n; i++ {
				t, ok := shadow.Next()
				if !ok {
					rt.Fatalf("expected shadow schedule to have a value")
				}
				if t >= warmup && t < cooldown {
					admitted++
				}
			}
		}

		var bound uint64
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 50).Draw(rt, "ops")
		for _, op := range ops {
			bound += rapid.Uint64Range(0, 100).Draw(rt, "advance")
			switch op {
			case 0:
				if c.Pending() {
					c.AcknowledgeNext(bound)
					popped(1)
				}
			case 1:
				popped(c.AcknowledgeTill(bound, bound))
			case 2:
				limit := bound
				popped(c.AcknowledgeWhile(bound, func(t uint64) bool { return t < limit }))
			}
		}

		assert.Equal(rt, admitted, c.RecordedSamples())
	})
}

func TestProperty_Collector_CombineIsAssociative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		newBucket := func() metrics.Sink { return metrics.NewHistogram() }
		collectors := make([]*Collector, 3)
		for i := range collectors {
			collectors[i] = New(
				schedule.NewConstantThroughput(0, 5, 500),
				timeline.New(100, 400, 50, metrics.NewHistogram(), newBucket),
				WithWarmup(100), WithCooldown(400))
			bound := rapid.Uint64Range(0, 500).Draw(rt, "bound")
			collectors[i].AcknowledgeTill(bound+rapid.Uint64Range(0, 1_000).Draw(rt, "delay"), bound)
		}

		left := collectors[0].Combine(collectors[1]).Combine(collectors[2])
		right := collectors[0].Combine(collectors[1].Combine(collectors[2]))

		assert.Equal(rt, left.RecordedSamples(), right.RecordedSamples())
		lt := left.Sink().(*timeline.Timeline)
		rtl := right.Sink().(*timeline.Timeline)
		for i := range lt.Elements() {
			assert.Equal(rt, lt.Elements()[i].Samples, rtl.Elements()[i].Samples)
		}
	})
}

func TestCollector_ObserverSeesAdmittedPairsOnly(t *testing.T) {
	var observed [][2]uint64
	c := New(schedule.NewConstantThroughput(0, 10, 50), metrics.NewHistogram(),
		WithWarmup(10),
		WithObserver(func(begin, end uint64) { observed = append(observed, [2]uint64{begin, end}) }))

	c.AcknowledgeTill(100, 20)

	assert.Equal(t, [][2]uint64{{10, 100}, {20, 100}}, observed)
}
