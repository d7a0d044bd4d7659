package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcz17/harness/internal/collector"
	"github.com/kcz17/harness/internal/harness"
	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/schedule"
	"github.com/kcz17/harness/internal/stats"
	"github.com/kcz17/harness/internal/timeline"
)

func newSamplesTimeline(latencies map[uint64][]uint64) *timeline.Timeline {
	tl := timeline.New(0, 30, 10, metrics.NewSamples(), func() metrics.Sink { return metrics.NewSamples() })
	for _, begin := range []uint64{0, 10, 20} {
		for _, l := range latencies[begin] {
			tl.Record(begin, begin+l)
		}
	}
	return tl
}

func TestFormatDetailedTimeline(t *testing.T) {
	tl := newSamplesTimeline(map[uint64][]uint64{
		0:  {5, 5, 7, 9},
		20: {3},
	})

	want := strings.Join([]string{
		"wc\t0\t5\t0.5\t2",
		"wc\t0\t7\t0.25\t1",
		"wc\t0\t9\t0\t1",
		"wc\t20\t3\t0\t1",
	}, "\n")
	assert.Equal(t, want, FormatDetailedTimeline("wc", tl))
}

func TestFormatSummaryTimeline(t *testing.T) {
	tl := newSamplesTimeline(map[uint64][]uint64{
		0:  {1, 2, 3, 4},
		10: {8},
	})

	lines := strings.Split(FormatSummaryTimeline("wc", tl), "\n")
	require.Len(t, lines, 3)
	// Ranks between two samples average them, truncated to whole nanoseconds.
	assert.Equal(t, "wc\t0\t1\t2\t3\t3\t3\t3\t3\t4", lines[0])
	assert.Equal(t, "wc\t10\t8\t8\t8\t8\t8\t8\t8\t8", lines[1])
	assert.Equal(t, "wc\t20\t0\t0\t0\t0\t0\t0\t0\t0", lines[2], "expected an empty bucket to report zeros")
}

func TestFormatSummary(t *testing.T) {
	s := metrics.NewSamples()
	s.Record(0, 10)
	s.Record(0, 20)

	lines := strings.Split(FormatSummary("overall", s), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "prefix\tcount\tp25\tp50\tp75\tp90\tp95\tp99\tp99.9\tp100", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "overall\t2\t10\t"), "expected count and p25 first; got %q", lines[1])
}

func TestSteadyState(t *testing.T) {
	steady := newSamplesTimeline(map[uint64][]uint64{
		0:  {10, 11, 12, 13, 14, 10, 11, 12, 13, 14},
		20: {10, 11, 12, 13, 14, 10, 11, 12, 13, 14},
	})
	result, ok := SteadyState(steady, stats.P95)
	require.True(t, ok)
	assert.False(t, result.Rejected)

	drifting := newSamplesTimeline(map[uint64][]uint64{
		0:  {10, 11, 12, 13, 14, 10, 11, 12, 13, 14},
		20: {90, 91, 92, 93, 94, 90, 91, 92, 93, 94},
	})
	result, ok = SteadyState(drifting, stats.P95)
	require.True(t, ok)
	assert.True(t, result.Rejected)

	_, ok = SteadyState(newSamplesTimeline(map[uint64][]uint64{0: {1}}), stats.P95)
	assert.False(t, ok, "expected no verdict with a single non-empty bucket")
}

func TestBuildResult(t *testing.T) {
	options := harness.DefaultOptions()
	options.Duration = 30 * time.Nanosecond
	options.Warmup = 0
	options.Cooldown = 0

	tl := timeline.New(0, 30, 10, metrics.NewHistogram(), func() metrics.Sink { return metrics.NewHistogram() })
	c := collector.New(schedule.NewConstantThroughput(0, 5, 30), tl)
	c.AcknowledgeTill(32, 30)

	result := BuildResult(options, &harness.Result{Collector: c, Workers: 1, Emitted: 6, Elapsed: time.Second})

	assert.Equal(t, SchemaVersion, result.Metadata.Version)
	assert.Equal(t, "30ns", result.Configuration.Duration)
	assert.Equal(t, "timelined", result.Configuration.SinkKind)
	assert.Equal(t, "10ns", result.Configuration.TimelineInterval)
	assert.Equal(t, 6, result.Results.Scheduled)
	assert.Equal(t, 6, result.Results.Acknowledged)
	assert.Equal(t, int64(6), result.Results.Recorded)
	require.Len(t, result.Results.Timeline, 3)
	assert.Equal(t, 2, result.Results.Timeline[1].Samples)
	assert.NotNil(t, result.Results.SteadyState)
}

func TestBuildResult_SinkSideWindow(t *testing.T) {
	options := harness.DefaultOptions()
	options.SinkKind = metrics.KindWindowed

	window := metrics.Window{WarmupEnd: 10, ExperimentEnd: 20}
	c := collector.New(schedule.NewConstantThroughput(0, 5, 30), metrics.NewWindowed(metrics.NewHistogram(), window))
	c.AcknowledgeTill(40, 30)

	result := BuildResult(options, &harness.Result{Collector: c, Workers: 1, Emitted: 6})

	assert.Equal(t, 6, result.Results.Acknowledged, "expected transients to be acknowledged")
	assert.Equal(t, int64(2), result.Results.Recorded, "expected only 10 and 15 to be measured")
}

func TestWriteResultToFile(t *testing.T) {
	c := collector.New(schedule.NewConstantThroughput(0, 5, 30), metrics.NewHistogram())
	c.AcknowledgeTill(40, 30)
	result := BuildResult(harness.DefaultOptions(), &harness.Result{Collector: c, Workers: 1, Emitted: 6})

	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteResultToFile(result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(6), decoded.Results.Recorded)
	assert.Nil(t, decoded.Results.SteadyState, "expected no steady state check without a timeline")
}

func TestWritePlot(t *testing.T) {
	tl := newSamplesTimeline(map[uint64][]uint64{
		0:  {1_000_000, 2_000_000},
		10: {3_000_000},
	})
	path := filepath.Join(t.TempDir(), "latency.png")
	require.NoError(t, WritePlot(tl, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
