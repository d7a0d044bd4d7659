package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/kcz17/harness/internal/harness"
	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/stats"
	"github.com/kcz17/harness/internal/timeline"
)

const SchemaVersion = "1.1"

type Result struct {
	Metadata      Metadata      `json:"metadata"`
	Configuration Configuration `json:"configuration"`
	Results       Results       `json:"results"`
}

type Metadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type Configuration struct {
	Workers            int    `json:"workers"`
	Throughput         uint64 `json:"throughput"`
	Duration           string `json:"duration"`
	Granularity        string `json:"granularity"`
	Warmup             string `json:"warmup"`
	Cooldown           string `json:"cooldown"`
	Keys               uint64 `json:"keys"`
	WaitForLoad        bool   `json:"waitForLoad"`
	AckMode            string `json:"ackMode"`
	SinkKind           string `json:"sinkKind"`
	TimelineInterval   string `json:"timelineInterval,omitempty"`
	IncludeTransients  bool   `json:"includeTransients"`
	ProcessingCapacity int    `json:"processingCapacity"`
}

type Results struct {
	Scheduled int `json:"scheduled"`
	// Acknowledged counts the units that completed and reached the sink. It
	// includes warmup and cooldown when the sink excludes them itself, as the
	// windowed and transient-including timelined sinks do.
	Acknowledged int `json:"acknowledged"`
	// Recorded counts the samples inside the measurement window, the ones
	// the percentiles are computed over.
	Recorded    int64             `json:"recorded"`
	Elapsed     string            `json:"elapsed"`
	Percentiles []Percentile      `json:"percentiles"`
	Timeline    []Bucket          `json:"timeline,omitempty"`
	SteadyState *SteadyStateCheck `json:"steadyState,omitempty"`
}

type Percentile struct {
	Percentile float64 `json:"percentile"`
	LatencyNs  uint64  `json:"latencyNs"`
}

type Bucket struct {
	TimeNs      uint64       `json:"timeNs"`
	Samples     int          `json:"samples"`
	Percentiles []Percentile `json:"percentiles"`
}

type SteadyStateCheck struct {
	Statistic     float64 `json:"statistic"`
	CriticalValue float64 `json:"criticalValue"`
	Steady        bool    `json:"steady"`
}

// BuildResult summarises a run for machine consumption.
func BuildResult(options harness.Options, result *harness.Result) *Result {
	configuration := Configuration{
		Workers:            options.Workers,
		Throughput:         options.Throughput,
		Duration:           options.Duration.String(),
		Granularity:        options.Granularity.String(),
		Warmup:             options.Warmup.String(),
		Cooldown:           options.Cooldown.String(),
		Keys:               options.Keys,
		WaitForLoad:        options.WaitForLoad,
		AckMode:            options.AckMode.String(),
		SinkKind:           options.SinkKind.String(),
		IncludeTransients:  options.IncludeTransients,
		ProcessingCapacity: options.ProcessingCapacity,
	}

	sink := result.Collector.Sink()
	d := mustDistribution(sink)
	results := Results{
		Scheduled:    result.Emitted,
		Acknowledged: result.Collector.RecordedSamples(),
		Recorded:     d.Count(),
		Elapsed:      result.Elapsed.String(),
		Percentiles:  percentiles(d),
	}

	if tl, ok := sink.(*timeline.Timeline); ok {
		configuration.TimelineInterval = time.Duration(tl.Dt()).String()
		for _, e := range tl.Elements() {
			results.Timeline = append(results.Timeline, Bucket{
				TimeNs:      e.Time,
				Samples:     e.Samples,
				Percentiles: percentiles(mustDistribution(e.Metrics)),
			})
		}
		if ks, ok := SteadyState(tl, stats.P95); ok {
			results.SteadyState = &SteadyStateCheck{
				Statistic:     ks.Statistic,
				CriticalValue: ks.CriticalValue,
				Steady:        !ks.Rejected,
			}
		}
	}

	return &Result{
		Metadata: Metadata{
			Version:     SchemaVersion,
			GeneratedAt: time.Now().UTC(),
		},
		Configuration: configuration,
		Results:       results,
	}
}

func percentiles(d metrics.Distribution) []Percentile {
	ps := make([]Percentile, len(SummaryPercentiles))
	for i, p := range SummaryPercentiles {
		ps[i] = Percentile{Percentile: p, LatencyNs: d.ValueAtQuantile(p)}
	}
	return ps
}

func WriteResultToFile(result *Result, path string) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not marshal result")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "could not write result to %s", path)
	}
	return nil
}
