package logging

import "time"

// Logger reports run progress and results. Implementations must be safe for
// use by concurrent workers.
type Logger interface {
	// LogProgress takes in percentiles over the most recent latencies.
	LogProgress(worker int, elapsed time.Duration, recorded int, p50, p75, p95 time.Duration)
	// LogBucket takes in percentiles of a single timeline bucket starting at
	// bucketTime nanoseconds into the run.
	LogBucket(prefix string, bucketTime uint64, samples int, p50, p95, p99 time.Duration)
	LogSummary(prefix string, recorded int, p50, p95, p99, max time.Duration)
	// Close flushes any buffered output.
	Close()
}

// noopLogger does not perform any logging.
type noopLogger struct{}

func NewNoopLogger() *noopLogger {
	return &noopLogger{}
}

func (*noopLogger) LogProgress(int, time.Duration, int, time.Duration, time.Duration, time.Duration) {
	return
}

func (*noopLogger) LogBucket(string, uint64, int, time.Duration, time.Duration, time.Duration) {
	return
}

func (*noopLogger) LogSummary(string, int, time.Duration, time.Duration, time.Duration, time.Duration) {
	return
}

func (*noopLogger) Close() {
	return
}
