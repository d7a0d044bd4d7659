package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// stdoutLogger logs structured entries to standard output.
type stdoutLogger struct {
	log *logrus.Entry
}

func NewStdoutLogger() *stdoutLogger {
	return NewStdoutLoggerWith(logrus.StandardLogger())
}

func NewStdoutLoggerWith(logger *logrus.Logger) *stdoutLogger {
	return &stdoutLogger{log: logger.WithField("component", "harness")}
}

func (l *stdoutLogger) LogProgress(worker int, elapsed time.Duration, recorded int, p50, p75, p95 time.Duration) {
	l.log.WithFields(logrus.Fields{
		"worker":   worker,
		"elapsed":  elapsed,
		"recorded": recorded,
		"p50":      p50,
		"p75":      p75,
		"p95":      p95,
	}).Info("progress")
}

func (l *stdoutLogger) LogBucket(prefix string, bucketTime uint64, samples int, p50, p95, p99 time.Duration) {
	l.log.WithFields(logrus.Fields{
		"prefix":  prefix,
		"bucket":  time.Duration(bucketTime),
		"samples": samples,
		"p50":     p50,
		"p95":     p95,
		"p99":     p99,
	}).Info("timeline bucket")
}

func (l *stdoutLogger) LogSummary(prefix string, recorded int, p50, p95, p99, max time.Duration) {
	l.log.WithFields(logrus.Fields{
		"prefix":   prefix,
		"recorded": recorded,
		"p50":      p50,
		"p95":      p95,
		"p99":      p99,
		"max":      max,
	}).Info("summary")
}

func (*stdoutLogger) Close() {
	return
}
