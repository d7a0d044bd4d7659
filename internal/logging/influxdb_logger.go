package logging

import (
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// influxDBLogger logs the output to an external InfluxDB instance.
type influxDBLogger struct {
	client      influxdb2.Client
	asyncWriter api.WriteAPI
}

func NewInfluxDBLogger(baseURL, authToken, org, bucket string) *influxDBLogger {
	options := influxdb2.DefaultOptions()
	options.WriteOptions().SetBatchSize(1000)
	options.WriteOptions().SetFlushInterval(250)

	client := influxdb2.NewClientWithOptions(baseURL, authToken, options)
	writeAPI := client.WriteAPI(org, bucket)

	// Create a goroutine for reading and logging async write errors.
	errorsCh := writeAPI.Errors()
	go func() {
		for err := range errorsCh {
			logrus.WithError(err).Warn("influxdb2 logging async write error")
		}
	}()

	return &influxDBLogger{
		client:      client,
		asyncWriter: writeAPI,
	}
}

func (l *influxDBLogger) LogProgress(worker int, elapsed time.Duration, recorded int, p50, p75, p95 time.Duration) {
	p := influxdb2.NewPointWithMeasurement("harness_progress").
		AddTag("worker", strconv.Itoa(worker)).
		AddField("elapsed", elapsed.Seconds()).
		AddField("recorded", recorded).
		AddField("p50", p50.Seconds()).
		AddField("p75", p75.Seconds()).
		AddField("p95", p95.Seconds()).
		SetTime(time.Now())
	l.asyncWriter.WritePoint(p)
}

func (l *influxDBLogger) LogBucket(prefix string, bucketTime uint64, samples int, p50, p95, p99 time.Duration) {
	p := influxdb2.NewPointWithMeasurement("harness_timeline").
		AddTag("prefix", prefix).
		AddField("bucket", time.Duration(bucketTime).Seconds()).
		AddField("samples", samples).
		AddField("p50", p50.Seconds()).
		AddField("p95", p95.Seconds()).
		AddField("p99", p99.Seconds()).
		SetTime(time.Now())
	l.asyncWriter.WritePoint(p)
}

func (l *influxDBLogger) LogSummary(prefix string, recorded int, p50, p95, p99, max time.Duration) {
	p := influxdb2.NewPointWithMeasurement("harness_summary").
		AddTag("prefix", prefix).
		AddField("recorded", recorded).
		AddField("p50", p50.Seconds()).
		AddField("p95", p95.Seconds()).
		AddField("p99", p99.Seconds()).
		AddField("max", max.Seconds()).
		SetTime(time.Now())
	l.asyncWriter.WritePoint(p)
}

func (l *influxDBLogger) Close() {
	l.asyncWriter.Flush()
	l.client.Close()
}
