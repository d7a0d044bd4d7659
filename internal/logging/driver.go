package logging

import "github.com/pkg/errors"

// Drivers the developer can choose from.
const (
	Noop     = "noop"
	Stdout   = "stdout"
	InfluxDB = "influxdb"
)

type InfluxDBOptions struct {
	Host   string
	Token  string
	Org    string
	Bucket string
}

func New(driver string, influx InfluxDBOptions) (Logger, error) {
	switch driver {
	case Noop:
		return NewNoopLogger(), nil
	case Stdout:
		return NewStdoutLogger(), nil
	case InfluxDB:
		return NewInfluxDBLogger(influx.Host, influx.Token, influx.Org, influx.Bucket), nil
	default:
		return nil, errors.Errorf("expected logging driver to be one of {%s|%s|%s}; got %s", Noop, Stdout, InfluxDB, driver)
	}
}
