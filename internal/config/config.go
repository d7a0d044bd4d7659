package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kcz17/harness/internal/harness"
	"github.com/kcz17/harness/internal/logging"
	"github.com/kcz17/harness/internal/metrics"
	"github.com/kcz17/harness/internal/payload"
)

type Config struct {
	Run      Run      `mapstructure:"run" validate:"required"`
	Window   Window   `mapstructure:"window" validate:"required"`
	Timeline Timeline `mapstructure:"timeline" validate:"required"`
	Payload  Payload  `mapstructure:"payload" validate:"required"`
	Logging  Logging  `mapstructure:"logging" validate:"required"`
	Output   Output   `mapstructure:"output" validate:"required"`
	Status   Status   `mapstructure:"status" validate:"required"`
}

type Run struct {
	Seconds     *int           `mapstructure:"seconds" validate:"required,gt=0"`
	Throughput  *uint64        `mapstructure:"throughput" validate:"required,gt=0"`
	Keys        *uint64        `mapstructure:"keys" validate:"required,gt=0"`
	Workers     *int           `mapstructure:"workers" validate:"required,gt=0"`
	Granularity *time.Duration `mapstructure:"granularity" validate:"required,gt=0"`
	WaitForLoad *bool          `mapstructure:"waitForLoad" validate:"required"`
	AckMode     *string        `mapstructure:"ackMode" validate:"required,oneof=probe inline"`
	SinkKind    *string        `mapstructure:"sinkKind" validate:"required,oneof=raw windowed timelined samples"`
	Seed        *uint64        `mapstructure:"seed" validate:"required"`
	// ProcessingCapacity limits records processed per step; zero means
	// unlimited.
	ProcessingCapacity *int `mapstructure:"processingCapacity" validate:"required,gte=0"`
}

type Window struct {
	Warmup   *time.Duration `mapstructure:"warmup" validate:"required,gte=0"`
	Cooldown *time.Duration `mapstructure:"cooldown" validate:"required,gte=0"`
}

type Timeline struct {
	Interval          *time.Duration `mapstructure:"interval" validate:"required,gt=0"`
	IncludeTransients *bool          `mapstructure:"includeTransients" validate:"required"`
}

type Payload struct {
	Distribution *string `mapstructure:"distribution" validate:"required,oneof=uniform normal"`
	// Mean and StdDev are fractions of the key space.
	Mean   *float64 `mapstructure:"mean" validate:"required_if=Distribution normal"`
	StdDev *float64 `mapstructure:"stddev" validate:"required_if=Distribution normal"`
}

type Logging struct {
	Driver           *string        `mapstructure:"driver" validate:"required,oneof=noop stdout influxdb"`
	InfluxDB         *InfluxDB      `mapstructure:"influxdb" validate:"required_if=Driver influxdb"`
	ProgressInterval *time.Duration `mapstructure:"progressInterval" validate:"required,gte=0"`
	ProgressWindow   *int           `mapstructure:"progressWindow" validate:"required,gte=0"`
}

type InfluxDB struct {
	Host   *string `mapstructure:"host" validate:"required"`
	Token  *string `mapstructure:"token" validate:"required"`
	Org    *string `mapstructure:"org" validate:"required"`
	Bucket *string `mapstructure:"bucket" validate:"required"`
}

type Output struct {
	Dir      *string `mapstructure:"dir" validate:"required"`
	Prefix   *string `mapstructure:"prefix" validate:"required"`
	Detailed *bool   `mapstructure:"detailed" validate:"required"`
	Plot     *bool   `mapstructure:"plot" validate:"required"`
	JSON     *bool   `mapstructure:"json" validate:"required"`
}

type Status struct {
	Enabled *bool   `mapstructure:"enabled" validate:"required"`
	Addr    *string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// FlagKeys maps command line flags onto configuration keys.
var FlagKeys = map[string]string{
	"seconds":    "run.seconds",
	"throughput": "run.throughput",
	"keys":       "run.keys",
	"workers":    "run.workers",
	"output-dir": "output.dir",
	"log-driver": "logging.driver",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.seconds", 10)
	v.SetDefault("run.throughput", 1000)
	v.SetDefault("run.keys", 1000)
	v.SetDefault("run.workers", 1)
	v.SetDefault("run.granularity", "1ms")
	v.SetDefault("run.waitForLoad", false)
	v.SetDefault("run.ackMode", "probe")
	v.SetDefault("run.sinkKind", "timelined")
	v.SetDefault("run.seed", 1)
	v.SetDefault("run.processingCapacity", 0)

	v.SetDefault("window.warmup", "2s")
	v.SetDefault("window.cooldown", "2s")

	v.SetDefault("timeline.interval", "1s")
	v.SetDefault("timeline.includeTransients", false)

	v.SetDefault("payload.distribution", payload.Uniform)

	v.SetDefault("logging.driver", logging.Stdout)
	v.SetDefault("logging.progressInterval", "1s")
	v.SetDefault("logging.progressWindow", 10000)

	v.SetDefault("output.dir", "out")
	v.SetDefault("output.prefix", "harness")
	v.SetDefault("output.detailed", false)
	v.SetDefault("output.plot", false)
	v.SetDefault("output.json", true)

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.addr", ":8080")
}

// ReadConfig loads harness.yaml from path, or from . or /app if path is
// empty, then applies HARNESS_* environment variables and any flags that
// were set. A missing file is only an error if path was given.
func ReadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("harness")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for flag, key := range FlagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "could not bind flag --%s", flag)
				}
			}
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("harness")
		v.AddConfigPath(".")
		v.AddConfigPath("/app")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.Wrap(err, "error when reading config file")
		}
		logrus.Info("no harness.yaml found, using defaults")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "error occurred while decoding configuration")
	}
	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(config *Config) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}
	if _, ok := err.(*validator.InvalidValidationError); ok {
		return errors.Wrap(err, "unable to validate config")
	}

	var problems []string
	for _, err := range err.(validator.ValidationErrors) {
		problems = append(problems, fmt.Sprintf("\t%s", err.Error()))
	}
	return errors.Errorf("encountered validation errors:\n%s\nCheck your configuration file and try again.", strings.Join(problems, "\n"))
}

var sinkKinds = map[string]metrics.Kind{
	"raw":       metrics.KindRaw,
	"windowed":  metrics.KindWindowed,
	"timelined": metrics.KindTimelined,
	"samples":   metrics.KindSamples,
}

var ackModes = map[string]harness.AckMode{
	"probe":  harness.AckProbe,
	"inline": harness.AckInline,
}

// HarnessOptions translates the configuration, checking the constraints
// spanning several fields.
func (c *Config) HarnessOptions() (harness.Options, error) {
	options := harness.Options{
		Workers:            *c.Run.Workers,
		Throughput:         *c.Run.Throughput,
		Duration:           time.Duration(*c.Run.Seconds) * time.Second,
		Granularity:        *c.Run.Granularity,
		Warmup:             *c.Window.Warmup,
		Cooldown:           *c.Window.Cooldown,
		Keys:               *c.Run.Keys,
		WaitForLoad:        *c.Run.WaitForLoad,
		Seed:               *c.Run.Seed,
		AckMode:            ackModes[*c.Run.AckMode],
		SinkKind:           sinkKinds[*c.Run.SinkKind],
		TimelineInterval:   *c.Timeline.Interval,
		IncludeTransients:  *c.Timeline.IncludeTransients,
		ProcessingCapacity: *c.Run.ProcessingCapacity,
		ProgressInterval:   *c.Logging.ProgressInterval,
		ProgressWindow:     *c.Logging.ProgressWindow,
		Payload: payload.Options{
			Distribution: *c.Payload.Distribution,
		},
	}
	if c.Payload.Mean != nil {
		options.Payload.Mean = *c.Payload.Mean
	}
	if c.Payload.StdDev != nil {
		options.Payload.StdDev = *c.Payload.StdDev
	}

	if err := options.Validate(); err != nil {
		return harness.Options{}, errors.Wrap(err, "invalid configuration")
	}
	return options, nil
}

func (c *Config) InfluxDBOptions() logging.InfluxDBOptions {
	if c.Logging.InfluxDB == nil {
		return logging.InfluxDBOptions{}
	}
	return logging.InfluxDBOptions{
		Host:   *c.Logging.InfluxDB.Host,
		Token:  *c.Logging.InfluxDB.Token,
		Org:    *c.Logging.InfluxDB.Org,
		Bucket: *c.Logging.InfluxDB.Bucket,
	}
}
