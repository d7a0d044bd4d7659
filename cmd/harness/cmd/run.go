package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kcz17/harness/internal/config"
	"github.com/kcz17/harness/internal/harness"
	"github.com/kcz17/harness/internal/logging"
	"github.com/kcz17/harness/internal/report"
	"github.com/kcz17/harness/internal/run"
	"github.com/kcz17/harness/internal/status"
	"github.com/kcz17/harness/internal/timeline"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment and write its reports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			c, err := config.ReadConfig(path, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runExperiment(ctx, c)
		},
	}

	cmd.Flags().Int("seconds", 0, "experiment duration in seconds")
	cmd.Flags().Uint64("throughput", 0, "units per second injected by each worker")
	cmd.Flags().Uint64("keys", 0, "size of the key space")
	cmd.Flags().Int("workers", 0, "number of workers")
	cmd.Flags().String("output-dir", "", "directory reports are written to")
	cmd.Flags().String("log-driver", "", "one of noop, stdout or influxdb")
	return cmd
}

func runExperiment(ctx context.Context, c *config.Config) error {
	options, err := c.HarnessOptions()
	if err != nil {
		return err
	}

	logger, err := logging.New(*c.Logging.Driver, c.InfluxDBOptions())
	if err != nil {
		return errors.Wrap(err, "could not create logger")
	}
	defer logger.Close()

	tracker := status.NewTracker(options.Workers)
	if *c.Status.Enabled {
		server := status.NewAPIServer(tracker)
		go func() {
			if err := server.ListenAndServe(*c.Status.Addr); err != nil {
				logrus.WithError(err).Error("status server stopped")
			}
		}()
		defer func() {
			if err := server.Shutdown(); err != nil {
				logrus.WithError(err).Warn("could not shut down status server")
			}
		}()
	}

	result, err := harness.Execute(ctx, options, harness.Environment{
		Clock:   run.NewRealtimeClock(),
		Logger:  logger,
		Tracker: tracker,
	})
	if err != nil {
		return err
	}

	prefix := *c.Output.Prefix
	report.Log(logger, prefix, result.Collector)

	dir := *c.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "could not create output directory %s", dir)
	}
	outputs := map[string]string{
		"summary": report.FormatSummary(prefix, result.Collector.Sink()),
	}

	built := report.BuildResult(options, result)
	if tl, ok := result.Collector.Sink().(*timeline.Timeline); ok {
		outputs["timeline"] = report.FormatSummaryTimeline(prefix, tl)
		if *c.Output.Detailed {
			outputs["detailed"] = report.FormatDetailedTimeline(prefix, tl)
		}
		if *c.Output.Plot {
			if err := report.WritePlot(tl, filepath.Join(dir, prefix+"-timeline.png")); err != nil {
				return err
			}
		}
	}

	if check := built.Results.SteadyState; check != nil {
		logrus.WithFields(logrus.Fields{
			"statistic":     check.Statistic,
			"criticalValue": check.CriticalValue,
			"steady":        check.Steady,
		}).Info("compared first and last timeline buckets")
	}

	for name, contents := range outputs {
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", prefix, name))
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return errors.Wrapf(err, "could not write %s", path)
		}
	}
	fmt.Fprint(os.Stdout, outputs["summary"])

	if *c.Output.JSON {
		if err := report.WriteResultToFile(built, filepath.Join(dir, prefix+".json")); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"recorded": result.Collector.RecordedSamples(),
		"emitted":  result.Emitted,
		"elapsed":  result.Elapsed,
		"output":   dir,
	}).Info("run complete")
	return nil
}
