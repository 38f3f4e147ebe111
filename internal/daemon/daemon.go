// Package daemon runs the reaper on a cron schedule for environments
// without an external trigger.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/rioslabs/reaper/telemetry"
	"github.com/rioslabs/reaper/types"
)

// Config holds daemon settings.
type Config struct {
	// Schedule is a cron expression (robfig/cron, standard 5-field or
	// @every / @hourly descriptors).
	Schedule string
	// MetricsAddr is the listen address for the /metrics endpoint.
	MetricsAddr string
	// RunTimeout bounds each scheduled run via context deadline.
	RunTimeout time.Duration
}

// RunFunc executes one reap run.
type RunFunc func(ctx context.Context) (*types.RunReport, error)

// Daemon triggers reap runs on a schedule and serves run metrics.
type Daemon struct {
	config  Config
	runReap RunFunc
	logger  *telemetry.Logger
	metrics *Metrics
}

// New creates a daemon around the given run function.
func New(config Config, runReap RunFunc, logger *telemetry.Logger) *Daemon {
	return &Daemon{
		config:  config,
		runReap: runReap,
		logger:  logger,
		metrics: NewMetrics(prometheus.DefaultRegisterer),
	}
}

// Start blocks until the context is cancelled, a signal arrives, or a
// component fails. One run fires immediately on startup, then on schedule.
func (d *Daemon) Start(ctx context.Context) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(d.config.Schedule, func() {
		d.runOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("parse schedule %q: %w", d.config.Schedule, err)
	}

	var group run.Group

	group.Add(run.SignalHandler(ctx, os.Interrupt))

	cronDone := make(chan struct{})
	group.Add(
		func() error {
			d.logger.Info().
				Str("schedule", d.config.Schedule).
				Msg("daemon starting")
			d.runOnce(ctx)
			scheduler.Start()
			<-cronDone
			return nil
		},
		func(error) {
			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			close(cronDone)
		},
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: d.config.MetricsAddr, Handler: mux}
	group.Add(
		func() error {
			d.logger.Info().
				Str("addr", d.config.MetricsAddr).
				Msg("metrics server starting")
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		},
	)

	err := group.Run()

	var sig run.SignalError
	if errors.As(err, &sig) {
		d.logger.Info().
			Str("signal", sig.Signal.String()).
			Msg("daemon shutting down")
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runOnce executes one scheduled reap run under the configured timeout.
// Fatal runs are recorded and logged, never propagated: the schedule keeps
// going, the next run gets a fresh inventory.
func (d *Daemon) runOnce(ctx context.Context) {
	if d.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.RunTimeout)
		defer cancel()
	}

	report, err := d.runReap(ctx)
	d.metrics.ObserveRun(report, err)
	if err != nil {
		d.logger.Error().Err(err).Msg("scheduled run failed")
	}
}
