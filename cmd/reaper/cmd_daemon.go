package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rioslabs/reaper/internal/daemon"
)

// daemonCmd runs the reaper on a cron schedule with a metrics endpoint.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run reap cycles on a schedule",
	Long: `Run the reaper continuously, firing a reap run on the configured
cron schedule and exposing Prometheus metrics on /metrics.

Daemon mode honors the dry_run setting from the configuration file.
A fatal run does not stop the daemon; the next scheduled run starts
from a fresh inventory.`,
	Example: `  reaper daemon                # schedule and dry_run from config
  reaper daemon --config prod.yaml`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := context.Background()

	coordinator, err := buildCoordinator(ctx, cfg, logger, cfg.Reap.DryRun)
	if err != nil {
		return err
	}

	d := daemon.New(daemon.Config{
		Schedule:    cfg.Daemon.Schedule,
		MetricsAddr: cfg.Daemon.MetricsAddr,
		RunTimeout:  cfg.Daemon.Timeout,
	}, coordinator.Run, logger)

	return d.Start(ctx)
}
