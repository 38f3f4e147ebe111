package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	runDryRun  bool
	runTimeout time.Duration
)

// runCmd executes a single reap run and exits.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one reap run",
	Long: `Scan the configured network scope, classify every instance against
the reap rules, and terminate the eligible ones.

The exit status is 0 whenever the run completed, even if individual
terminations failed; only fatal run-level errors (scan failure,
authorization failure, malformed configuration) exit non-zero.`,
	Example: `  reaper run                   # dry run, report only
  reaper run --dry-run=false   # live run, terminates instances
  reaper run --timeout 10m     # bound the run`,
	RunE: runReap,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", true, "Classify and report without terminating anything")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Abort the run when this much time has passed (0 = no limit)")
}

func runReap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	coordinator, err := buildCoordinator(ctx, cfg, logger, runDryRun)
	if err != nil {
		return err
	}

	report, err := coordinator.Run(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(encoded))

	return nil
}
