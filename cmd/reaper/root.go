package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rioslabs/reaper/classifier"
	"github.com/rioslabs/reaper/executor"
	"github.com/rioslabs/reaper/internal/config"
	"github.com/rioslabs/reaper/providers"
	awsprovider "github.com/rioslabs/reaper/providers/aws"
	"github.com/rioslabs/reaper/reaper"
	"github.com/rioslabs/reaper/retry"
	"github.com/rioslabs/reaper/telemetry"
)

var (
	version = "0.1.0"

	cfgFile     string
	flagRegion  string
	flagProfile string
	flagDebug   bool

	rootCmd = &cobra.Command{
		Use:   "reaper",
		Short: "RIOS orphan instance reaper",
		Long: `Reaper - RIOS orphan instance reaper

Reaper finds compute instances that the RIOS lifecycle manager should
have terminated but did not, and terminates them safely. An instance is
only reaped when it is RIOS-owned, past its grace period, past its
expected lifetime, and not explicitly opted out.

Runs are stateless: the cloud inventory is the only system of record.`,
		Version: version,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "reaper.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "AWS shared config profile (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagProfile != "" {
		cfg.Profile = flagProfile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the service logger at the configured level.
func newLogger(cfg *config.Config) *telemetry.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		level = parsed
	}
	if flagDebug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	return telemetry.NewLogger("reaper")
}

// buildCoordinator wires a run coordinator from configuration.
func buildCoordinator(ctx context.Context, cfg *config.Config, logger *telemetry.Logger, dryRun bool) (*reaper.Coordinator, error) {
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}

	provider, err := awsprovider.New(ctx, awsprovider.Options{
		Region:  cfg.Region,
		Profile: cfg.Profile,
		Retry:   policy,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	cls := classifier.New(classifier.TagContract{
		OwnerKey:   cfg.Tags.OwnerKey,
		OwnerValue: cfg.Tags.OwnerValue,
		KeepKey:    cfg.Tags.KeepKey,
		ExpiryKey:  cfg.Tags.ExpiryKey,
	}, cfg.Reap.GracePeriod)

	exec := executor.New(provider, logger, executor.Options{
		DryRun:         dryRun,
		MaxConcurrency: cfg.Reap.MaxConcurrency,
		Retry:          policy,
		DeadlineMargin: cfg.Reap.DeadlineMargin,
	})

	runConfig := reaper.Config{
		Scope: providers.Scope{
			VPCID:     cfg.Scope.VPCID,
			SubnetIDs: cfg.Scope.SubnetIDs,
		},
		DryRun: dryRun,
	}

	return reaper.New(provider, cls, exec, runConfig, logger), nil
}
