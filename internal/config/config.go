// Package config handles YAML configuration for the reaper.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Profile string       `yaml:"profile"`
	Region  string       `yaml:"region"`
	Scope   ScopeConfig  `yaml:"scope"`
	Tags    TagsConfig   `yaml:"tags"`
	Reap    ReapConfig   `yaml:"reap"`
	Retry   RetryConfig  `yaml:"retry"`
	Daemon  DaemonConfig `yaml:"daemon"`
	Log     LogConfig    `yaml:"log"`
}

// ScopeConfig is the network boundary the reaper operates in.
type ScopeConfig struct {
	VPCID     string   `yaml:"vpc_id"`
	SubnetIDs []string `yaml:"subnet_ids"`
}

// TagsConfig is the RIOS tag contract.
type TagsConfig struct {
	OwnerKey   string `yaml:"owner_key"`
	OwnerValue string `yaml:"owner_value"`
	KeepKey    string `yaml:"keep_key"`
	ExpiryKey  string `yaml:"expiry_key"`
}

// ReapConfig holds run-level reap settings.
type ReapConfig struct {
	DryRun            bool   `yaml:"dry_run"`
	MaxConcurrency    int    `yaml:"max_concurrency"`
	GracePeriodStr    string `yaml:"grace_period"`
	GracePeriod       time.Duration
	DeadlineMarginStr string `yaml:"deadline_margin"`
	DeadlineMargin    time.Duration
}

// RetryConfig bounds provider-call retries.
type RetryConfig struct {
	MaxAttempts  uint   `yaml:"max_attempts"`
	BaseDelayStr string `yaml:"base_delay"`
	BaseDelay    time.Duration
	MaxDelayStr  string `yaml:"max_delay"`
	MaxDelay     time.Duration
}

// DaemonConfig holds scheduled-mode settings.
type DaemonConfig struct {
	Schedule    string `yaml:"schedule"`
	MetricsAddr string `yaml:"metrics_addr"`
	TimeoutStr  string `yaml:"run_timeout"`
	Timeout     time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Tags.OwnerKey == "" {
		cfg.Tags.OwnerKey = "rios:managed"
	}
	if cfg.Tags.OwnerValue == "" {
		cfg.Tags.OwnerValue = "true"
	}
	if cfg.Tags.KeepKey == "" {
		cfg.Tags.KeepKey = "rios:keep"
	}
	if cfg.Tags.ExpiryKey == "" {
		cfg.Tags.ExpiryKey = "rios:expires-at"
	}
	if cfg.Reap.GracePeriodStr == "" {
		cfg.Reap.GracePeriodStr = "24h"
	}
	if cfg.Reap.DeadlineMarginStr == "" {
		cfg.Reap.DeadlineMarginStr = "10s"
	}
	if cfg.Reap.MaxConcurrency == 0 {
		cfg.Reap.MaxConcurrency = 4
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.BaseDelayStr == "" {
		cfg.Retry.BaseDelayStr = "500ms"
	}
	if cfg.Retry.MaxDelayStr == "" {
		cfg.Retry.MaxDelayStr = "10s"
	}
	if cfg.Daemon.Schedule == "" {
		cfg.Daemon.Schedule = "@hourly"
	}
	if cfg.Daemon.MetricsAddr == "" {
		cfg.Daemon.MetricsAddr = ":9090"
	}
	if cfg.Daemon.TimeoutStr == "" {
		cfg.Daemon.TimeoutStr = "10m"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"reap.grace_period", cfg.Reap.GracePeriodStr, &cfg.Reap.GracePeriod},
		{"reap.deadline_margin", cfg.Reap.DeadlineMarginStr, &cfg.Reap.DeadlineMargin},
		{"retry.base_delay", cfg.Retry.BaseDelayStr, &cfg.Retry.BaseDelay},
		{"retry.max_delay", cfg.Retry.MaxDelayStr, &cfg.Retry.MaxDelay},
		{"daemon.run_timeout", cfg.Daemon.TimeoutStr, &cfg.Daemon.Timeout},
	}

	for _, f := range fields {
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// Validate checks the configuration is safe to run with. An empty network
// scope is malformed: the reaper refuses to consider an unbounded inventory.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Scope.VPCID == "" && len(c.Scope.SubnetIDs) == 0 {
		return fmt.Errorf("scope: vpc_id or subnet_ids required, refusing an empty network scope")
	}
	if c.Reap.GracePeriod <= 0 {
		return fmt.Errorf("reap: grace_period must be positive (got %v)", c.Reap.GracePeriod)
	}
	if c.Tags.OwnerKey == "" || c.Tags.OwnerValue == "" {
		return fmt.Errorf("tags: owner_key and owner_value are required")
	}
	return nil
}
