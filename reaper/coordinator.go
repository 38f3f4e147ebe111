// Package reaper orchestrates one reconciliation run: scan, classify,
// execute, report.
package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/rioslabs/reaper/classifier"
	"github.com/rioslabs/reaper/executor"
	"github.com/rioslabs/reaper/providers"
	"github.com/rioslabs/reaper/telemetry"
	"github.com/rioslabs/reaper/types"
)

// Config is the run-level policy. It is passed in explicitly at
// construction; no component below the coordinator reads ambient state.
type Config struct {
	Scope  providers.Scope
	DryRun bool
}

// Coordinator sequences a single reap run. It is the only component aware
// of dry-run mode and of the network scope.
type Coordinator struct {
	provider   providers.ComputeProvider
	classifier *classifier.Classifier
	executor   *executor.Executor
	config     Config
	logger     *telemetry.Logger
}

// New creates a run coordinator.
func New(
	provider providers.ComputeProvider,
	cls *classifier.Classifier,
	exec *executor.Executor,
	config Config,
	logger *telemetry.Logger,
) *Coordinator {
	return &Coordinator{
		provider:   provider,
		classifier: cls,
		executor:   exec,
		config:     config,
		logger:     logger,
	}
}

// Run performs one full reap cycle and returns its report. A non-nil error
// means the run was fatal: no report exists and zero terminations occurred.
func (c *Coordinator) Run(ctx context.Context) (*types.RunReport, error) {
	if c.config.Scope.IsZero() {
		return nil, fmt.Errorf("network scope is empty, refusing to reap an unbounded inventory")
	}

	start := time.Now()
	c.logger.LogRunStart(ctx, c.provider.Region(), c.config.DryRun)

	inScope, scanned, err := c.scan(ctx)
	if err != nil {
		c.logger.LogFatal(ctx, err, "scan")
		return nil, fmt.Errorf("inventory scan failed: %w", err)
	}

	report := &types.RunReport{
		StartedAt:  start,
		DryRun:     c.config.DryRun,
		Scanned:    scanned,
		OutOfScope: scanned - len(inScope),
	}

	eligible := c.classify(ctx, inScope, report)
	c.execute(ctx, eligible, report)

	report.Duration = time.Since(start)
	c.logger.LogRunReport(ctx, report)
	return report, nil
}

// scan pulls the complete inventory snapshot and drops anything outside the
// configured scope before classification ever sees it.
func (c *Coordinator) scan(ctx context.Context) (inScope []types.InstanceRecord, scanned int, err error) {
	records, err := c.provider.ListInstances(ctx, c.config.Scope)
	if err != nil {
		return nil, 0, err
	}

	inScope = make([]types.InstanceRecord, 0, len(records))
	for _, rec := range records {
		if c.config.Scope.Contains(rec) {
			inScope = append(inScope, rec)
		}
	}

	c.logger.LogScanComplete(ctx, len(records), len(records)-len(inScope))
	return inScope, len(records), nil
}

// classify runs every in-scope instance through the rule table and returns
// the IDs eligible for termination.
func (c *Coordinator) classify(ctx context.Context, records []types.InstanceRecord, report *types.RunReport) []string {
	now := time.Now()

	var eligible []string
	for _, rec := range records {
		decision := c.classifier.Classify(now, rec)
		c.logger.LogDecision(ctx, decision)

		if decision.Eligible {
			eligible = append(eligible, decision.InstanceID)
		} else {
			report.CountReason(decision.Reason)
		}
	}

	report.Eligible = len(eligible)
	return eligible
}

// execute terminates the eligible set and folds the outcomes into the report.
func (c *Coordinator) execute(ctx context.Context, eligible []string, report *types.RunReport) {
	if len(eligible) == 0 {
		return
	}

	for _, result := range c.executor.Execute(ctx, eligible) {
		switch result.Outcome {
		case executor.OutcomeTerminated, executor.OutcomeSimulated:
			report.Terminated++
		case executor.OutcomeUnattempted:
			report.Unattempted++
		case executor.OutcomeFailed:
			report.Failures = append(report.Failures, types.TerminationFailure{
				InstanceID: result.InstanceID,
				Error:      result.Err.Error(),
			})
		}
	}
}
