// Package executor applies termination to eligible instances, tolerating
// partial failure across the batch.
package executor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rioslabs/reaper/providers"
	"github.com/rioslabs/reaper/telemetry"
)

// Executor terminates batches of instances with bounded concurrency.
// Per-instance failures never abort the batch; every instance ends in
// exactly one Outcome.
type Executor struct {
	provider providers.ComputeProvider
	opts     Options
	logger   *telemetry.Logger
}

// New creates an executor for the given provider.
func New(provider providers.ComputeProvider, logger *telemetry.Logger, opts Options) *Executor {
	return &Executor{
		provider: provider,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Execute terminates every instance in ids. The returned slice has one
// result per input id, in input order. Each worker writes only its own
// index, so aggregation needs no locking.
func (e *Executor) Execute(ctx context.Context, ids []string) []TerminationResult {
	results := make([]TerminationResult, len(ids))

	if e.opts.DryRun {
		for i, id := range ids {
			results[i] = TerminationResult{InstanceID: id, Outcome: OutcomeSimulated}
			e.logger.WithContext(ctx).Info().
				Str("instance_id", id).
				Msg("dry run, would terminate")
		}
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(e.opts.MaxConcurrency)

	for i, id := range ids {
		if e.outOfTime(ctx) {
			for j := i; j < len(ids); j++ {
				results[j] = TerminationResult{InstanceID: ids[j], Outcome: OutcomeUnattempted}
			}
			e.logger.WithContext(ctx).Warn().
				Int("remaining", len(ids)-i).
				Msg("run deadline approaching, stopping new terminations")
			break
		}

		g.Go(func() error {
			results[i] = e.terminateOne(ctx, id)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// terminateOne terminates a single instance, retrying transient provider
// errors with the shared policy.
func (e *Executor) terminateOne(ctx context.Context, id string) TerminationResult {
	err := e.opts.Retry.Do(ctx, func() error {
		return e.provider.TerminateInstance(ctx, id)
	})
	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("instance_id", id).
			Str("error_kind", string(providers.KindOf(err))).
			Msg("termination failed")
		return TerminationResult{InstanceID: id, Outcome: OutcomeFailed, Err: err}
	}

	e.logger.WithContext(ctx).Info().
		Str("instance_id", id).
		Msg("instance terminated")
	return TerminationResult{InstanceID: id, Outcome: OutcomeTerminated}
}

// outOfTime reports whether the run deadline is close enough that starting
// another termination risks leaving it in an ambiguous state.
func (e *Executor) outOfTime(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return false
	}
	return time.Until(deadline) < e.opts.DeadlineMargin
}
