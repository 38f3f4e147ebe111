package executor

import (
	"time"

	"github.com/rioslabs/reaper/retry"
)

// Outcome is the terminal status of one termination attempt.
type Outcome string

const (
	// OutcomeTerminated - the provider accepted the termination, or the
	// instance was already gone.
	OutcomeTerminated Outcome = "terminated"
	// OutcomeSimulated - dry run, no provider call was made.
	OutcomeSimulated Outcome = "simulated"
	// OutcomeFailed - the termination failed after retries were exhausted
	// or a non-retryable error occurred.
	OutcomeFailed Outcome = "failed"
	// OutcomeUnattempted - the run deadline cut the batch short before
	// this instance was tried.
	OutcomeUnattempted Outcome = "unattempted"
)

// TerminationResult is the outcome for one instance in a batch.
type TerminationResult struct {
	InstanceID string
	Outcome    Outcome
	Err        error
}

// Options configure batch execution.
type Options struct {
	// DryRun simulates every termination without touching the provider.
	DryRun bool
	// MaxConcurrency bounds the worker pool. Must stay below the
	// provider's rate limits; defaults to 4.
	MaxConcurrency int
	// Retry is the per-instance retry policy for transient failures.
	Retry retry.Policy
	// DeadlineMargin stops new terminations when less than this remains
	// before the context deadline, leaving time for in-flight calls to
	// finish. Defaults to 10s.
	DeadlineMargin time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 4
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = retry.DefaultPolicy()
	}
	if o.DeadlineMargin <= 0 {
		o.DeadlineMargin = 10 * time.Second
	}
	return o
}
