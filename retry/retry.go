// Package retry is the shared retrying-call wrapper for provider operations.
// The policy (attempt ceiling, base delay, jitter) is defined once here and
// used by both the scan and terminate paths.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rioslabs/reaper/providers"
)

// Policy bounds the retry behavior for one logical provider call.
type Policy struct {
	// MaxAttempts is the total attempt ceiling, first try included.
	MaxAttempts uint
	// BaseDelay is the initial backoff interval; subsequent delays grow
	// exponentially with jitter.
	BaseDelay time.Duration
	// MaxDelay caps the interval between attempts.
	MaxDelay time.Duration
}

// DefaultPolicy matches the provider's published rate-limit guidance.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs op, retrying throttled and transient provider errors with
// exponential backoff and jitter until the attempt ceiling is reached.
// Any other error stops immediately and is returned as-is.
func (p Policy) Do(ctx context.Context, op func() error) error {
	operation := func() (struct{}, error) {
		err := op()
		switch {
		case err == nil:
			return struct{}{}, nil
		case providers.IsRetryable(err):
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxAttempts),
	)
	return err
}
