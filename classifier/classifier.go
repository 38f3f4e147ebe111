// Package classifier decides, per instance, whether the upstream lifecycle
// manager evidently failed to terminate it and it is safe to reap.
package classifier

import (
	"fmt"
	"time"

	"github.com/rioslabs/reaper/types"
)

// TagContract names the tags that attribute an instance to RIOS.
type TagContract struct {
	// OwnerKey/OwnerValue identify RIOS-managed instances. An instance
	// without this exact pair is never touched.
	OwnerKey   string
	OwnerValue string

	// KeepKey is the opt-out marker. Any value other than "false" excludes
	// the instance from reaping.
	KeepKey string

	// ExpiryKey holds an RFC3339 timestamp for the instance's expected end
	// of life. An absent or unparsable value counts as overdue: losing the
	// tag is itself evidence that RIOS lost track of the instance.
	ExpiryKey string
}

// Classifier is a pure decision table over instance records. It performs no
// I/O and reads no ambient state, so the same inputs always produce the same
// decision.
type Classifier struct {
	contract    TagContract
	gracePeriod time.Duration
}

// New creates a classifier with the given tag contract and grace period.
func New(contract TagContract, gracePeriod time.Duration) *Classifier {
	return &Classifier{
		contract:    contract,
		gracePeriod: gracePeriod,
	}
}

// Classify evaluates the reap rules in order; the first match wins.
func (c *Classifier) Classify(now time.Time, rec types.InstanceRecord) types.ReapDecision {
	decision := types.ReapDecision{
		InstanceID: rec.ID,
		Age:        rec.Age(now),
	}

	switch {
	case c.optedOut(rec):
		decision.Reason = types.ReasonExcludedByTag
	case !c.riosOwned(rec):
		decision.Reason = types.ReasonNotRIOSOwned
	case decision.Age < c.gracePeriod:
		decision.Reason = types.ReasonTooYoung
		decision.Detail = fmt.Sprintf("age %s below grace period %s", decision.Age.Round(time.Second), c.gracePeriod)
	case rec.IsTerminating():
		decision.Reason = types.ReasonAlreadyTerminating
	default:
		expired, detail := c.expired(now, rec)
		if expired {
			decision.Eligible = true
			decision.Reason = types.ReasonExpiredAndOrphaned
		} else {
			decision.Reason = types.ReasonNotExpired
		}
		decision.Detail = detail
	}

	return decision
}

// optedOut reports whether the instance carries the explicit keep marker.
func (c *Classifier) optedOut(rec types.InstanceRecord) bool {
	v, ok := rec.Tag(c.contract.KeepKey)
	return ok && v != "false"
}

// riosOwned reports whether the instance is attributable to RIOS.
func (c *Classifier) riosOwned(rec types.InstanceRecord) bool {
	v, ok := rec.Tag(c.contract.OwnerKey)
	return ok && v == c.contract.OwnerValue
}

// expired reports whether the instance's expected lifetime has elapsed.
// A missing or malformed expiry tag counts as overdue.
func (c *Classifier) expired(now time.Time, rec types.InstanceRecord) (bool, string) {
	raw, ok := rec.Tag(c.contract.ExpiryKey)
	if !ok {
		return true, fmt.Sprintf("no %s tag", c.contract.ExpiryKey)
	}

	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true, fmt.Sprintf("unparsable %s tag %q", c.contract.ExpiryKey, raw)
	}

	if now.After(expiry) {
		return true, fmt.Sprintf("expired %s ago", now.Sub(expiry).Round(time.Second))
	}
	return false, fmt.Sprintf("expires in %s", expiry.Sub(now).Round(time.Second))
}
