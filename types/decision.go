package types

import (
	"fmt"
	"time"
)

// Reason codes for reap decisions. Exactly one applies per instance;
// they are mutually exclusive by rule ordering in the classifier.
const (
	ReasonExcludedByTag      = "excluded-by-tag"
	ReasonNotRIOSOwned       = "not-rios-owned"
	ReasonTooYoung           = "too-young"
	ReasonAlreadyTerminating = "already-terminating"
	ReasonExpiredAndOrphaned = "expired-and-orphaned"
	ReasonNotExpired         = "not-expired"
)

// ReapDecision is the classifier's verdict for one instance. Created during
// classification, consumed by the coordinator in the same run, never stored.
type ReapDecision struct {
	InstanceID string        `json:"instance_id"`
	Eligible   bool          `json:"eligible"`
	Reason     string        `json:"reason"`
	Detail     string        `json:"detail,omitempty"`
	Age        time.Duration `json:"age"`
}

// Validate ensures the decision has required fields.
func (d ReapDecision) Validate() error {
	if d.InstanceID == "" {
		return fmt.Errorf("decision instance ID cannot be empty")
	}
	if d.Reason == "" {
		return fmt.Errorf("decision reason cannot be empty")
	}
	if d.Eligible && d.Reason != ReasonExpiredAndOrphaned {
		return fmt.Errorf("eligible decision must carry reason %s, got %s", ReasonExpiredAndOrphaned, d.Reason)
	}
	return nil
}
