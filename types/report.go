package types

import "time"

// TerminationFailure records one instance that could not be terminated.
type TerminationFailure struct {
	InstanceID string `json:"instance_id"`
	Error      string `json:"error"`
}

// RunReport summarizes one reap run. It is the only artifact a run produces
// besides the provider side effects themselves.
type RunReport struct {
	StartedAt   time.Time            `json:"started_at"`
	Duration    time.Duration        `json:"duration"`
	DryRun      bool                 `json:"dry_run"`
	Scanned     int                  `json:"scanned"`
	OutOfScope  int                  `json:"out_of_scope"`
	Eligible    int                  `json:"eligible"`
	Terminated  int                  `json:"terminated"`
	Unattempted int                  `json:"unattempted"`
	Failures    []TerminationFailure `json:"failures,omitempty"`

	// Reasons counts ineligible instances per reason code.
	Reasons map[string]int `json:"reasons,omitempty"`
}

// Failed returns the number of instances that could not be terminated.
func (r *RunReport) Failed() int {
	return len(r.Failures)
}

// CountReason tallies an ineligible classification.
func (r *RunReport) CountReason(reason string) {
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Reasons[reason]++
}
