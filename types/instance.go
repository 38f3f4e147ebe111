package types

import "time"

// InstanceState is the EC2 lifecycle state of an instance at scan time.
type InstanceState string

const (
	StatePending      InstanceState = "pending"
	StateRunning      InstanceState = "running"
	StateStopping     InstanceState = "stopping"
	StateStopped      InstanceState = "stopped"
	StateShuttingDown InstanceState = "shutting-down"
	StateTerminated   InstanceState = "terminated"
)

// InstanceRecord is a snapshot of one compute instance. Records are value
// objects owned by the run that scanned them; a stale record means a fresh
// scan, never mutation.
type InstanceRecord struct {
	ID         string            `json:"id"`
	State      InstanceState     `json:"state"`
	LaunchTime time.Time         `json:"launch_time"`
	VPCID      string            `json:"vpc_id"`
	SubnetID   string            `json:"subnet_id"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// Age returns how long the instance has existed as of now.
func (r InstanceRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.LaunchTime)
}

// IsTerminal reports whether the instance is already terminated.
func (r InstanceRecord) IsTerminal() bool {
	return r.State == StateTerminated
}

// IsTerminating reports whether termination is already underway or done.
func (r InstanceRecord) IsTerminating() bool {
	return r.State == StateShuttingDown || r.State == StateTerminated
}

// Tag returns the value of a tag and whether the key is present.
func (r InstanceRecord) Tag(key string) (string, bool) {
	if r.Tags == nil {
		return "", false
	}
	v, ok := r.Tags[key]
	return v, ok
}
