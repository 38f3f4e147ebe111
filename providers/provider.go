// Package providers defines the compute capability interface the reaper
// consumes. The core never sees a vendor SDK type, only InstanceRecords and
// classified provider errors.
package providers

import (
	"context"

	"github.com/rioslabs/reaper/types"
)

// Scope is the network boundary a run operates in. Instances outside it are
// never listed, and never reaped.
type Scope struct {
	VPCID     string
	SubnetIDs []string
}

// IsZero reports whether no scope is configured at all.
func (s Scope) IsZero() bool {
	return s.VPCID == "" && len(s.SubnetIDs) == 0
}

// Contains reports whether an instance falls inside the scope.
func (s Scope) Contains(rec types.InstanceRecord) bool {
	if s.VPCID != "" && rec.VPCID != s.VPCID {
		return false
	}
	if len(s.SubnetIDs) == 0 {
		return true
	}
	for _, id := range s.SubnetIDs {
		if rec.SubnetID == id {
			return true
		}
	}
	return false
}

// ComputeProvider is the capability interface over the cloud compute API.
type ComputeProvider interface {
	// ListInstances returns a complete snapshot of all non-terminated
	// instances within scope, paginating as needed. An error means the
	// inventory is not trustworthy and the run must not proceed.
	ListInstances(ctx context.Context, scope Scope) ([]types.InstanceRecord, error)

	// TerminateInstance terminates one instance. Terminating an instance
	// that no longer exists returns nil: the desired state already holds.
	TerminateInstance(ctx context.Context, id string) error

	Name() string
	Region() string
}
