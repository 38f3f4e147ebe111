package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rioslabs/reaper/types"
)

func TestScope_Contains(t *testing.T) {
	scope := Scope{VPCID: "vpc-1", SubnetIDs: []string{"subnet-a", "subnet-b"}}

	tests := []struct {
		name string
		rec  types.InstanceRecord
		want bool
	}{
		{"in scope", types.InstanceRecord{VPCID: "vpc-1", SubnetID: "subnet-a"}, true},
		{"other subnet in vpc", types.InstanceRecord{VPCID: "vpc-1", SubnetID: "subnet-z"}, false},
		{"other vpc", types.InstanceRecord{VPCID: "vpc-2", SubnetID: "subnet-a"}, false},
		{"no placement info", types.InstanceRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scope.Contains(tt.rec))
		})
	}
}

func TestScope_VPCOnly(t *testing.T) {
	scope := Scope{VPCID: "vpc-1"}

	assert.True(t, scope.Contains(types.InstanceRecord{VPCID: "vpc-1", SubnetID: "subnet-anything"}))
	assert.False(t, scope.Contains(types.InstanceRecord{VPCID: "vpc-2"}))
}

func TestScope_IsZero(t *testing.T) {
	assert.True(t, Scope{}.IsZero())
	assert.False(t, Scope{VPCID: "vpc-1"}.IsZero())
	assert.False(t, Scope{SubnetIDs: []string{"subnet-a"}}.IsZero())
}

func TestErrorClassification(t *testing.T) {
	throttled := &Error{Kind: KindThrottled, Op: "TerminateInstances", InstanceID: "i-1", Err: errors.New("slow down")}
	notFound := &Error{Kind: KindNotFound, Op: "TerminateInstances", InstanceID: "i-1", Err: errors.New("gone")}
	auth := &Error{Kind: KindAuthDenied, Op: "DescribeInstances", Err: errors.New("denied")}

	assert.True(t, IsRetryable(throttled))
	assert.True(t, IsRetryable(&Error{Kind: KindTransient, Err: errors.New("blip")}))
	assert.False(t, IsRetryable(notFound))
	assert.False(t, IsRetryable(auth))
	assert.False(t, IsRetryable(errors.New("plain error")))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(throttled))

	assert.True(t, IsAuthDenied(auth))
	assert.False(t, IsAuthDenied(throttled))
}

func TestErrorKindSurvivesWrapping(t *testing.T) {
	inner := &Error{Kind: KindThrottled, Op: "TerminateInstances", InstanceID: "i-1", Err: errors.New("slow down")}
	wrapped := fmt.Errorf("terminate batch: %w", inner)

	assert.Equal(t, KindThrottled, KindOf(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestErrorString(t *testing.T) {
	withID := &Error{Kind: KindThrottled, Op: "TerminateInstances", InstanceID: "i-1", Err: errors.New("slow down")}
	assert.Contains(t, withID.Error(), "i-1")
	assert.Contains(t, withID.Error(), "throttled")

	withoutID := &Error{Kind: KindAuthDenied, Op: "DescribeInstances", Err: errors.New("denied")}
	assert.Contains(t, withoutID.Error(), "DescribeInstances")
	assert.NotContains(t, withoutID.Error(), "  ")
}
