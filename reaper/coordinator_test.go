package reaper

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rioslabs/reaper/classifier"
	"github.com/rioslabs/reaper/executor"
	"github.com/rioslabs/reaper/providers"
	"github.com/rioslabs/reaper/retry"
	"github.com/rioslabs/reaper/telemetry"
	"github.com/rioslabs/reaper/types"
)

type stubProvider struct {
	mu         sync.Mutex
	records    []types.InstanceRecord
	listErr    error
	terminated []string
	termErrs   map[string]error
}

func (s *stubProvider) ListInstances(ctx context.Context, scope providers.Scope) ([]types.InstanceRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

func (s *stubProvider) TerminateInstance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.termErrs[id]; ok {
		return err
	}
	s.terminated = append(s.terminated, id)
	return nil
}

func (s *stubProvider) terminatedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.terminated...)
}

func (s *stubProvider) Name() string   { return "stub" }
func (s *stubProvider) Region() string { return "us-east-1" }

var testContract = classifier.TagContract{
	OwnerKey:   "rios:managed",
	OwnerValue: "true",
	KeepKey:    "rios:keep",
	ExpiryKey:  "rios:expires-at",
}

func newCoordinator(provider *stubProvider, dryRun bool) *Coordinator {
	logger := telemetry.NewLoggerTo("reaper-test", io.Discard)
	policy := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	return New(
		provider,
		classifier.New(testContract, 24*time.Hour),
		executor.New(provider, logger, executor.Options{DryRun: dryRun, Retry: policy}),
		Config{
			Scope:  providers.Scope{VPCID: "vpc-1"},
			DryRun: dryRun,
		},
		logger,
	)
}

func instance(id string, age time.Duration, tags map[string]string) types.InstanceRecord {
	return types.InstanceRecord{
		ID:         id,
		State:      types.StateRunning,
		LaunchTime: time.Now().Add(-age),
		VPCID:      "vpc-1",
		SubnetID:   "subnet-1",
		Tags:       tags,
	}
}

// Mixed inventory: one expired orphan, one inside the grace period, one not
// owned at all, one opted out. Only the orphan gets terminated.
func TestRun_MixedInventory(t *testing.T) {
	day := 24 * time.Hour
	expired := time.Now().Add(-5 * day).Format(time.RFC3339)

	provider := &stubProvider{records: []types.InstanceRecord{
		instance("i-a", 10*day, map[string]string{"rios:managed": "true", "rios:expires-at": expired}),
		instance("i-b", time.Hour, map[string]string{"rios:managed": "true"}),
		instance("i-c", 30*day, map[string]string{"Name": "pet-server"}),
		instance("i-d", 30*day, map[string]string{"rios:managed": "true", "rios:keep": "true"}),
	}}

	report, err := newCoordinator(provider, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 0, report.OutOfScope)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Terminated)
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 0, report.Unattempted)

	assert.Equal(t, 1, report.Reasons[types.ReasonTooYoung])
	assert.Equal(t, 1, report.Reasons[types.ReasonNotRIOSOwned])
	assert.Equal(t, 1, report.Reasons[types.ReasonExcludedByTag])

	assert.Equal(t, []string{"i-a"}, provider.terminatedIDs())
}

// A dry run produces the same counts as a live run but never calls the
// provider's terminate path.
func TestRun_DryRunParity(t *testing.T) {
	day := 24 * time.Hour
	provider := &stubProvider{records: []types.InstanceRecord{
		instance("i-a", 10*day, map[string]string{"rios:managed": "true"}),
		instance("i-b", time.Hour, map[string]string{"rios:managed": "true"}),
	}}

	report, err := newCoordinator(provider, true).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Terminated)
	assert.Empty(t, provider.terminatedIDs())
}

func TestRun_ScanFailureIsFatal(t *testing.T) {
	provider := &stubProvider{listErr: &providers.Error{
		Kind: providers.KindAuthDenied,
		Op:   "DescribeInstances",
		Err:  errors.New("denied"),
	}}

	report, err := newCoordinator(provider, false).Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, providers.IsAuthDenied(err))
	assert.Empty(t, provider.terminatedIDs())
}

func TestRun_EmptyScopeRefused(t *testing.T) {
	provider := &stubProvider{}
	logger := telemetry.NewLoggerTo("reaper-test", io.Discard)

	c := New(
		provider,
		classifier.New(testContract, 24*time.Hour),
		executor.New(provider, logger, executor.Options{}),
		Config{Scope: providers.Scope{}},
		logger,
	)

	report, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
}

// Instances outside the configured scope count as scanned but are never
// classified, no matter what their tags say.
func TestRun_ScopeFiltering(t *testing.T) {
	day := 24 * time.Hour
	outside := instance("i-out", 10*day, map[string]string{"rios:managed": "true"})
	outside.VPCID = "vpc-other"

	provider := &stubProvider{records: []types.InstanceRecord{
		outside,
		instance("i-in", 10*day, map[string]string{"rios:managed": "true"}),
	}}

	report, err := newCoordinator(provider, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.OutOfScope)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, []string{"i-in"}, provider.terminatedIDs())
}

// Per-instance termination failures land in the report; the run itself
// still completes successfully.
func TestRun_PartialFailureStillCompletes(t *testing.T) {
	day := 24 * time.Hour
	provider := &stubProvider{
		records: []types.InstanceRecord{
			instance("i-ok", 10*day, map[string]string{"rios:managed": "true"}),
			instance("i-bad", 10*day, map[string]string{"rios:managed": "true"}),
		},
		termErrs: map[string]error{
			"i-bad": &providers.Error{
				Kind: providers.KindInvalidRequest,
				Op:   "TerminateInstances",
				Err:  errors.New("malformed"),
			},
		},
	}

	report, err := newCoordinator(provider, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Eligible)
	assert.Equal(t, 1, report.Terminated)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, "i-bad", report.Failures[0].InstanceID)
}

func TestRun_EmptyInventory(t *testing.T) {
	provider := &stubProvider{}

	report, err := newCoordinator(provider, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Scanned)
	assert.Equal(t, 0, report.Eligible)
	assert.Equal(t, 0, report.Terminated)
	assert.Empty(t, provider.terminatedIDs())
}
