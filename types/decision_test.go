package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReapDecision_Validate(t *testing.T) {
	tests := []struct {
		name     string
		decision ReapDecision
		wantErr  bool
	}{
		{
			name:     "valid ineligible",
			decision: ReapDecision{InstanceID: "i-1", Reason: ReasonTooYoung},
		},
		{
			name:     "valid eligible",
			decision: ReapDecision{InstanceID: "i-1", Eligible: true, Reason: ReasonExpiredAndOrphaned},
		},
		{
			name:     "missing instance ID",
			decision: ReapDecision{Reason: ReasonTooYoung},
			wantErr:  true,
		},
		{
			name:     "missing reason",
			decision: ReapDecision{InstanceID: "i-1"},
			wantErr:  true,
		},
		{
			name:     "eligible with ineligible reason",
			decision: ReapDecision{InstanceID: "i-1", Eligible: true, Reason: ReasonTooYoung},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstanceRecord_Age(t *testing.T) {
	now := time.Now()
	rec := InstanceRecord{ID: "i-1", LaunchTime: now.Add(-3 * time.Hour)}

	assert.Equal(t, 3*time.Hour, rec.Age(now))
}

func TestInstanceRecord_States(t *testing.T) {
	assert.True(t, InstanceRecord{State: StateTerminated}.IsTerminal())
	assert.False(t, InstanceRecord{State: StateShuttingDown}.IsTerminal())

	assert.True(t, InstanceRecord{State: StateTerminated}.IsTerminating())
	assert.True(t, InstanceRecord{State: StateShuttingDown}.IsTerminating())
	assert.False(t, InstanceRecord{State: StateRunning}.IsTerminating())
	assert.False(t, InstanceRecord{State: StateStopped}.IsTerminating())
}

func TestInstanceRecord_Tag(t *testing.T) {
	rec := InstanceRecord{Tags: map[string]string{"rios:managed": "true"}}

	v, ok := rec.Tag("rios:managed")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = rec.Tag("missing")
	assert.False(t, ok)

	_, ok = InstanceRecord{}.Tag("rios:managed")
	assert.False(t, ok)
}

func TestRunReport_Counters(t *testing.T) {
	report := &RunReport{}

	report.CountReason(ReasonTooYoung)
	report.CountReason(ReasonTooYoung)
	report.CountReason(ReasonNotRIOSOwned)
	report.Failures = append(report.Failures, TerminationFailure{InstanceID: "i-1", Error: "boom"})

	assert.Equal(t, 2, report.Reasons[ReasonTooYoung])
	assert.Equal(t, 1, report.Reasons[ReasonNotRIOSOwned])
	assert.Equal(t, 1, report.Failed())
}
