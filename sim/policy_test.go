package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    Policy
		wantErr bool
	}{
		{"FCFS", PolicyFCFS, false},
		{"", PolicyFCFS, false},
		{"SJF", PolicySJF, false},
		{"srtf", PolicySRTF, false},
		{"RR", PolicyRR, false},
		{"round-robin", PolicyRR, false},
		{"Priority", PolicyPriority, false},
		{"PriorityNP", PolicyPriorityNP, false},
		{"priority-np", PolicyPriorityNP, false},
		{"lottery", PolicyFCFS, true},
		{"Fcfs", PolicyFCFS, true}, // case-sensitive beyond the listed aliases
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePolicy(tt.name)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_StringRoundTrips(t *testing.T) {
	for _, p := range AllPolicies() {
		assert.True(t, IsValidPolicy(p.String()), p.String())
		parsed, err := ParsePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	assert.Equal(t, "Policy(17)", Policy(17).String())
}

func TestPolicy_Preemptive(t *testing.T) {
	assert.True(t, PolicySRTF.Preemptive())
	assert.True(t, PolicyRR.Preemptive())
	assert.True(t, PolicyPriority.Preemptive())
	assert.False(t, PolicyFCFS.Preemptive())
	assert.False(t, PolicySJF.Preemptive())
	assert.False(t, PolicyPriorityNP.Preemptive())
	assert.Panics(t, func() { Policy(-1).Preemptive() })
}

func TestPolicy_UnmarshalText_RejectsUnknown(t *testing.T) {
	var cfg struct {
		Policy Policy `yaml:"policy"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("policy: SRTF\n"), &cfg))
	assert.Equal(t, PolicySRTF, cfg.Policy)

	err := yaml.Unmarshal([]byte("policy: lottery\n"), &cfg)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
