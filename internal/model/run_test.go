package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status RunStatus
		want   string
	}{
		{RunStatusQueued, "queued"},
		{RunStatusBuffering, "buffering"},
		{RunStatusMerging, "merging"},
		{RunStatusExtracting, "extracting"},
		{RunStatusSampling, "sampling"},
		{RunStatusFinalizing, "finalizing"},
		{RunStatusComplete, "complete"},
		{RunStatusFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestPhaseStatusValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status PhaseStatus
		want   string
	}{
		{PhaseStatusComplete, "complete"},
		{PhaseStatusFailed, "failed"},
		{PhaseStatusSkipped, "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(tt.status))
		})
	}
}

func TestRunPhaseLookup(t *testing.T) {
	r := &Run{Phases: []PhaseResult{
		{Name: "buffer", Status: PhaseStatusComplete},
		{Name: "merge", Status: PhaseStatusFailed},
	}}

	p := r.Phase("merge")
	require.NotNil(t, p)
	assert.Equal(t, PhaseStatusFailed, p.Status)
	assert.Nil(t, r.Phase("extract"))
}
