package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusBuffering  RunStatus = "buffering"
	RunStatusMerging    RunStatus = "merging"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusSampling   RunStatus = "sampling"
	RunStatusFinalizing RunStatus = "finalizing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// PhaseStatus represents the outcome of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Run describes one invocation of the pipeline.
type Run struct {
	ID        string        `json:"run_id"`
	City      string        `json:"city"`
	Method    ZoneMethod    `json:"method"`
	CRS       string        `json:"crs,omitempty"`
	Status    RunStatus     `json:"status"`
	Phases    []PhaseResult `json:"phases"`
	CreatedAt time.Time     `json:"created_at"`
}

// Phase returns the named phase result, or nil.
func (r *Run) Phase(name string) *PhaseResult {
	for i := range r.Phases {
		if r.Phases[i].Name == name {
			return &r.Phases[i]
		}
	}
	return nil
}
