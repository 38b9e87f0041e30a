// Package store keeps a history of pipeline runs: the run record, its
// phases, summary statistics and the files it exported.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sells-group/safezones/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus  `json:"status,omitempty"`
	City   string           `json:"city,omitempty"`
	Method model.ZoneMethod `json:"method,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Record is a stored run.
type Record struct {
	Run       model.Run         `json:"run"`
	Stats     json.RawMessage   `json:"stats,omitempty"`
	Files     map[string]string `json:"files,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store defines the persistence interface for run history.
type Store interface {
	// SaveRun inserts the run or replaces the stored copy with the same ID.
	// stats is stored as JSON.
	SaveRun(ctx context.Context, run model.Run, stats any, files map[string]string) error
	GetRun(ctx context.Context, runID string) (*Record, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Record, error)
	DeleteRun(ctx context.Context, runID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
