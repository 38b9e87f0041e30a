package pipeline

import (
	"math"

	"github.com/sells-group/safezones/internal/grid"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/zones"
)

// DefaultZoneRadiusM is the circle radius of point zones.
const DefaultZoneRadiusM = 15.0

// Options control a pipeline run.
type Options struct {
	Method    model.ZoneMethod
	MinAreaM2 float64

	// Point sampling.
	GridStepM   float64
	ZoneRadiusM float64
	Dissolve    bool
	MaxPoints   int // 0 keeps every safe point
	Thinning    string
	Seed        uint64

	// Execution.
	QuadSegs       int
	Workers        int // 0 selects runtime.NumCPU()
	ChunkSize      int
	ChunkThreshold int
}

// DefaultOptions returns the options of a free-space run with the standard
// thresholds.
func DefaultOptions() Options {
	return Options{
		Method:         model.MethodFreeSpace,
		MinAreaM2:      zones.DefaultMinAreaM2,
		GridStepM:      grid.DefaultStepM,
		ZoneRadiusM:    DefaultZoneRadiusM,
		Dissolve:       true,
		Thinning:       grid.ThinUniform,
		Seed:           grid.DefaultSeed,
		QuadSegs:       planar.DefaultQuadSegs,
		ChunkSize:      grid.DefaultChunkSize,
		ChunkThreshold: grid.DefaultChunkThreshold,
	}
}

// Validate rejects options that would fail or misbehave during a run. It is
// called before any geometric work.
func (o Options) Validate() error {
	switch o.Method {
	case model.MethodFreeSpace, model.MethodPoints, model.MethodGrid:
	default:
		return resilience.ConfigErrorf("zones.method", "unknown zone method %q", o.Method)
	}
	if !positive(o.MinAreaM2) {
		return resilience.ConfigErrorf("zones.min_area_m2", "must be positive, got %v", o.MinAreaM2)
	}
	if !positive(o.GridStepM) {
		return resilience.ConfigErrorf("grid.step_m", "must be positive, got %v", o.GridStepM)
	}
	if !positive(o.ZoneRadiusM) {
		return resilience.ConfigErrorf("zones.radius_m", "must be positive, got %v", o.ZoneRadiusM)
	}
	if err := grid.ValidateThinning(o.Thinning, o.MaxPoints); err != nil {
		return err
	}
	if o.QuadSegs < 0 {
		return resilience.ConfigErrorf("geometry.quad_segs", "must not be negative, got %d", o.QuadSegs)
	}
	if o.Workers < 0 {
		return resilience.ConfigErrorf("grid.workers", "must not be negative, got %d", o.Workers)
	}
	if o.ChunkSize < 0 || o.ChunkThreshold < 0 {
		return resilience.ConfigErrorf("grid.chunk_size", "chunk settings must not be negative")
	}
	return nil
}

func (o Options) filterOptions() grid.FilterOptions {
	return grid.FilterOptions{
		ChunkSize:      o.ChunkSize,
		ChunkThreshold: o.ChunkThreshold,
		Workers:        o.Workers,
		QuadSegs:       o.QuadSegs,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
