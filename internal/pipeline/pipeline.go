// Package pipeline runs the safe-zone stages in order: forbidden region,
// then either free-space extraction or point sampling, then zone
// finishing.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/forbidden"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/zones"
)

// Phase names recorded on the run.
const (
	PhaseBuffer     = "buffer"
	PhaseMerge      = "merge"
	PhaseFreeSpace  = "freespace"
	PhaseSample     = "sample"
	PhasePointZones = "point_zones"
)

// Input is the projected-frame data of one run.
type Input struct {
	City       string
	CRS        string
	Boundary   model.Geometry
	Categories []model.ObstacleCategory
}

// Result is the output of a completed run.
type Result struct {
	Run       model.Run
	Boundary  *geom.Polygon
	Forbidden planar.Shape
	Zones     []model.Zone
	Points    []model.Point
	Stats     Stats
}

// Pipeline runs the stages with a fixed set of options.
type Pipeline struct {
	opts Options
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{opts: opts}, nil
}

// Options returns the options the pipeline runs with.
func (p *Pipeline) Options() Options { return p.opts }

// Run executes every stage for in. Configuration problems are reported
// before any geometric work; a failure in a later stage aborts the run and
// no partial zones are returned.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	res := &Result{
		Run: model.Run{
			ID:        uuid.NewString(),
			City:      in.City,
			Method:    p.opts.Method,
			CRS:       in.CRS,
			Status:    model.RunStatusQueued,
			CreatedAt: time.Now().UTC(),
		},
	}
	log := zap.L().With(zap.String("run_id", res.Run.ID), zap.String("method", string(p.opts.Method)))
	log.Info("pipeline: starting run", zap.String("city", in.City), zap.Int("categories", len(in.Categories)))

	boundary, err := WorkingBoundary(in.Boundary)
	if err != nil {
		return nil, err
	}
	if err := validateCategories(in.Categories); err != nil {
		return nil, err
	}
	e := planar.NewEngine(p.opts.QuadSegs)
	if boundary, err = RepairBoundary(e, boundary); err != nil {
		return nil, err
	}
	res.Boundary = boundary
	res.Stats.BoundaryAreaM2 = planar.PolygonArea(boundary)
	res.Stats.Categories = len(in.Categories)

	trackPhase := func(name string, status model.RunStatus, fn func() (map[string]any, error)) error {
		res.Run.Status = status
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: %s", name)
		}
		start := time.Now()
		meta, fnErr := fn()
		phase := model.PhaseResult{
			Name:     name,
			Duration: time.Since(start).Milliseconds(),
			Metadata: meta,
		}
		if fnErr != nil {
			phase.Status = model.PhaseStatusFailed
			phase.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", phase.Duration),
				zap.Error(fnErr),
			)
		} else {
			phase.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", phase.Duration),
			)
		}
		res.Run.Phases = append(res.Run.Phases, phase)
		return fnErr
	}
	skipPhase := func(name string) {
		res.Run.Phases = append(res.Run.Phases, model.PhaseResult{Name: name, Status: model.PhaseStatusSkipped})
	}

	// ===== Forbidden region =====
	var buffered []forbidden.CategoryResult
	err = trackPhase(PhaseBuffer, model.RunStatusBuffering, func() (map[string]any, error) {
		results, err := BufferObstacles(ctx, in.Categories, p.opts)
		if err != nil {
			return nil, err
		}
		buffered = results
		for _, r := range results {
			res.Stats.Buffered += r.Buffered
			res.Stats.Skipped += r.Skipped
		}
		return map[string]any{
			"buffered": res.Stats.Buffered,
			"skipped":  res.Stats.Skipped,
		}, nil
	})
	if err != nil {
		return nil, p.fail(res, err)
	}

	err = trackPhase(PhaseMerge, model.RunStatusMerging, func() (map[string]any, error) {
		shape, err := forbidden.Merge(e, buffered)
		if err != nil {
			return nil, err
		}
		res.Forbidden = shape
		res.Stats.ForbiddenPolygons = len(shape.Polygons)
		res.Stats.ForbiddenAreaM2 = shape.Area()
		return map[string]any{
			"polygons": res.Stats.ForbiddenPolygons,
			"kind":     shape.Kind.String(),
		}, nil
	})
	if err != nil {
		return nil, p.fail(res, err)
	}

	// ===== Zones =====
	switch p.opts.Method {
	case model.MethodFreeSpace:
		skipPhase(PhaseSample)
		skipPhase(PhasePointZones)
		err = trackPhase(PhaseFreeSpace, model.RunStatusExtracting, func() (map[string]any, error) {
			zs, counts, err := FreeSpaceZones(e, boundary, res.Forbidden, p.opts.MinAreaM2)
			if err != nil {
				return nil, err
			}
			res.Zones = zs
			res.Stats.addZones(counts, zs)
			return map[string]any{"candidates": counts.Candidates, "zones": len(zs), "discarded": counts.Discarded}, nil
		})
	default:
		skipPhase(PhaseFreeSpace)
		err = trackPhase(PhaseSample, model.RunStatusSampling, func() (map[string]any, error) {
			pts, counts, err := SafePoints(ctx, e, boundary, res.Forbidden, p.opts)
			if err != nil {
				return nil, err
			}
			res.Points = pts
			res.Stats.GridPoints = counts.Generated
			res.Stats.SafePoints = counts.Safe
			res.Stats.KeptPoints = counts.Kept
			return map[string]any{"generated": counts.Generated, "safe": counts.Safe, "kept": counts.Kept}, nil
		})
		if err != nil {
			break
		}
		if p.opts.Method == model.MethodGrid {
			skipPhase(PhasePointZones)
			break
		}
		err = trackPhase(PhasePointZones, model.RunStatusFinalizing, func() (map[string]any, error) {
			zs, counts, err := PointZones(e, res.Points, p.opts)
			if err != nil {
				return nil, err
			}
			res.Zones = zs
			res.Stats.addZones(counts, zs)
			return map[string]any{"circles": len(res.Points), "candidates": counts.Candidates, "zones": len(zs)}, nil
		})
	}
	if err != nil {
		return nil, p.fail(res, err)
	}

	res.Run.Status = model.RunStatusComplete
	log.Info("pipeline: run complete", res.Stats.Fields()...)
	return res, nil
}

func (p *Pipeline) fail(res *Result, err error) error {
	res.Run.Status = model.RunStatusFailed
	if resilience.IsConfig(err) {
		return err
	}
	return eris.Wrap(err, "pipeline: run "+res.Run.ID)
}

// validateCategories checks frames and buffer distances up front so a bad
// category never fails halfway through buffering.
func validateCategories(cats []model.ObstacleCategory) error {
	if err := forbidden.ValidateFrames(cats); err != nil {
		return err
	}
	for _, c := range cats {
		if !positive(c.BufferM) {
			return resilience.ConfigErrorf("categories."+c.Name+".buffer_m",
				"buffer distance must be positive, got %v", c.BufferM)
		}
	}
	return nil
}

// Stats summarises a run.
type Stats struct {
	BoundaryAreaM2    float64
	Categories        int
	Buffered          int
	Skipped           int
	ForbiddenPolygons int
	ForbiddenAreaM2   float64

	Candidates int
	Zones      int
	Discarded  int
	FreeAreaM2 float64 // candidate area before the minimum-area filter
	ZoneAreaM2 float64
	BySize     map[model.SizeClass]int

	GridPoints int
	SafePoints int
	KeptPoints int
}

func (s *Stats) addZones(c ZoneCounts, zs []model.Zone) {
	s.Candidates = c.Candidates
	s.Discarded = c.Discarded
	s.FreeAreaM2 = c.FreeAreaM2
	s.Zones = len(zs)
	s.ZoneAreaM2 = 0
	for _, z := range zs {
		s.ZoneAreaM2 += z.AreaM2
	}
	s.BySize = zones.CountByClass(zs)
}

// Fields renders the stats as log fields.
func (s Stats) Fields() []zap.Field {
	fields := []zap.Field{
		zap.Float64("boundary_km2", s.BoundaryAreaM2/1e6),
		zap.Int("categories", s.Categories),
		zap.Int("buffered", s.Buffered),
		zap.Int("skipped", s.Skipped),
		zap.Int("forbidden_polygons", s.ForbiddenPolygons),
		zap.Int("zones", s.Zones),
		zap.Int("discarded", s.Discarded),
		zap.Float64("zone_km2", s.ZoneAreaM2/1e6),
	}
	if s.GridPoints > 0 {
		fields = append(fields,
			zap.Int("grid_points", s.GridPoints),
			zap.Int("safe_points", s.SafePoints),
			zap.Int("kept_points", s.KeptPoints),
		)
	}
	for _, c := range model.SizeClasses {
		if n := s.BySize[c]; n > 0 {
			fields = append(fields, zap.Int(string(c), n))
		}
	}
	return fields
}
