package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/forbidden"
	"github.com/sells-group/safezones/internal/freespace"
	"github.com/sells-group/safezones/internal/grid"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/zones"
)

// ZoneCounts reports how candidates fared in the area filter.
type ZoneCounts struct {
	Candidates int
	Discarded  int
	FreeAreaM2 float64 // total candidate area before filtering
}

// PointCounts reports the point sampling stage.
type PointCounts struct {
	Generated int
	Safe      int
	Kept      int // after thinning
}

// WorkingBoundary returns the polygon the run works inside. A multi-part
// boundary is reduced to its largest member; the other members are dropped
// and logged.
func WorkingBoundary(g model.Geometry) (*geom.Polygon, error) {
	if g.T == nil {
		return nil, resilience.ConfigErrorf("boundary", "no boundary geometry")
	}
	if !g.IsProjected() {
		return nil, resilience.NewConfigError("boundary", model.ErrGeographicFrame)
	}
	shape := planar.Normalize(g.T)
	largest := planar.LargestPolygon(shape)
	if largest == nil {
		return nil, resilience.ConfigErrorf("boundary", "boundary has no polygon area")
	}
	if n := len(shape.Polygons); n > 1 {
		zap.L().Warn("boundary has several parts, keeping the largest",
			zap.Int("parts", n),
			zap.Float64("kept_area_m2", planar.PolygonArea(largest)),
			zap.Float64("total_area_m2", shape.Area()),
		)
	}
	return largest, nil
}

// RepairBoundary returns boundary unchanged when it is valid. An invalid
// boundary is repaired and reduced to its largest member.
func RepairBoundary(e *planar.Engine, boundary *geom.Polygon) (*geom.Polygon, error) {
	valid, err := e.IsValid(boundary)
	if err != nil {
		return nil, err
	}
	if valid {
		return boundary, nil
	}
	fixed, err := e.Repair(boundary)
	if err != nil {
		return nil, err
	}
	largest := planar.LargestPolygon(planar.Normalize(fixed))
	if largest == nil {
		return nil, resilience.ConfigErrorf("boundary", "boundary has no polygon area after repair")
	}
	zap.L().Warn("boundary is not a valid polygon, using its repaired form",
		zap.Float64("input_area_m2", planar.PolygonArea(boundary)),
		zap.Float64("repaired_area_m2", planar.PolygonArea(largest)),
	)
	return largest, nil
}

// BufferObstacles buffers every category in parallel, keeping category
// order.
func BufferObstacles(ctx context.Context, cats []model.ObstacleCategory, opts Options) ([]forbidden.CategoryResult, error) {
	return forbidden.BufferAll(ctx, cats, forbidden.Options{QuadSegs: opts.QuadSegs, Workers: opts.Workers})
}

// FreeSpaceZones subtracts the forbidden region from boundary and turns the
// pieces into finished zones.
func FreeSpaceZones(e *planar.Engine, boundary *geom.Polygon, forb planar.Shape, minAreaM2 float64) ([]model.Zone, ZoneCounts, error) {
	cands, err := freespace.Extract(e, boundary, forb)
	if err != nil {
		return nil, ZoneCounts{}, err
	}
	counts := ZoneCounts{Candidates: len(cands), FreeAreaM2: freespace.TotalArea(cands)}
	zs, discarded, err := zones.Finalize(cands, minAreaM2)
	if err != nil {
		return nil, counts, err
	}
	counts.Discarded = discarded
	return zs, counts, nil
}

// SafePoints samples the boundary on a lattice, drops points inside or on
// the forbidden region and thins the rest to opts.MaxPoints.
func SafePoints(ctx context.Context, e *planar.Engine, boundary *geom.Polygon, forb planar.Shape, opts Options) ([]model.Point, PointCounts, error) {
	var counts PointCounts
	if err := grid.ValidateThinning(opts.Thinning, opts.MaxPoints); err != nil {
		return nil, counts, err
	}

	candidates, err := grid.Generate(e, boundary, opts.GridStepM)
	if err != nil {
		return nil, counts, err
	}
	counts.Generated = len(candidates)

	marked, err := grid.FilterSafe(ctx, candidates, forb, opts.filterOptions())
	if err != nil {
		return nil, counts, eris.Wrap(err, "pipeline: filter grid")
	}
	safe := grid.SafePoints(marked)
	counts.Safe = len(safe)

	kept, err := grid.Thin(safe, opts.MaxPoints, opts.Thinning, opts.Seed)
	if err != nil {
		return nil, counts, err
	}
	counts.Kept = len(kept)
	if counts.Kept < counts.Safe {
		zap.L().Info("safe points thinned",
			zap.String("method", opts.Thinning),
			zap.Int("from", counts.Safe),
			zap.Int("to", counts.Kept),
		)
	}
	return kept, counts, nil
}

// PointZones buffers safe points into circles, optionally dissolving them,
// and finishes them like free-space zones.
func PointZones(e *planar.Engine, pts []model.Point, opts Options) ([]model.Zone, ZoneCounts, error) {
	cands, err := zones.FromPoints(e, pts, opts.ZoneRadiusM, opts.Dissolve)
	if err != nil {
		return nil, ZoneCounts{}, err
	}
	counts := ZoneCounts{Candidates: len(cands), FreeAreaM2: freespace.TotalArea(cands)}
	zs, discarded, err := zones.Finalize(cands, opts.MinAreaM2)
	if err != nil {
		return nil, counts, err
	}
	counts.Discarded = discarded
	return zs, counts, nil
}
