// Package forbidden builds the forbidden region: every obstacle expanded by
// its category's safety distance, merged into one polygon set.
package forbidden

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
)

// CategoryResult is the buffered output of one category.
type CategoryResult struct {
	Name     string
	BufferM  float64
	Polygons []*geom.Polygon
	Buffered int // input geometries that expanded successfully
	Skipped  int // null, empty or malformed input geometries
}

// Options control buffering.
type Options struct {
	QuadSegs int
	Workers  int // 0 selects runtime.NumCPU()
}

// ValidateFrames rejects any geographic-frame obstacle geometry.
func ValidateFrames(cats []model.ObstacleCategory) error {
	for _, c := range cats {
		for _, g := range c.Geometries {
			if g.T != nil && !g.IsProjected() {
				return resilience.NewConfigError("obstacles."+c.Name, model.ErrGeographicFrame)
			}
		}
	}
	return nil
}

// BufferCategory expands every geometry of cat by cat.BufferM. Geometries
// that are null, empty or fail to expand are skipped and counted; a single
// bad record never fails the category.
func BufferCategory(e *planar.Engine, cat model.ObstacleCategory) (CategoryResult, error) {
	if cat.BufferM <= 0 {
		return CategoryResult{}, resilience.ConfigErrorf("categories."+cat.Name+".buffer_m",
			"buffer distance must be positive, got %v", cat.BufferM)
	}

	log := zap.L().With(zap.String("category", cat.Name), zap.Float64("buffer_m", cat.BufferM))
	res := CategoryResult{Name: cat.Name, BufferM: cat.BufferM}

	for i, g := range cat.Geometries {
		if g.IsEmpty() {
			res.Skipped++
			continue
		}
		if !g.IsProjected() {
			return CategoryResult{}, resilience.NewConfigError("obstacles."+cat.Name, model.ErrGeographicFrame)
		}
		out, err := e.Buffer(g.T, cat.BufferM)
		if err != nil {
			res.Skipped++
			log.Warn("skipping geometry that failed to buffer", zap.Int("index", i), zap.Error(err))
			continue
		}
		shape := planar.Normalize(out)
		if shape.IsEmpty() {
			res.Skipped++
			continue
		}
		res.Polygons = append(res.Polygons, shape.Polygons...)
		res.Buffered++
	}

	log.Debug("category buffered",
		zap.Int("buffered", res.Buffered),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// BufferAll buffers each category on its own worker. Results keep the order
// of cats regardless of completion order.
func BufferAll(ctx context.Context, cats []model.ObstacleCategory, opts Options) ([]CategoryResult, error) {
	if err := ValidateFrames(cats); err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.BufferM <= 0 {
			return nil, resilience.ConfigErrorf("categories."+c.Name+".buffer_m",
				"buffer distance must be positive, got %v", c.BufferM)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]CategoryResult, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cat := range cats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := BufferCategory(planar.NewEngine(opts.QuadSegs), cat)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "forbidden: buffer categories")
	}
	return results, nil
}

// Merge unions every buffered polygon into the forbidden region. A failed
// union is retried once after repairing the inputs. No obstacles yields an
// empty region, not an error.
func Merge(e *planar.Engine, results []CategoryResult) (planar.Shape, error) {
	var polys []*geom.Polygon
	for _, r := range results {
		polys = append(polys, r.Polygons...)
	}
	if len(polys) == 0 {
		zap.L().Info("no obstacles to merge, forbidden region is empty")
		return planar.Shape{Kind: planar.KindEmpty}, nil
	}

	shape, err := resilience.DoWithRepair("union",
		func() (planar.Shape, error) { return e.Union(polys) },
		func() error {
			repaired := make([]*geom.Polygon, 0, len(polys))
			for _, p := range polys {
				fixed, err := e.Repair(p)
				if err != nil {
					return err
				}
				repaired = append(repaired, planar.Normalize(fixed).Polygons...)
			}
			polys = repaired
			return nil
		},
	)
	if err != nil {
		return planar.Shape{}, eris.Wrap(err, "forbidden: merge")
	}

	zap.L().Info("forbidden region merged",
		zap.Int("inputs", len(polys)),
		zap.Int("polygons", len(shape.Polygons)),
		zap.String("kind", shape.Kind.String()),
	)
	return shape, nil
}
