// Package grid samples a regular point lattice inside the boundary and
// filters it against the forbidden region.
package grid

import (
	"context"
	"math"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
)

// Chunking defaults. Lattices larger than DefaultChunkThreshold are filtered
// in chunks of DefaultChunkSize points.
const (
	DefaultStepM          = 10.0
	DefaultChunkSize      = 50_000
	DefaultChunkThreshold = 100_000
)

// FilterOptions control chunked filtering.
type FilterOptions struct {
	ChunkSize      int
	ChunkThreshold int
	Workers        int // 0 selects runtime.NumCPU()
	QuadSegs       int
}

func (o FilterOptions) withDefaults() FilterOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkThreshold <= 0 {
		o.ChunkThreshold = DefaultChunkThreshold
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// Generate returns every lattice point (minX + i·step, minY + j·step)
// strictly inside boundary, ordered by x then y.
func Generate(e *planar.Engine, boundary *geom.Polygon, stepM float64) ([]model.GridPoint, error) {
	if stepM <= 0 || math.IsNaN(stepM) || math.IsInf(stepM, 0) {
		return nil, resilience.ConfigErrorf("grid.step_m", "must be positive, got %v", stepM)
	}
	if boundary == nil || boundary.Empty() {
		return nil, nil
	}

	minX, minY, maxX, maxY := planar.Bounds(boundary)
	nx := steps(minX, maxX, stepM)
	ny := steps(minY, maxY, stepM)

	prep, err := e.Prepare(boundary)
	if err != nil {
		return nil, eris.Wrap(err, "grid: prepare boundary")
	}

	var pts []model.GridPoint
	err = planar.Guard("contains", func() error {
		for i := 0; i < nx; i++ {
			x := minX + float64(i)*stepM
			for j := 0; j < ny; j++ {
				y := minY + float64(j)*stepM
				if prep.ContainsXY(x, y) {
					pts = append(pts, model.GridPoint{X: x, Y: y})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "grid: generate")
	}

	zap.L().Info("grid generated",
		zap.Float64("step_m", stepM),
		zap.Int("lattice", nx*ny),
		zap.Int("inside", len(pts)),
	)
	return pts, nil
}

// steps is the number of values in [start, stop) spaced by step.
func steps(start, stop, step float64) int {
	n := int(math.Ceil((stop - start) / step))
	if n < 0 {
		return 0
	}
	return n
}

// FilterSafe marks each point safe unless it lies within or touches the
// forbidden region. Large inputs are split into fixed-size chunks; each
// chunk is checked only against forbidden polygons whose extent meets the
// chunk's extent. The decision for a point never depends on chunking.
func FilterSafe(ctx context.Context, pts []model.GridPoint, forbidden planar.Shape, opts FilterOptions) ([]model.GridPoint, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()

	out := make([]model.GridPoint, len(pts))
	copy(out, pts)

	if forbidden.IsEmpty() {
		for i := range out {
			out[i].Safe = true
		}
		return out, nil
	}

	chunkSize := len(out)
	if len(out) > opts.ChunkThreshold {
		chunkSize = opts.ChunkSize
	}
	index := newPolygonIndex(forbidden.Polygons)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	nChunks := (len(out) + chunkSize - 1) / chunkSize
	for c := 0; c < nChunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, len(out))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := filterChunk(out[start:end], index, opts.QuadSegs); err != nil {
				return eris.Wrapf(err, "grid: chunk %d", c)
			}
			zap.L().Debug("grid chunk filtered",
				zap.Int("chunk", c),
				zap.Int("points", end-start),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("grid filtered",
		zap.Int("points", len(out)),
		zap.Int("chunks", nChunks),
		zap.Int("safe", countSafe(out)),
	)
	return out, nil
}

// filterChunk sets Safe in place. It runs on its own Engine so chunks can
// proceed in parallel.
func filterChunk(chunk []model.GridPoint, index *polygonIndex, quadSegs int) error {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range chunk {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	candidates := index.query(minX, minY, maxX, maxY)
	if len(candidates) == 0 {
		for i := range chunk {
			chunk[i].Safe = true
		}
		return nil
	}

	e := planar.NewEngine(quadSegs)
	prep, err := e.Prepare(planar.Shape{Kind: planar.KindMulti, Polygons: candidates}.MultiPolygon())
	if err != nil {
		return err
	}
	return planar.Guard("intersects", func() error {
		for i := range chunk {
			// Within implies intersects, so one predicate covers both.
			chunk[i].Safe = !prep.IntersectsXY(chunk[i].X, chunk[i].Y)
		}
		return nil
	})
}

// SafePoints returns the coordinates of the safe points in order.
func SafePoints(pts []model.GridPoint) []model.Point {
	out := make([]model.Point, 0, countSafe(pts))
	for _, p := range pts {
		if p.Safe {
			out = append(out, model.Point{X: p.X, Y: p.Y})
		}
	}
	return out
}

func countSafe(pts []model.GridPoint) int {
	n := 0
	for _, p := range pts {
		if p.Safe {
			n++
		}
	}
	return n
}
