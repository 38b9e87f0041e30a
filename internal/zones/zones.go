// Package zones turns candidate polygons into numbered, classified zones.
package zones

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/freespace"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
)

// DefaultMinAreaM2 is the default minimum zone area.
const DefaultMinAreaM2 = 2000.0

// Filter keeps candidates with area ≥ minAreaM2 in their original order and
// numbers them 1..N. It also returns how many were discarded.
func Filter(cs []freespace.Candidate, minAreaM2 float64) ([]model.Zone, int, error) {
	if minAreaM2 <= 0 {
		return nil, 0, resilience.ConfigErrorf("zones.min_area_m2", "must be positive, got %v", minAreaM2)
	}
	out := make([]model.Zone, 0, len(cs))
	for _, c := range cs {
		if c.AreaM2 < minAreaM2 {
			continue
		}
		out = append(out, model.Zone{
			ID:       len(out) + 1,
			Geometry: c.Polygon,
			AreaM2:   c.AreaM2,
		})
	}
	return out, len(cs) - len(out), nil
}

// ComputeMetadata fills perimeter, compactness and centroid for each zone.
func ComputeMetadata(zs []model.Zone) {
	for i := range zs {
		z := &zs[i]
		z.PerimeterM = planar.Perimeter(z.Geometry)
		z.Compactness = Compactness(z.AreaM2, z.PerimeterM)
		c := planar.Centroid(z.Geometry)
		z.Centroid = model.Point{X: c.X(), Y: c.Y()}
	}
}

// Compactness returns 4πA/P². It is 1 for a circle and tends to 0 for
// elongated shapes. A zero perimeter yields 0.
func Compactness(areaM2, perimeterM float64) float64 {
	if perimeterM <= 0 {
		return 0
	}
	return 4 * math.Pi * areaM2 / (perimeterM * perimeterM)
}

// Finalize filters, classifies and annotates candidates.
func Finalize(cs []freespace.Candidate, minAreaM2 float64) ([]model.Zone, int, error) {
	zs, discarded, err := Filter(cs, minAreaM2)
	if err != nil {
		return nil, 0, err
	}
	ClassifyAll(zs)
	ComputeMetadata(zs)

	zap.L().Info("zones finalized",
		zap.Int("kept", len(zs)),
		zap.Int("discarded", discarded),
		zap.Float64("min_area_m2", minAreaM2),
	)
	return zs, discarded, nil
}

// FromPoints buffers each point into a circle of radiusM. With dissolve set
// the circles are unioned; otherwise each point keeps its own circle.
func FromPoints(e *planar.Engine, pts []model.Point, radiusM float64, dissolve bool) ([]freespace.Candidate, error) {
	if radiusM <= 0 {
		return nil, resilience.ConfigErrorf("zones.radius_m", "must be positive, got %v", radiusM)
	}
	if len(pts) == 0 {
		return nil, nil
	}

	circles := make([]*geom.Polygon, 0, len(pts))
	for _, p := range pts {
		c, err := e.Circle(p.X, p.Y, radiusM)
		if err != nil {
			return nil, eris.Wrap(err, "zones: buffer point")
		}
		circles = append(circles, c)
	}

	polys := circles
	if dissolve {
		shape, err := resilience.DoWithRepair("union",
			func() (planar.Shape, error) { return e.Union(circles) },
			func() error {
				for i, c := range circles {
					fixed, err := e.Repair(c)
					if err != nil {
						return err
					}
					if p := planar.LargestPolygon(planar.Normalize(fixed)); p != nil {
						circles[i] = p
					}
				}
				return nil
			},
		)
		if err != nil {
			return nil, eris.Wrap(err, "zones: dissolve point buffers")
		}
		polys = shape.Polygons
	}

	out := make([]freespace.Candidate, len(polys))
	for i, p := range polys {
		out[i] = freespace.Candidate{Polygon: p, AreaM2: planar.PolygonArea(p)}
	}
	return out, nil
}
