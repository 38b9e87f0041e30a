// Package freespace subtracts the forbidden region from the boundary and
// decomposes what is left into zone candidates.
package freespace

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
)

// Candidate is one connected component of free space.
type Candidate struct {
	Polygon *geom.Polygon
	AreaM2  float64
}

// Extract computes boundary minus forbidden and returns its polygon members
// in the order the geometry engine produced them. If the difference fails,
// both operands are repaired with a zero-width buffer and the difference is
// attempted once more; a second failure is fatal.
func Extract(e *planar.Engine, boundary *geom.Polygon, forbidden planar.Shape) ([]Candidate, error) {
	if boundary == nil || boundary.Empty() {
		return nil, nil
	}

	var a geom.T = boundary
	var b geom.T = forbidden.MultiPolygon()

	shape, err := resilience.DoWithRepair("difference",
		func() (planar.Shape, error) { return e.Difference(a, b) },
		func() error {
			ra, err := e.Repair(a)
			if err != nil {
				return err
			}
			rb, err := e.Repair(b)
			if err != nil {
				return err
			}
			a, b = ra, rb
			return nil
		},
	)
	if err != nil {
		return nil, eris.Wrap(err, "freespace: boundary minus forbidden")
	}

	out := make([]Candidate, 0, len(shape.Polygons))
	for _, p := range shape.Polygons {
		out = append(out, Candidate{Polygon: p, AreaM2: planar.PolygonArea(p)})
	}

	zap.L().Info("free space extracted",
		zap.Int("candidates", len(out)),
		zap.Float64("area_m2", shape.Area()),
	)
	return out, nil
}

// TotalArea sums the candidates' areas.
func TotalArea(cs []Candidate) float64 {
	var total float64
	for _, c := range cs {
		total += c.AreaM2
	}
	return total
}
