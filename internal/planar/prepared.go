package planar

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"
)

// Prepared is a geometry indexed for repeated point predicates. It is bound
// to the Engine that created it; query it only from that Engine's goroutine
// and wrap query loops in Guard.
type Prepared struct {
	engine *Engine
	geom   *geos.Geom
	prep   *geos.PrepGeom
}

// Prepare indexes g for point queries.
func (e *Engine) Prepare(g geom.T) (*Prepared, error) {
	var p *Prepared
	err := Guard("prepare", func() error {
		gg, err := e.toGEOS(g)
		if err != nil {
			return err
		}
		p = &Prepared{engine: e, geom: gg, prep: gg.Prepare()}
		return nil
	})
	if err != nil {
		return nil, asGeometryError("prepare", err)
	}
	return p, nil
}

// ContainsXY reports whether (x, y) lies in the interior of the geometry.
// Points on the boundary are not contained.
func (p *Prepared) ContainsXY(x, y float64) bool {
	return p.prep.Contains(p.engine.ctx.NewPoint([]float64{x, y}))
}

// IntersectsXY reports whether (x, y) lies in the interior or on the
// boundary of the geometry.
func (p *Prepared) IntersectsXY(x, y float64) bool {
	return p.prep.Intersects(p.engine.ctx.NewPoint([]float64{x, y}))
}
