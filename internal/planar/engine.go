// Package planar wraps the GEOS planar geometry engine behind go-geom types.
// Geometries cross the boundary as WKB; every GEOS panic is recovered and
// returned as a resilience.GeometryError.
package planar

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"

	"github.com/sells-group/safezones/internal/resilience"
)

// DefaultQuadSegs is the number of segments used to approximate a quarter
// circle when buffering.
const DefaultQuadSegs = 16

// Engine runs planar operations on a private GEOS context. An Engine is safe
// for concurrent use, but GEOS serialises calls per context, so parallel
// workers should each create their own.
type Engine struct {
	ctx      *geos.Context
	quadSegs int
}

// NewEngine creates an Engine. A non-positive quadSegs selects
// DefaultQuadSegs.
func NewEngine(quadSegs int) *Engine {
	if quadSegs <= 0 {
		quadSegs = DefaultQuadSegs
	}
	return &Engine{ctx: geos.NewContext(), quadSegs: quadSegs}
}

// QuadSegs returns the buffer approximation setting.
func (e *Engine) QuadSegs() int { return e.quadSegs }

// Guard runs fn and converts a GEOS panic into a GeometryError for op.
func Guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = resilience.NewGeometryError(op, rErr)
				return
			}
			err = resilience.NewGeometryError(op, eris.Errorf("%v", r))
		}
	}()
	return fn()
}

func (e *Engine) toGEOS(g geom.T) (*geos.Geom, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "planar: encode wkb")
	}
	gg, err := e.ctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, eris.Wrap(err, "planar: decode geos wkb")
	}
	return gg, nil
}

func fromGEOS(gg *geos.Geom) (geom.T, error) {
	g, err := wkb.Unmarshal(gg.ToWKB())
	if err != nil {
		return nil, eris.Wrap(err, "planar: decode wkb")
	}
	return g, nil
}

// Buffer expands g by distance. Lines and points become polygons. The
// result is a Polygon or MultiPolygon.
func (e *Engine) Buffer(g geom.T, distance float64) (geom.T, error) {
	if g == nil || g.Empty() {
		return nil, resilience.NewGeometryError("buffer", eris.New("empty geometry"))
	}
	var out geom.T
	err := Guard("buffer", func() error {
		gg, err := e.toGEOS(g)
		if err != nil {
			return err
		}
		buffered := gg.Buffer(distance, e.quadSegs)
		if buffered.IsEmpty() {
			return eris.New("planar: buffer produced empty geometry")
		}
		out, err = fromGEOS(buffered)
		return err
	})
	if err != nil {
		return nil, asGeometryError("buffer", err)
	}
	return out, nil
}

// Circle returns the buffer of the point (x, y) by radius.
func (e *Engine) Circle(x, y, radius float64) (*geom.Polygon, error) {
	out, err := e.Buffer(geom.NewPointFlat(geom.XY, []float64{x, y}), radius)
	if err != nil {
		return nil, err
	}
	p, ok := out.(*geom.Polygon)
	if !ok {
		return nil, resilience.NewGeometryError("buffer", eris.Errorf("circle is %T, not a polygon", out))
	}
	return p, nil
}

// Union merges polys into one normalised polygon set. An empty input is a
// valid empty result.
func (e *Engine) Union(polys []*geom.Polygon) (Shape, error) {
	if len(polys) == 0 {
		return Shape{Kind: KindEmpty}, nil
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for _, p := range polys {
		if p == nil || p.Empty() {
			continue
		}
		if err := mp.Push(p); err != nil {
			return Shape{}, eris.Wrap(err, "planar: collect union input")
		}
	}
	if mp.NumPolygons() == 0 {
		return Shape{Kind: KindEmpty}, nil
	}

	var out Shape
	err := Guard("union", func() error {
		gg, err := e.toGEOS(mp)
		if err != nil {
			return err
		}
		merged, err := fromGEOS(gg.UnaryUnion())
		if err != nil {
			return err
		}
		out = Normalize(merged)
		return nil
	})
	if err != nil {
		return Shape{}, asGeometryError("union", err)
	}
	return out, nil
}

// Difference returns a minus b, normalised.
func (e *Engine) Difference(a, b geom.T) (Shape, error) {
	if a == nil || a.Empty() {
		return Shape{Kind: KindEmpty}, nil
	}
	if b == nil || b.Empty() {
		return Normalize(a), nil
	}
	var out Shape
	err := Guard("difference", func() error {
		ga, err := e.toGEOS(a)
		if err != nil {
			return err
		}
		gb, err := e.toGEOS(b)
		if err != nil {
			return err
		}
		diff, err := fromGEOS(ga.Difference(gb))
		if err != nil {
			return err
		}
		out = Normalize(diff)
		return nil
	})
	if err != nil {
		return Shape{}, asGeometryError("difference", err)
	}
	return out, nil
}

// Repair fixes self-intersections with a zero-width buffer.
func (e *Engine) Repair(g geom.T) (geom.T, error) {
	if g == nil || g.Empty() {
		return g, nil
	}
	var out geom.T
	err := Guard("repair", func() error {
		gg, err := e.toGEOS(g)
		if err != nil {
			return err
		}
		out, err = fromGEOS(gg.Buffer(0, e.quadSegs))
		return err
	})
	if err != nil {
		return nil, asGeometryError("repair", err)
	}
	return out, nil
}

// IsValid reports whether GEOS considers g a valid geometry.
func (e *Engine) IsValid(g geom.T) (bool, error) {
	var valid bool
	err := Guard("validate", func() error {
		gg, err := e.toGEOS(g)
		if err != nil {
			return err
		}
		valid = gg.IsValid()
		return nil
	})
	return valid, err
}

func asGeometryError(op string, err error) error {
	if resilience.IsGeometry(err) {
		return err
	}
	return resilience.NewGeometryError(op, err)
}
