package projection

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// CoordFunc maps one planar coordinate.
type CoordFunc func(x, y float64) (float64, float64, error)

// Transform rebuilds g in the XY layout with every coordinate passed through
// fn. Z and M ordinates are dropped. A nil fn keeps coordinates as they are.
func Transform(g geom.T, fn CoordFunc) (geom.T, error) {
	if fn == nil {
		fn = func(x, y float64) (float64, float64, error) { return x, y, nil }
	}
	switch g := g.(type) {
	case nil:
		return nil, nil
	case *geom.Point:
		if g.Empty() {
			return geom.NewPointEmpty(geom.XY), nil
		}
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		return geom.NewPointFlat(geom.XY, flat), nil
	case *geom.LineString:
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		return geom.NewLineStringFlat(geom.XY, flat), nil
	case *geom.Polygon:
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		return geom.NewPolygonFlat(geom.XY, flat, rescaleEnds(g.Ends(), g.Stride())), nil
	case *geom.MultiPoint:
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		return geom.NewMultiPointFlat(geom.XY, flat), nil
	case *geom.MultiLineString:
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		return geom.NewMultiLineStringFlat(geom.XY, flat, rescaleEnds(g.Ends(), g.Stride())), nil
	case *geom.MultiPolygon:
		flat, err := mapFlat(g.FlatCoords(), g.Stride(), fn)
		if err != nil {
			return nil, err
		}
		endss := make([][]int, len(g.Endss()))
		for i, ends := range g.Endss() {
			endss[i] = rescaleEnds(ends, g.Stride())
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss), nil
	case *geom.GeometryCollection:
		out := geom.NewGeometryCollection()
		for _, member := range g.Geoms() {
			t, err := Transform(member, fn)
			if err != nil {
				return nil, err
			}
			if err := out.Push(t); err != nil {
				return nil, eris.Wrap(err, "projection: rebuild collection")
			}
		}
		return out, nil
	default:
		return nil, eris.Errorf("projection: unsupported geometry %T", g)
	}
}

// Force2D drops Z and M ordinates from g.
func Force2D(g geom.T) (geom.T, error) {
	return Transform(g, nil)
}

func mapFlat(flat []float64, stride int, fn CoordFunc) ([]float64, error) {
	out := make([]float64, 0, len(flat)/stride*2)
	for i := 0; i+1 < len(flat); i += stride {
		x, y, err := fn(flat[i], flat[i+1])
		if err != nil {
			return nil, eris.Wrapf(err, "projection: transform (%v, %v)", flat[i], flat[i+1])
		}
		out = append(out, x, y)
	}
	return out, nil
}

func rescaleEnds(ends []int, stride int) []int {
	out := make([]int, len(ends))
	for i, e := range ends {
		out[i] = e / stride * 2
	}
	return out
}
