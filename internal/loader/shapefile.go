package loader

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ReadShapefile reads every record of a shapefile. Attribute names are
// lower-cased; empty attributes are omitted.
func ReadShapefile(path string) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	var features []Feature
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]string, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				props[name] = val
			}
		}
		features = append(features, Feature{Geometry: g, Properties: props})
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

// shapeToGeom converts a go-shp shape. Unsupported or empty shapes yield nil.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.MultiPoint:
		if len(s.Points) == 0 {
			return nil
		}
		return geom.NewMultiPointFlat(geom.XY, pointsFlat(s.Points))
	case *shp.PolyLine:
		return polyLineToGeom(s)
	case *shp.Polygon:
		return polygonToGeom(s)
	default:
		return nil
	}
}

// parts splits points by the shapefile part offsets.
func parts(offsets []int32, points []shp.Point) [][]shp.Point {
	out := make([][]shp.Point, 0, len(offsets))
	for i, start := range offsets {
		end := int32(len(points))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if start < 0 || end > int32(len(points)) || start >= end {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}

func polyLineToGeom(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}
	mls := geom.NewMultiLineString(geom.XY)
	for i, part := range parts(pl.Parts, pl.Points) {
		if len(part) < 2 {
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, pointsFlat(part))); err != nil {
			zap.L().Debug("loader: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}
	switch mls.NumLineStrings() {
	case 0:
		return nil
	case 1:
		return mls.LineString(0)
	default:
		return mls
	}
}

// polygonToGeom groups rings into polygons. Shapefile outer rings run
// clockwise; counter-clockwise rings are holes of the preceding outer ring.
func polygonToGeom(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}
	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon
	flush := func() {
		if current != nil {
			if err := mp.Push(current); err != nil {
				zap.L().Debug("loader: skipping malformed polygon part", zap.Error(err))
			}
		}
	}

	for _, part := range parts(p.Parts, p.Points) {
		if len(part) < 4 {
			continue
		}
		ring := geom.NewLinearRingFlat(geom.XY, pointsFlat(part))
		if signedArea(part) > 0 && current != nil {
			_ = current.Push(ring)
			continue
		}
		flush()
		current = geom.NewPolygon(geom.XY)
		_ = current.Push(ring)
	}
	flush()

	switch mp.NumPolygons() {
	case 0:
		return nil
	case 1:
		return mp.Polygon(0)
	default:
		return mp
	}
}

// signedArea is positive for counter-clockwise rings.
func signedArea(pts []shp.Point) float64 {
	var sum float64
	for i := 0; i+1 < len(pts); i++ {
		sum += pts[i].X*pts[i+1].Y - pts[i+1].X*pts[i].Y
	}
	return sum / 2
}

func pointsFlat(pts []shp.Point) []float64 {
	flat := make([]float64, 0, len(pts)*2)
	for _, pt := range pts {
		flat = append(flat, pt.X, pt.Y)
	}
	return flat
}
