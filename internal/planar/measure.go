package planar

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// PolygonArea returns the unsigned area of p: the shell minus its holes.
func PolygonArea(p *geom.Polygon) float64 {
	if p == nil || p.Empty() {
		return 0
	}
	area := math.Abs(p.LinearRing(0).Area())
	for i := 1; i < p.NumLinearRings(); i++ {
		area -= math.Abs(p.LinearRing(i).Area())
	}
	return math.Max(area, 0)
}

// Perimeter returns the total boundary length of p, holes included.
func Perimeter(p *geom.Polygon) float64 {
	if p == nil || p.Empty() {
		return 0
	}
	return p.Length()
}

// Centroid returns the area centroid of p. It may fall outside a
// non-convex polygon.
func Centroid(p *geom.Polygon) geom.Coord {
	return xy.PolygonsCentroid(p)
}

// Bounds returns the XY extent of g as min, max coordinates.
func Bounds(g geom.T) (minX, minY, maxX, maxY float64) {
	b := g.Bounds()
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1)
}

// LargestPolygon returns the member of s with the greatest area.
func LargestPolygon(s Shape) *geom.Polygon {
	var best *geom.Polygon
	bestArea := -1.0
	for _, p := range s.Polygons {
		if a := PolygonArea(p); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best
}
