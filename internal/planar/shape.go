package planar

import "github.com/twpayne/go-geom"

// Kind tags the result of a union or difference.
type Kind int

const (
	KindEmpty Kind = iota
	KindSingle
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// Shape is a normalised polygon set. Polygons is flat: it never holds
// multi-part members.
type Shape struct {
	Kind     Kind
	Polygons []*geom.Polygon
}

// IsEmpty reports whether s holds no polygons.
func (s Shape) IsEmpty() bool { return len(s.Polygons) == 0 }

// MultiPolygon returns s as a MultiPolygon. An empty shape yields an empty
// MultiPolygon.
func (s Shape) MultiPolygon() *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY)
	for _, p := range s.Polygons {
		// Layouts are XY throughout; Push only fails on a layout mismatch.
		_ = mp.Push(p)
	}
	return mp
}

// Area returns the total area of s.
func (s Shape) Area() float64 {
	var total float64
	for _, p := range s.Polygons {
		total += PolygonArea(p)
	}
	return total
}

// Normalize reduces any geometry to a flat polygon set. Polygons pass
// through, MultiPolygons and collections are unpacked recursively and every
// non-areal member is dropped.
func Normalize(g geom.T) Shape {
	var polys []*geom.Polygon
	collectPolygons(g, &polys)
	switch len(polys) {
	case 0:
		return Shape{Kind: KindEmpty}
	case 1:
		return Shape{Kind: KindSingle, Polygons: polys}
	default:
		return Shape{Kind: KindMulti, Polygons: polys}
	}
}

func collectPolygons(g geom.T, out *[]*geom.Polygon) {
	switch g := g.(type) {
	case *geom.Polygon:
		if g != nil && !g.Empty() {
			*out = append(*out, g)
		}
	case *geom.MultiPolygon:
		if g == nil {
			return
		}
		for i := 0; i < g.NumPolygons(); i++ {
			collectPolygons(g.Polygon(i), out)
		}
	case *geom.GeometryCollection:
		if g == nil {
			return
		}
		for _, member := range g.Geoms() {
			collectPolygons(member, out)
		}
	}
}
