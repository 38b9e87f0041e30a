package grid

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/safezones/internal/planar"
)

// bboxPad widens query rectangles so boxes that only touch still match;
// rtreego's intersection test is strict.
const bboxPad = 1e-6

type polygonEntry struct {
	idx  int
	bbox rtreego.Rect
}

func (p *polygonEntry) Bounds() rtreego.Rect { return p.bbox }

// polygonIndex finds forbidden polygons whose extent meets a rectangle.
type polygonIndex struct {
	tree     *rtreego.Rtree
	polygons []*geom.Polygon
}

func newPolygonIndex(polys []*geom.Polygon) *polygonIndex {
	idx := &polygonIndex{tree: rtreego.NewTree(2, 25, 50), polygons: polys}
	for i, p := range polys {
		minX, minY, maxX, maxY := planar.Bounds(p)
		bbox, err := rtreego.NewRectFromPoints(rtreego.Point{minX, minY}, rtreego.Point{maxX, maxY})
		if err != nil {
			continue
		}
		idx.tree.Insert(&polygonEntry{idx: i, bbox: bbox})
	}
	return idx
}

// query returns, in input order, the polygons whose bounding box meets the
// rectangle [minX,maxX]×[minY,maxY].
func (ix *polygonIndex) query(minX, minY, maxX, maxY float64) []*geom.Polygon {
	bbox, err := rtreego.NewRectFromPoints(
		rtreego.Point{minX - bboxPad, minY - bboxPad},
		rtreego.Point{maxX + bboxPad, maxY + bboxPad},
	)
	if err != nil {
		return ix.polygons
	}
	hits := ix.tree.SearchIntersect(bbox)
	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*polygonEntry).idx)
	}
	sort.Ints(ids)

	out := make([]*geom.Polygon, len(ids))
	for i, id := range ids {
		out[i] = ix.polygons[id]
	}
	return out
}
