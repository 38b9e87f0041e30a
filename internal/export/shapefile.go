package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/safezones/internal/model"
)

// wgs84WKT is written as the .prj of WGS84 shapefiles.
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

var shapeFields = []shp.Field{
	shp.NumberField("ZONE_ID", 10),
	shp.FloatField("AREA_M2", 18, 2),
	shp.FloatField("PERIM_M", 18, 2),
	shp.FloatField("COMPACT", 8, 4),
	shp.StringField("SIZE_CLASS", 12),
}

// writeShapefile writes zones as a polygon shapefile with a .dbf of zone
// metadata.
func (x *Exporter) writeShapefile(path string, zs []model.Zone) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "shapefile: create %s", path)
	}
	if err := w.SetFields(shapeFields); err != nil {
		w.Close()
		return eris.Wrap(err, "shapefile: set fields")
	}

	for _, z := range zs {
		g, err := x.lonLat(z.Geometry)
		if err != nil {
			w.Close()
			return eris.Wrapf(err, "shapefile: zone %d to wgs84", z.ID)
		}
		poly, ok := g.(*geom.Polygon)
		if !ok {
			w.Close()
			return eris.Errorf("shapefile: zone %d is %T, want polygon", z.ID, g)
		}
		shape := polygonShape(poly)
		row := int(w.Write(&shape))

		values := []any{z.ID, round(z.AreaM2, 2), round(z.PerimeterM, 2), round(z.Compactness, 4), string(z.SizeClass)}
		for i, v := range values {
			if err := w.WriteAttribute(row, i, v); err != nil {
				w.Close()
				return eris.Wrapf(err, "shapefile: zone %d attribute %d", z.ID, i)
			}
		}
	}
	w.Close()

	if x.projector != nil {
		prj := strings.TrimSuffix(path, ".shp") + ".prj"
		if err := os.WriteFile(prj, []byte(wgs84WKT), 0o644); err != nil {
			return eris.Wrapf(err, "shapefile: write %s", prj)
		}
	}
	return nil
}

// polygonShape converts p to a shapefile polygon: the shell clockwise, the
// holes counter-clockwise.
func polygonShape(p *geom.Polygon) shp.Polygon {
	parts := make([][]shp.Point, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		pts := make([]shp.Point, len(coords))
		for j, c := range coords {
			pts[j] = shp.Point{X: c.X(), Y: c.Y()}
		}
		clockwise := ringArea(pts) < 0
		if (i == 0) != clockwise {
			for l, r := 0, len(pts)-1; l < r; l, r = l+1, r-1 {
				pts[l], pts[r] = pts[r], pts[l]
			}
		}
		parts = append(parts, pts)
	}
	return shp.Polygon(*shp.NewPolyLine(parts))
}

// ringArea is the signed shoelace area, positive when counter-clockwise.
func ringArea(pts []shp.Point) float64 {
	var sum float64
	for i := 0; i+1 < len(pts); i++ {
		sum += pts[i].X*pts[i+1].Y - pts[i+1].X*pts[i].Y
	}
	return sum / 2
}
