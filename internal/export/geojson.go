package export

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/safezones/internal/model"
)

// collection is a GeoJSON FeatureCollection with run metadata as foreign
// members.
type collection struct {
	Type             string             `json:"type"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	City             string             `json:"city"`
	RunID            string             `json:"run_id,omitempty"`
	Method           model.ZoneMethod   `json:"method,omitempty"`
	DataSource       string             `json:"data_source"`
	CoordinateSystem string             `json:"coordinate_system"`
	ProcessingCRS    string             `json:"processing_crs,omitempty"`
	GeneratedAt      string             `json:"generated_at"`
	FeatureCount     int                `json:"feature_count"`
	TotalAreaKm2     *float64           `json:"total_area_km2,omitempty"`
	Features         []*geojson.Feature `json:"features"`
}

func (x *Exporter) newCollection(run model.Run, n int) collection {
	return collection{
		Type:             "FeatureCollection",
		Name:             x.title(),
		City:             x.city,
		RunID:            run.ID,
		Method:           run.Method,
		DataSource:       "OpenStreetMap contributors",
		CoordinateSystem: x.outputCRS(run),
		ProcessingCRS:    run.CRS,
		GeneratedAt:      x.now().UTC().Format("2006-01-02 15:04:05 UTC"),
		FeatureCount:     n,
		Features:         make([]*geojson.Feature, 0, n),
	}
}

func (x *Exporter) writeZonesGeoJSON(path string, run model.Run, zs []model.Zone) error {
	fc := x.newCollection(run, len(zs))
	fc.Description = "Safe zones for consumer fireworks in " + x.city + ", derived from buffered obstacle categories"
	total := totalAreaKm2(zs)
	fc.TotalAreaKm2 = &total

	for _, z := range zs {
		g, err := x.lonLat(z.Geometry)
		if err != nil {
			return eris.Wrapf(err, "export: zone %d to wgs84", z.ID)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(z.ID),
			Geometry:   g,
			Properties: zoneProperties(z),
		})
	}
	return writeJSON(path, fc)
}

func zoneProperties(z model.Zone) map[string]interface{} {
	return map[string]interface{}{
		"zone_id":     z.ID,
		"area_m2":     round(z.AreaM2, 2),
		"perimeter_m": round(z.PerimeterM, 2),
		"compactness": round(z.Compactness, 4),
		"size_class":  string(z.SizeClass),
	}
}

func (x *Exporter) writePointsGeoJSON(path string, run model.Run, pts []model.Point) error {
	fc := x.newCollection(run, len(pts))
	fc.Name = x.city + " - Safe Points"

	for _, p := range pts {
		lon, lat, err := x.lonLatXY(p.X, p.Y)
		if err != nil {
			return eris.Wrap(err, "export: point to wgs84")
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{lon, lat}),
			Properties: map[string]interface{}{
				"x_utm": p.X,
				"y_utm": p.Y,
			},
		})
	}
	return writeJSON(path, fc)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "export: encode %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
