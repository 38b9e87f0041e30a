package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/safezones/internal/model"
)

var (
	zoneHeader  = []string{"zone_id", "area_m2", "perimeter_m", "compactness", "size_class", "centroid_lat", "centroid_lon"}
	pointHeader = []string{"lon", "lat", "x_utm", "y_utm"}
)

func (x *Exporter) writeZonesCSV(path string, zs []model.Zone) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(zoneHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, z := range zs {
		lon, lat, err := x.lonLatXY(z.Centroid.X, z.Centroid.Y)
		if err != nil {
			return eris.Wrapf(err, "export: zone %d centroid", z.ID)
		}
		row := []string{
			strconv.Itoa(z.ID),
			formatRounded(z.AreaM2, 2),
			formatRounded(z.PerimeterM, 2),
			formatRounded(z.Compactness, 4),
			string(z.SizeClass),
			formatRounded(lat, 6),
			formatRounded(lon, 6),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return flushCSV(path, cw, &buf)
}

func (x *Exporter) writePointsCSV(path string, pts []model.Point) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(pointHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, p := range pts {
		lon, lat, err := x.lonLatXY(p.X, p.Y)
		if err != nil {
			return eris.Wrap(err, "export: point to wgs84")
		}
		row := []string{
			strconv.FormatFloat(lon, 'f', 6, 64),
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return flushCSV(path, cw, &buf)
}

func flushCSV(path string, cw *csv.Writer, buf *bytes.Buffer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// formatRounded rounds to places and prints the shortest representation.
func formatRounded(v float64, places int) string {
	return strconv.FormatFloat(round(v, places), 'f', -1, 64)
}
