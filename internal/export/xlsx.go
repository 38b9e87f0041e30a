package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/zones"
)

// Sheet names of the XLSX report.
const (
	SheetZones   = "Zones"
	SheetSummary = "Summary"
)

// writeXLSX writes a report with one row per zone and a summary sheet.
func (x *Exporter) writeXLSX(path string, run model.Run, zs []model.Zone) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SheetZones)
	if err != nil {
		return eris.Wrap(err, "xlsx: add zones sheet")
	}
	addStrings(sheet.AddRow(), zoneHeader...)
	for _, z := range zs {
		lon, lat, err := x.lonLatXY(z.Centroid.X, z.Centroid.Y)
		if err != nil {
			return eris.Wrapf(err, "xlsx: zone %d centroid", z.ID)
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(z.ID)
		row.AddCell().SetFloatWithFormat(round(z.AreaM2, 2), "#,##0.00")
		row.AddCell().SetFloatWithFormat(round(z.PerimeterM, 2), "#,##0.00")
		row.AddCell().SetFloatWithFormat(round(z.Compactness, 4), "0.0000")
		row.AddCell().SetString(string(z.SizeClass))
		row.AddCell().SetFloatWithFormat(round(lat, 6), "0.000000")
		row.AddCell().SetFloatWithFormat(round(lon, 6), "0.000000")
	}

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	addStrings(summary.AddRow(), "name", x.title())
	addStrings(summary.AddRow(), "city", x.city)
	addStrings(summary.AddRow(), "run_id", run.ID)
	addStrings(summary.AddRow(), "method", string(run.Method))
	addStrings(summary.AddRow(), "processing_crs", run.CRS)
	addStrings(summary.AddRow(), "generated_at", x.now().UTC().Format("2006-01-02 15:04:05 UTC"))

	row := summary.AddRow()
	row.AddCell().SetString("feature_count")
	row.AddCell().SetInt(len(zs))
	row = summary.AddRow()
	row.AddCell().SetString("total_area_km2")
	row.AddCell().SetFloat(totalAreaKm2(zs))

	counts := zones.CountByClass(zs)
	for _, c := range model.SizeClasses {
		row := summary.AddRow()
		row.AddCell().SetString(string(c))
		row.AddCell().SetInt(counts[c])
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
