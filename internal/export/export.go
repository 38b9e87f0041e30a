// Package export writes zones and safe points to GeoJSON, CSV, KML, KMZ,
// XLSX and shapefiles under a per-city output directory.
package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/projection"
)

// Format is an output file format.
type Format string

const (
	FormatGeoJSON   Format = "geojson"
	FormatCSV       Format = "csv"
	FormatKML       Format = "kml"
	FormatKMZ       Format = "kmz"
	FormatXLSX      Format = "xlsx"
	FormatShapefile Format = "shp"
)

// DefaultFormats are written when no formats are configured.
var DefaultFormats = []Format{FormatGeoJSON, FormatCSV, FormatKML, FormatKMZ}

// Output base names.
const (
	ZonesBase  = "safe_zones"
	PointsBase = "safe_points"
)

// ParseFormats validates format names. Duplicates are dropped and an empty
// list yields DefaultFormats.
func ParseFormats(names []string) ([]Format, error) {
	if len(names) == 0 {
		return DefaultFormats, nil
	}
	seen := make(map[Format]bool, len(names))
	out := make([]Format, 0, len(names))
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		switch f {
		case FormatGeoJSON, FormatCSV, FormatKML, FormatKMZ, FormatXLSX, FormatShapefile:
		default:
			return nil, eris.Errorf("export: unknown format %q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Exporter writes the results of one run.
type Exporter struct {
	dir       string
	city      string
	projector *projection.Projector
	now       func() time.Time
}

// New creates an Exporter rooted at dir. Output coordinates are converted
// back to WGS84 with p; a nil p leaves them in the processing frame.
func New(dir, city string, p *projection.Projector) *Exporter {
	if city == "" {
		city = "Unknown City"
	}
	return &Exporter{dir: dir, city: city, projector: p, now: time.Now}
}

// CityDir is the directory every file of this exporter is written to.
func (x *Exporter) CityDir() string {
	return filepath.Join(x.dir, Slugify(x.city))
}

// WriteZones writes zones in each format and returns the written paths.
func (x *Exporter) WriteZones(run model.Run, zs []model.Zone, formats []Format) (map[Format]string, error) {
	if err := os.MkdirAll(x.CityDir(), 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}
	log := zap.L().With(zap.String("dir", x.CityDir()), zap.Int("zones", len(zs)))

	paths := make(map[Format]string, len(formats))
	for _, f := range formats {
		path := filepath.Join(x.CityDir(), ZonesBase+"."+string(f))
		var err error
		switch f {
		case FormatGeoJSON:
			err = x.writeZonesGeoJSON(path, run, zs)
		case FormatCSV:
			err = x.writeZonesCSV(path, zs)
		case FormatKML:
			err = x.writeKML(path, zs)
		case FormatKMZ:
			err = x.writeKMZ(path, zs)
		case FormatXLSX:
			err = x.writeXLSX(path, run, zs)
		case FormatShapefile:
			err = x.writeShapefile(path, zs)
		default:
			err = eris.Errorf("export: unknown format %q", f)
		}
		if err != nil {
			return paths, err
		}
		paths[f] = path
		log.Info("export: zones written", zap.String("format", string(f)), zap.String("path", path))
	}
	return paths, nil
}

// WritePoints writes safe points. Only GeoJSON and CSV apply to points;
// other formats are skipped.
func (x *Exporter) WritePoints(run model.Run, pts []model.Point, formats []Format) (map[Format]string, error) {
	if err := os.MkdirAll(x.CityDir(), 0o755); err != nil {
		return nil, eris.Wrap(err, "export: create output dir")
	}
	log := zap.L().With(zap.String("dir", x.CityDir()), zap.Int("points", len(pts)))

	paths := make(map[Format]string, 2)
	for _, f := range formats {
		path := filepath.Join(x.CityDir(), PointsBase+"."+string(f))
		var err error
		switch f {
		case FormatGeoJSON:
			err = x.writePointsGeoJSON(path, run, pts)
		case FormatCSV:
			err = x.writePointsCSV(path, pts)
		default:
			log.Debug("export: format does not apply to points", zap.String("format", string(f)))
			continue
		}
		if err != nil {
			return paths, err
		}
		paths[f] = path
		log.Info("export: points written", zap.String("format", string(f)), zap.String("path", path))
	}
	return paths, nil
}

// outputCRS names the frame written files are in.
func (x *Exporter) outputCRS(run model.Run) string {
	if x.projector != nil {
		return "EPSG:4326"
	}
	return run.CRS
}

func (x *Exporter) lonLat(g geom.T) (geom.T, error) {
	if x.projector == nil {
		return g, nil
	}
	return x.projector.Inverse(g)
}

func (x *Exporter) lonLatXY(px, py float64) (float64, float64, error) {
	if x.projector == nil {
		return px, py, nil
	}
	return x.projector.InverseXY(px, py)
}

func (x *Exporter) title() string {
	return x.city + " - Fireworks Safe Zones"
}

func totalAreaKm2(zs []model.Zone) float64 {
	var total float64
	for _, z := range zs {
		total += z.AreaM2
	}
	return round(total/1e6, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Slugify turns a city name into a directory name: accents folded, lower
// case, punctuation dropped, runs of spaces and underscores collapsed to a
// single hyphen.
func Slugify(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "unknown-city"
	}
	return b.String()
}
