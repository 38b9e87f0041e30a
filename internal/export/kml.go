package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geomkml "github.com/twpayne/go-geom/encoding/kml"
	"github.com/twpayne/go-kml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/safezones/internal/model"
)

// kmzEntry is the document name inside a KMZ archive.
const kmzEntry = "doc.kml"

// sizeColors are the fill colours per size class, light to dark.
var sizeColors = map[model.SizeClass]color.RGBA{
	model.SizeVerySmall: {R: 0xFF, G: 0xF2, B: 0xCC},
	model.SizeSmall:     {R: 0xFF, G: 0xE5, B: 0x99},
	model.SizeMedium:    {R: 0xFF, G: 0xD9, B: 0x66},
	model.SizeLarge:     {R: 0xFF, G: 0xB3, B: 0x47},
	model.SizeVeryLarge: {R: 0xFF, G: 0x8C, B: 0x42},
}

var printer = message.NewPrinter(language.English)

func styleID(c model.SizeClass) string {
	return "style_" + string(c)
}

func (x *Exporter) kmlDocument(zs []model.Zone) (*kml.KMLElement, error) {
	children := []kml.Element{
		kml.Name(x.title()),
		kml.Description(printer.Sprintf(
			"Safe zones for consumer fireworks in %s. Generated: %s. Total zones: %d. Total area: %.2f km².",
			x.city, x.now().UTC().Format("2006-01-02 15:04 UTC"), len(zs), totalAreaKm2(zs),
		)),
	}

	for _, c := range model.SizeClasses {
		fill := sizeColors[c]
		fill.A = 0x7F
		line := sizeColors[c]
		line.A = 0xFF
		children = append(children, kml.SharedStyle(styleID(c),
			kml.PolyStyle(kml.Color(fill), kml.Fill(true), kml.Outline(true)),
			kml.LineStyle(kml.Color(line), kml.Width(2)),
		))
	}

	for _, z := range zs {
		g, err := x.lonLat(z.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "export: zone %d to wgs84", z.ID)
		}
		poly, ok := g.(*geom.Polygon)
		if !ok {
			return nil, eris.Errorf("export: zone %d is %T, want polygon", z.ID, g)
		}
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Zone %d", z.ID)),
			kml.Description(zoneDescription(z)),
			kml.StyleURL("#"+styleID(z.SizeClass)),
			geomkml.EncodePolygon(poly),
		))
	}
	return kml.KML(kml.Document(children...)), nil
}

func zoneDescription(z model.Zone) string {
	return printer.Sprintf(
		"<b>Zone ID:</b> %d<br><b>Area:</b> %.0f m² (%.2f ha)<br><b>Size Class:</b> %s<br>"+
			"<b>Perimeter:</b> %.0f m<br><b>Compactness:</b> %.3f<br>"+
			"<br><i>Safe for consumer fireworks (F2/F3 category)</i>",
		z.ID, z.AreaM2, z.AreaM2/10_000, z.SizeClass, z.PerimeterM, z.Compactness,
	)
}

func (x *Exporter) encodeKML(zs []model.Zone) ([]byte, error) {
	doc, err := x.kmlDocument(zs)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return nil, eris.Wrap(err, "export: encode kml")
	}
	return buf.Bytes(), nil
}

func (x *Exporter) writeKML(path string, zs []model.Zone) error {
	data, err := x.encodeKML(zs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// writeKMZ stores the KML document as doc.kml in a deflated zip archive.
func (x *Exporter) writeKMZ(path string, zs []model.Zone) error {
	data, err := x.encodeKML(zs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: kmzEntry, Method: zip.Deflate})
	if err != nil {
		return eris.Wrap(err, "export: create kmz entry")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write kmz entry")
	}
	if err := zw.Close(); err != nil {
		return eris.Wrap(err, "export: close kmz")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
