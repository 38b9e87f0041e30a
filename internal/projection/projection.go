// Package projection picks a UTM zone for a geographic boundary and moves
// geometries between WGS84 degrees and that zone's metres.
package projection

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const wgs84Proj4 = "+proj=longlat +datum=WGS84 +no_defs"

// UTMZone returns the 1..60 UTM zone containing lon.
func UTMZone(lon float64) int {
	zone := int((lon+180)/6) + 1
	return max(1, min(zone, 60))
}

// EPSG returns the WGS84 / UTM EPSG code for a location: 326xx north of the
// equator (inclusive), 327xx south of it.
func EPSG(lon, lat float64) int {
	if lat >= 0 {
		return 32600 + UTMZone(lon)
	}
	return 32700 + UTMZone(lon)
}

// Projector converts between WGS84 and one UTM zone.
type Projector struct {
	Zone  int
	South bool
	EPSG  int

	forward proj.Transformer
	inverse proj.Transformer
}

// ForLonLat builds the Projector for the UTM zone containing (lon, lat).
func ForLonLat(lon, lat float64) (*Projector, error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, eris.Errorf("projection: invalid location (%v, %v)", lon, lat)
	}
	return newProjector(UTMZone(lon), lat < 0)
}

// ForEPSG builds the Projector for a WGS84 / UTM code (32601..32660 or
// 32701..32760). Other reference systems are rejected.
func ForEPSG(code int) (*Projector, error) {
	zone := code % 100
	if zone < 1 || zone > 60 || (code/100 != 326 && code/100 != 327) {
		return nil, eris.Errorf("projection: EPSG:%d is not a WGS84 UTM zone", code)
	}
	return newProjector(zone, code/100 == 327)
}

func newProjector(zone int, south bool) (*Projector, error) {
	p := &Projector{Zone: zone, South: south, EPSG: 32600 + zone}
	if south {
		p.EPSG = 32700 + zone
	}

	geo, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, eris.Wrap(err, "projection: parse wgs84")
	}
	utm, err := proj.Parse(p.Proj4())
	if err != nil {
		return nil, eris.Wrapf(err, "projection: parse %s", p.CRS())
	}
	if p.forward, err = geo.NewTransform(utm); err != nil {
		return nil, eris.Wrap(err, "projection: forward transform")
	}
	if p.inverse, err = utm.NewTransform(geo); err != nil {
		return nil, eris.Wrap(err, "projection: inverse transform")
	}
	return p, nil
}

// ForBoundary picks the zone from the centroid of a WGS84 boundary.
func ForBoundary(boundary geom.T) (*Projector, error) {
	if boundary == nil || boundary.Empty() {
		return nil, eris.New("projection: empty boundary")
	}
	c, err := xy.Centroid(boundary)
	if err != nil {
		return nil, eris.Wrap(err, "projection: boundary centroid")
	}
	return ForLonLat(c.X(), c.Y())
}

// CRS returns the EPSG identifier, e.g. "EPSG:32638".
func (p *Projector) CRS() string {
	return fmt.Sprintf("EPSG:%d", p.EPSG)
}

// Proj4 returns the proj4 definition of the zone.
func (p *Projector) Proj4() string {
	if p.South {
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", p.Zone)
	}
	return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", p.Zone)
}

// Forward projects a lon/lat geometry into UTM metres.
func (p *Projector) Forward(g geom.T) (geom.T, error) {
	out, err := Transform(g, CoordFunc(p.forward))
	if err != nil {
		return nil, eris.Wrap(err, "projection: forward")
	}
	return out, nil
}

// Inverse converts a UTM geometry back to lon/lat.
func (p *Projector) Inverse(g geom.T) (geom.T, error) {
	out, err := Transform(g, CoordFunc(p.inverse))
	if err != nil {
		return nil, eris.Wrap(err, "projection: inverse")
	}
	return out, nil
}

// ForwardXY projects a single lon, lat coordinate.
func (p *Projector) ForwardXY(lon, lat float64) (x, y float64, err error) {
	x, y, err = p.forward(lon, lat)
	if err != nil {
		return 0, 0, eris.Wrap(err, "projection: forward point")
	}
	return x, y, nil
}

// InverseXY converts a single UTM coordinate to lon, lat.
func (p *Projector) InverseXY(x, y float64) (lon, lat float64, err error) {
	lon, lat, err = p.inverse(x, y)
	if err != nil {
		return 0, 0, eris.Wrap(err, "projection: inverse point")
	}
	return lon, lat, nil
}
