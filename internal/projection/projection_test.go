package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestEPSG(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		want     int
	}{
		{"yerevan", 44.51, 40.18, 32638},
		{"tbilisi", 44.80, 41.69, 32638},
		{"prague", 14.42, 50.08, 32633},
		{"sydney", 151.21, -33.87, 32756},
		{"equator is north", 0.5, 0, 32631},
		{"antimeridian west", -180, 10, 32601},
		{"antimeridian east", 180, 10, 32660},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EPSG(tt.lon, tt.lat))
		})
	}
}

func TestProjector_RoundTrip(t *testing.T) {
	p, err := ForLonLat(44.51, 40.18)
	require.NoError(t, err)
	assert.Equal(t, 38, p.Zone)
	assert.False(t, p.South)
	assert.Equal(t, "EPSG:32638", p.CRS())

	pt := geom.NewPointFlat(geom.XY, []float64{44.51, 40.18})
	fwd, err := p.Forward(pt)
	require.NoError(t, err)
	xyPt := fwd.(*geom.Point)
	// West of the 45°E central meridian, so easting is below the false easting.
	assert.InDelta(t, 458_300, xyPt.X(), 2_000)
	assert.InDelta(t, 4_447_800, xyPt.Y(), 5_000)

	back, err := p.Inverse(fwd)
	require.NoError(t, err)
	assert.InDelta(t, 44.51, back.(*geom.Point).X(), 1e-6)
	assert.InDelta(t, 40.18, back.(*geom.Point).Y(), 1e-6)

	lon, lat, err := p.InverseXY(xyPt.X(), xyPt.Y())
	require.NoError(t, err)
	assert.InDelta(t, 44.51, lon, 1e-6)
	assert.InDelta(t, 40.18, lat, 1e-6)
}

func TestProjector_South(t *testing.T) {
	p, err := ForLonLat(151.21, -33.87)
	require.NoError(t, err)
	assert.True(t, p.South)
	assert.Contains(t, p.Proj4(), "+south")

	fwd, err := p.Forward(geom.NewPointFlat(geom.XY, []float64{151.21, -33.87}))
	require.NoError(t, err)
	// Southern hemisphere northings carry the 10,000 km false northing.
	assert.Greater(t, fwd.(*geom.Point).Y(), 6_000_000.0)
}

func TestForBoundary(t *testing.T) {
	boundary := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{14.3, 50.0}, {14.6, 50.0}, {14.6, 50.2}, {14.3, 50.2}, {14.3, 50.0}},
	})
	p, err := ForBoundary(boundary)
	require.NoError(t, err)
	assert.Equal(t, 32633, p.EPSG)

	_, err = ForBoundary(geom.NewPolygon(geom.XY))
	assert.Error(t, err)
}

func TestForLonLat_Invalid(t *testing.T) {
	_, err := ForLonLat(10, 95)
	assert.Error(t, err)
}

func TestForEPSG(t *testing.T) {
	p, err := ForEPSG(32756)
	require.NoError(t, err)
	assert.Equal(t, 56, p.Zone)
	assert.True(t, p.South)
	assert.Equal(t, "EPSG:32756", p.CRS())

	for _, code := range []int{4326, 3857, 32600, 32661, 32700} {
		_, err := ForEPSG(code)
		assert.Error(t, err, "EPSG:%d", code)
	}
}

func TestTransform_Layouts(t *testing.T) {
	shift := func(x, y float64) (float64, float64, error) { return x + 1, y + 2, nil }

	poly := geom.NewPolygon(geom.XYZ).MustSetCoords([][]geom.Coord{
		{{0, 0, 5}, {4, 0, 5}, {4, 4, 5}, {0, 4, 5}, {0, 0, 5}},
		{{1, 1, 5}, {1, 2, 5}, {2, 2, 5}, {2, 1, 5}, {1, 1, 5}},
	})
	out, err := Transform(poly, shift)
	require.NoError(t, err)
	p := out.(*geom.Polygon)
	assert.Equal(t, geom.XY, p.Layout())
	assert.Equal(t, 2, p.NumLinearRings())
	assert.Equal(t, geom.Coord{1, 2}, p.Coords()[0][0])
	assert.Equal(t, geom.Coord{2, 3}, p.Coords()[1][0])

	mp := geom.NewMultiPolygon(geom.XYM).MustSetCoords([][][]geom.Coord{
		{{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 0, 1}}},
		{{{5, 5, 1}, {6, 5, 1}, {6, 6, 1}, {5, 5, 1}}},
	})
	out, err = Force2D(mp)
	require.NoError(t, err)
	assert.Equal(t, 2, out.(*geom.MultiPolygon).NumPolygons())
	assert.Equal(t, geom.XY, out.Layout())

	ls := geom.NewLineString(geom.XY).MustSetCoords([]geom.Coord{{0, 0}, {3, 3}})
	gc := geom.NewGeometryCollection().MustPush(ls, geom.NewPointFlat(geom.XY, []float64{1, 1}))
	out, err = Transform(gc, shift)
	require.NoError(t, err)
	assert.Equal(t, 2, out.(*geom.GeometryCollection).NumGeoms())

	out, err = Transform(nil, shift)
	require.NoError(t, err)
	assert.Nil(t, out)
}
