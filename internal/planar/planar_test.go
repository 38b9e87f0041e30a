package planar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/safezones/internal/resilience"
)

func square(minX, minY, size float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minX, minY}, {minX + size, minY}, {minX + size, minY + size}, {minX, minY + size}, {minX, minY},
	}})
}

func TestPolygonArea_WithHole(t *testing.T) {
	p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}},
	})
	assert.InDelta(t, 96.0, PolygonArea(p), 1e-9)
	assert.InDelta(t, 48.0, Perimeter(p), 1e-9)
	assert.Zero(t, PolygonArea(nil))
}

func TestPolygonArea_Clockwise(t *testing.T) {
	p := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {0, 5}, {5, 5}, {5, 0}, {0, 0}},
	})
	assert.InDelta(t, 25.0, PolygonArea(p), 1e-9)
}

func TestCentroid_Square(t *testing.T) {
	c := Centroid(square(0, 0, 10))
	assert.InDelta(t, 5.0, c.X(), 1e-9)
	assert.InDelta(t, 5.0, c.Y(), 1e-9)
}

func TestNormalize(t *testing.T) {
	a := square(0, 0, 1)
	b := square(5, 5, 1)

	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(a))
	require.NoError(t, mp.Push(b))

	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(
		geom.NewPointFlat(geom.XY, []float64{1, 1}),
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}),
		a,
		mp,
	))

	tests := []struct {
		name  string
		g     geom.T
		kind  Kind
		count int
	}{
		{"nil", nil, KindEmpty, 0},
		{"polygon", a, KindSingle, 1},
		{"empty polygon", geom.NewPolygon(geom.XY), KindEmpty, 0},
		{"multipolygon", mp, KindMulti, 2},
		{"single member multipolygon", geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
			{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		}), KindSingle, 1},
		{"mixed collection", gc, KindMulti, 3},
		{"line only", geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}), KindEmpty, 0},
		{"empty collection", geom.NewGeometryCollection(), KindEmpty, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Normalize(tt.g)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Len(t, s.Polygons, tt.count)
			assert.Equal(t, tt.count, s.MultiPolygon().NumPolygons())
		})
	}
}

func TestEngine_BufferPoint(t *testing.T) {
	e := NewEngine(0)
	assert.Equal(t, DefaultQuadSegs, e.QuadSegs())

	out, err := e.Buffer(geom.NewPointFlat(geom.XY, []float64{500, 500}), 100)
	require.NoError(t, err)
	p, ok := out.(*geom.Polygon)
	require.True(t, ok)
	assert.InEpsilon(t, math.Pi*100*100, PolygonArea(p), 0.002)
}

func TestEngine_BufferLine(t *testing.T) {
	e := NewEngine(16)
	line := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 100, 0})
	out, err := e.Buffer(line, 10)
	require.NoError(t, err)
	s := Normalize(out)
	require.Equal(t, KindSingle, s.Kind)
	// Rectangle 100x20 plus two half discs of radius 10.
	assert.InEpsilon(t, 2000+math.Pi*100, s.Area(), 0.002)
}

func TestEngine_BufferEmpty(t *testing.T) {
	_, err := NewEngine(0).Buffer(geom.NewPolygon(geom.XY), 10)
	require.Error(t, err)
	assert.True(t, resilience.IsGeometry(err))
}

func TestEngine_BufferMalformed(t *testing.T) {
	// Ring with too few points cannot be parsed by GEOS.
	bad := geom.NewPolygonFlat(geom.XY, []float64{0, 0, 1, 1}, []int{4})
	_, err := NewEngine(0).Buffer(bad, 10)
	require.Error(t, err)
	assert.True(t, resilience.IsGeometry(err))
}

func TestEngine_Union(t *testing.T) {
	e := NewEngine(0)

	s, err := e.Union(nil)
	require.NoError(t, err)
	assert.Equal(t, KindEmpty, s.Kind)

	// Two overlapping squares merge; a distant one stays separate.
	s, err = e.Union([]*geom.Polygon{square(0, 0, 10), square(5, 0, 10), square(100, 100, 10)})
	require.NoError(t, err)
	assert.Equal(t, KindMulti, s.Kind)
	assert.Len(t, s.Polygons, 2)
	assert.InDelta(t, 150+100, s.Area(), 1e-6)
}

func TestEngine_UnionIdempotent(t *testing.T) {
	e := NewEngine(0)
	in := []*geom.Polygon{square(0, 0, 10), square(5, 5, 10)}

	first, err := e.Union(in)
	require.NoError(t, err)
	second, err := e.Union(first.Polygons)
	require.NoError(t, err)

	assert.Equal(t, first.Kind, second.Kind)
	assert.InDelta(t, first.Area(), second.Area(), 1e-6)
}

func TestEngine_Difference(t *testing.T) {
	e := NewEngine(0)

	s, err := e.Difference(square(0, 0, 10), square(5, -5, 20))
	require.NoError(t, err)
	assert.Equal(t, KindSingle, s.Kind)
	assert.InDelta(t, 50.0, s.Area(), 1e-6)

	// A bar through the middle splits the square in two.
	s, err = e.Difference(square(0, 0, 10), geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{4, -1}, {6, -1}, {6, 11}, {4, 11}, {4, -1}},
	}))
	require.NoError(t, err)
	assert.Equal(t, KindMulti, s.Kind)
	assert.Len(t, s.Polygons, 2)

	s, err = e.Difference(square(0, 0, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, KindSingle, s.Kind)

	s, err = e.Difference(square(0, 0, 10), square(-1, -1, 12))
	require.NoError(t, err)
	assert.Equal(t, KindEmpty, s.Kind)
}

func TestEngine_RepairBowtie(t *testing.T) {
	e := NewEngine(0)
	bowtie := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{
		{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}},
	})
	valid, err := e.IsValid(bowtie)
	require.NoError(t, err)
	assert.False(t, valid)

	fixed, err := e.Repair(bowtie)
	require.NoError(t, err)
	valid, err = e.IsValid(fixed)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestPrepared_Predicates(t *testing.T) {
	e := NewEngine(0)
	p, err := e.Prepare(square(0, 0, 10))
	require.NoError(t, err)

	err = Guard("test", func() error {
		assert.True(t, p.ContainsXY(5, 5))
		assert.False(t, p.ContainsXY(0, 5))
		assert.True(t, p.IntersectsXY(0, 5))
		assert.False(t, p.IntersectsXY(11, 5))
		return nil
	})
	require.NoError(t, err)
}

func TestGuard_RecoversPanic(t *testing.T) {
	err := Guard("union", func() error { panic("TopologyException: side location conflict") })
	require.Error(t, err)
	assert.True(t, resilience.IsGeometry(err))
	assert.Contains(t, err.Error(), "side location conflict")
}

func TestLargestPolygon(t *testing.T) {
	s := Shape{Kind: KindMulti, Polygons: []*geom.Polygon{square(0, 0, 1), square(10, 10, 5), square(20, 20, 2)}}
	assert.InDelta(t, 25.0, PolygonArea(LargestPolygon(s)), 1e-9)
	assert.Nil(t, LargestPolygon(Shape{}))
}
