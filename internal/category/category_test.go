package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safezones/internal/resilience"
)

func TestDefaults_Valid(t *testing.T) {
	tbl := MustDefault()
	assert.Equal(t, 41, tbl.Len())

	for _, c := range tbl.Categories() {
		assert.GreaterOrEqual(t, c.BufferM, 20.0, c.Name)
		assert.LessOrEqual(t, c.BufferM, 1500.0, c.Name)
		assert.NotEmpty(t, c.Rules, c.Name)
		assert.NotEmpty(t, c.Description, c.Name)
	}
}

func TestTable_BufferFor(t *testing.T) {
	tbl := MustDefault()

	tests := []struct {
		name string
		want float64
	}{
		{"fuel_stations", 100},
		{"airports", 1500},
		{"helipads", 500},
		{"waterways", 20},
		{"buildings", 30},
		{"unknown_category", DefaultBufferM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.BufferFor(tt.name))
		})
	}
}

func TestTable_WithOverrides(t *testing.T) {
	base := MustDefault()

	tbl, err := base.WithOverrides(map[string]float64{
		"airports":          2000,
		"fireworks_storage": 250,
	})
	require.NoError(t, err)

	assert.Equal(t, 2000.0, tbl.BufferFor("airports"))
	// Categories absent from the override fall back to the default distance.
	assert.Equal(t, 30.0, tbl.BufferFor("fuel_stations"))
	assert.Equal(t, 250.0, tbl.BufferFor("fireworks_storage"))
	assert.Equal(t, base.Len()+1, tbl.Len())

	// The source table is untouched.
	assert.Equal(t, 1500.0, base.BufferFor("airports"))
	assert.Equal(t, 100.0, base.BufferFor("fuel_stations"))
}

func TestTable_WithOverrides_Empty(t *testing.T) {
	base := MustDefault()
	tbl, err := base.WithOverrides(nil)
	require.NoError(t, err)
	assert.Same(t, base, tbl)
}

func TestTable_WithOverrides_RejectsNonPositive(t *testing.T) {
	_, err := MustDefault().WithOverrides(map[string]float64{"airports": 0})
	require.Error(t, err)
	assert.True(t, resilience.IsConfig(err))
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"empty name", []Category{{BufferM: 10}}},
		{"duplicate", []Category{{Name: "a", BufferM: 10}, {Name: "a", BufferM: 20}}},
		{"negative buffer", []Category{{Name: "a", BufferM: -1}}},
		{"zero buffer", []Category{{Name: "a", BufferM: 0}}},
		{"bad rule", []Category{{Name: "a", BufferM: 10, Rules: []Rule{{Key: "k", Kind: MatchExact}}}}},
		{"unknown kind", []Category{{Name: "a", BufferM: 10, Rules: []Rule{{Key: "k", Kind: "regex"}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.cats, 0)
			require.Error(t, err)
			assert.True(t, resilience.IsConfig(err))
		})
	}
}

func TestNewTable_DefaultBuffer(t *testing.T) {
	tbl, err := NewTable([]Category{{Name: "a", BufferM: 5}}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBufferM, tbl.DefaultBuffer())

	tbl, err = NewTable(nil, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, tbl.BufferFor("anything"))
}

func TestTable_Match(t *testing.T) {
	tbl := MustDefault()

	tests := []struct {
		name string
		tags map[string]string
		want []string
	}{
		{"fuel", map[string]string{"amenity": "fuel"}, []string{"fuel_stations"}},
		{"runway", map[string]string{"aeroway": "runway"}, []string{"airports"}},
		{"any waterway", map[string]string{"waterway": "ditch"}, []string{"waterways"}},
		{"building flag", map[string]string{"building": "yes"}, []string{"buildings"}},
		{"building negated", map[string]string{"building": "no"}, nil},
		{
			"school building",
			map[string]string{"amenity": "school", "building": "school"},
			[]string{"schools", "buildings"},
		},
		{"railway landuse", map[string]string{"landuse": "railway"}, []string{"railways"}},
		{"any shop", map[string]string{"shop": "bakery"}, []string{"commercial_areas"}},
		{"unmatched", map[string]string{"amenity": "bench"}, nil},
		{"no tags", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.Match(tt.tags))
		})
	}
}

func TestTable_QueryTags(t *testing.T) {
	q := MustDefault().QueryTags()

	assert.Nil(t, q["waterway"])
	assert.Contains(t, q, "waterway")
	assert.Nil(t, q["building"])
	assert.Nil(t, q["railway"])
	assert.Nil(t, q["shop"])

	assert.Contains(t, q["amenity"], "fuel")
	assert.Contains(t, q["amenity"], "hospital")
	assert.IsIncreasing(t, q["amenity"])
	assert.Equal(t, []string{"aerodrome", "helipad", "runway", "taxiway"}, q["aeroway"])
	assert.Contains(t, q["landuse"], "railway")
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
default_buffer_m: 25
categories:
  - name: fuel_stations
    buffer_m: 120
    rules:
      - key: amenity
        match: exact
        values: [fuel]
  - name: waterways
    buffer_m: 15
    rules:
      - key: waterway
        match: wildcard
`)
	tbl, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 120.0, tbl.BufferFor("fuel_stations"))
	assert.Equal(t, 25.0, tbl.BufferFor("parks"))
	assert.Equal(t, []string{"waterways"}, tbl.Match(map[string]string{"waterway": "river"}))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("categories: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("default_buffer_m: 10\n"))
	assert.Error(t, err)
}

func TestLoadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")

	data, err := MustDefault().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, MustDefault().Names(), tbl.Names())
	assert.Equal(t, 1500.0, tbl.BufferFor("airports"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
