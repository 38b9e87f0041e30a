package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/resilience"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "geographic", cfg.Input.Frame)
	assert.Equal(t, 30.0, cfg.Categories.DefaultBufferM)
	assert.Equal(t, "freespace", cfg.Zones.Method)
	assert.Equal(t, 2000.0, cfg.Zones.MinAreaM2)
	assert.Equal(t, 15.0, cfg.Zones.RadiusM)
	assert.True(t, cfg.Zones.Dissolve)
	assert.Equal(t, 10.0, cfg.Grid.StepM)
	assert.Equal(t, 0, cfg.Grid.MaxPoints)
	assert.Equal(t, "uniform", cfg.Grid.Thinning)
	assert.Equal(t, uint64(42), cfg.Grid.Seed)
	assert.Equal(t, 50000, cfg.Grid.ChunkSize)
	assert.Equal(t, 100000, cfg.Grid.ChunkThreshold)
	assert.Equal(t, 16, cfg.Geometry.QuadSegs)
	assert.Equal(t, "data", cfg.Output.Dir)
	assert.Equal(t, "Unknown City", cfg.Output.City)
	assert.Equal(t, []string{"geojson", "csv", "kml", "kmz"}, cfg.Output.Formats)
	assert.Empty(t, cfg.Store.Path)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
input:
  boundary: yerevan_boundary.geojson
  obstacles:
    - yerevan_obstacles.geojson
  obstacles_shp:
    schools: schools.shp
categories:
  overrides:
    schools: 150
zones:
  method: points
  radius_m: 20
  dissolve: false
grid:
  step_m: 5
  max_points: 1000
  thinning: random
  seed: 7
output:
  city: Yerevan, Armenia
  formats: [geojson, xlsx]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "yerevan_boundary.geojson", cfg.Input.Boundary)
	assert.Equal(t, []string{"yerevan_obstacles.geojson"}, cfg.Input.Obstacles)
	assert.Equal(t, map[string]string{"schools": "schools.shp"}, cfg.Input.ObstaclesShp)
	assert.Equal(t, map[string]float64{"schools": 150}, cfg.Categories.Overrides)
	assert.Equal(t, "points", cfg.Zones.Method)
	assert.Equal(t, 20.0, cfg.Zones.RadiusM)
	assert.False(t, cfg.Zones.Dissolve)
	assert.Equal(t, 5.0, cfg.Grid.StepM)
	assert.Equal(t, 1000, cfg.Grid.MaxPoints)
	assert.Equal(t, "random", cfg.Grid.Thinning)
	assert.Equal(t, uint64(7), cfg.Grid.Seed)
	assert.Equal(t, "Yerevan, Armenia", cfg.Output.City)
	assert.Equal(t, []string{"geojson", "xlsx"}, cfg.Output.Formats)

	// Defaults still apply to unset keys
	assert.Equal(t, 2000.0, cfg.Zones.MinAreaM2)
	assert.Equal(t, "data", cfg.Output.Dir)

	require.NoError(t, cfg.Validate())

	src := cfg.Sources()
	assert.Equal(t, "yerevan_boundary.geojson", src.Boundary)
	assert.Equal(t, model.FrameGeographic, src.Frame)
	assert.Equal(t, "schools.shp", src.Layers["schools"])

	opts := cfg.PipelineOptions()
	assert.Equal(t, model.MethodPoints, opts.Method)
	assert.Equal(t, 1000, opts.MaxPoints)
	assert.Equal(t, uint64(7), opts.Seed)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
zones:
  method: points
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SAFEZONES_ZONES_METHOD", "grid")
	t.Setenv("SAFEZONES_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "grid", cfg.Zones.Method)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SAFEZONES_ZONES_MIN_AREA_M2", "500")
	t.Setenv("SAFEZONES_GRID_WORKERS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Zones.MinAreaM2)
	assert.Equal(t, 3, cfg.Grid.Workers)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("zones: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", Format: "json"},
		Input:      InputConfig{Frame: "geographic"},
		Categories: CategoriesConfig{DefaultBufferM: 30},
		Zones:      ZonesConfig{Method: "freespace", MinAreaM2: 2000, RadiusM: 15, Dissolve: true},
		Grid: GridConfig{
			StepM:          10,
			Thinning:       "uniform",
			Seed:           42,
			ChunkSize:      50000,
			ChunkThreshold: 100000,
		},
		Geometry: GeometryConfig{QuadSegs: 16},
		Output:   OutputConfig{Dir: "data", City: "Unknown City", Formats: []string{"geojson"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"projected with srid", func(c *Config) { c.Input.Frame = "projected"; c.Input.SRID = 32638 }, ""},
		{"projected without srid", func(c *Config) { c.Input.Frame = "projected" }, "input.srid"},
		{"unknown frame", func(c *Config) { c.Input.Frame = "mercator" }, "input.frame"},
		{"zero default buffer", func(c *Config) { c.Categories.DefaultBufferM = 0 }, "categories.default_buffer_m"},
		{"negative override", func(c *Config) { c.Categories.Overrides = map[string]float64{"schools": -1} }, "categories.overrides.schools"},
		{"unknown format", func(c *Config) { c.Output.Formats = []string{"gpx"} }, "output.formats"},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"unknown method", func(c *Config) { c.Zones.Method = "hexagons" }, "zones.method"},
		{"zero min area", func(c *Config) { c.Zones.MinAreaM2 = 0 }, "zones.min_area_m2"},
		{"negative step", func(c *Config) { c.Grid.StepM = -10 }, "grid.step_m"},
		{"unknown thinning", func(c *Config) { c.Grid.MaxPoints = 10; c.Grid.Thinning = "stratified" }, "grid.thinning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, resilience.IsConfig(err))
			var ce *resilience.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCategoryTable(t *testing.T) {
	cfg := validDefaults()
	cfg.Categories.Overrides = map[string]float64{"schools": 150}

	table, err := cfg.CategoryTable()
	require.NoError(t, err)
	assert.Equal(t, 41, table.Len())
	assert.Equal(t, 150.0, table.BufferFor("schools"))
	// Overrides replace the table's distances; unlisted categories fall back
	// to the default.
	assert.Equal(t, 30.0, table.BufferFor("fuel_stations"))
	assert.Equal(t, 30.0, table.BufferFor("not_a_category"))
}

func TestCategoryTable_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	yaml := `
default_buffer_m: 25
categories:
  - name: schools
    buffer_m: 100
    rules:
      - key: amenity
        match: one_of
        values: [school]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg := validDefaults()
	cfg.Categories.File = path

	table, err := cfg.CategoryTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"schools"}, table.Names())
	assert.Equal(t, 25.0, table.DefaultBuffer())
}

func TestCategoryTable_NonPositiveOverride(t *testing.T) {
	cfg := validDefaults()
	cfg.Categories.Overrides = map[string]float64{"schools": 0}

	_, err := cfg.CategoryTable()
	assert.Error(t, err)
}
