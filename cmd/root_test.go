package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/safezones/internal/category"
	"github.com/sells-group/safezones/internal/config"
	"github.com/sells-group/safezones/internal/export"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/store"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"zones", "points", "categories", "runs"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "safezones", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestZonesCommand_Flags(t *testing.T) {
	for _, name := range []string{"boundary", "obstacles", "city", "out", "formats", "method", "min-area", "radius", "dissolve"} {
		assert.NotNil(t, zonesCmd.Flags().Lookup(name), "zones command should have --%s flag", name)
	}
	assert.Equal(t, "true", zonesCmd.Flags().Lookup("dissolve").DefValue)
}

func TestPointsCommand_Flags(t *testing.T) {
	for _, name := range []string{"boundary", "step", "max-points", "thinning", "seed", "workers"} {
		assert.NotNil(t, pointsCmd.Flags().Lookup(name), "points command should have --%s flag", name)
	}
	assert.Nil(t, pointsCmd.Flags().Lookup("method"))
}

func TestCategoriesCommand_Flags(t *testing.T) {
	flag := categoriesCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"geojson", "csv"}, splitAndTrim(" geojson, ,csv "))
	assert.Empty(t, splitAndTrim(""))
}

func TestApplyRunFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{
		"--boundary", "b.geojson",
		"--obstacles", "a.geojson,c.shp",
		"--formats", "geojson, xlsx",
		"--max-points", "500",
		"--seed", "9",
	}))

	c := testConfig(t)
	c.Output.City = "Prague"
	applyRunFlags(cmd, c)

	assert.Equal(t, "b.geojson", c.Input.Boundary)
	assert.Equal(t, []string{"a.geojson", "c.shp"}, c.Input.Obstacles)
	assert.Equal(t, []string{"geojson", "xlsx"}, c.Output.Formats)
	assert.Equal(t, 500, c.Grid.MaxPoints)
	assert.Equal(t, uint64(9), c.Grid.Seed)

	// Unset flags leave config untouched
	assert.Equal(t, "Prague", c.Output.City)
	assert.Equal(t, 10.0, c.Grid.StepM)
}

// testConfig loads the defaults from an empty working directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	c, err := config.Load()
	require.NoError(t, err)
	return c
}

// A ~850 m × 1100 m box in Yerevan with one fuel station in the middle.
const (
	boundaryGeoJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"test"},
"geometry":{"type":"Polygon","coordinates":[[[44.505,40.175],[44.515,40.175],[44.515,40.185],[44.505,40.185],[44.505,40.175]]]}}]}`
	obstaclesGeoJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"amenity":"fuel"},"geometry":{"type":"Point","coordinates":[44.51,40.18]}},
{"type":"Feature","properties":{"shop":"bakery"},"geometry":{"type":"Point","coordinates":[44.506,40.176]}}]}`
)

func writeInputs(t *testing.T, c *config.Config) {
	t.Helper()
	dir := t.TempDir()
	c.Input.Boundary = filepath.Join(dir, "boundary.geojson")
	c.Input.Obstacles = []string{filepath.Join(dir, "obstacles.geojson")}
	require.NoError(t, os.WriteFile(c.Input.Boundary, []byte(boundaryGeoJSON), 0644))
	require.NoError(t, os.WriteFile(c.Input.Obstacles[0], []byte(obstaclesGeoJSON), 0644))
	c.Output.Dir = filepath.Join(dir, "out")
	c.Output.City = "Yerevan, Armenia"
}

func TestRunPipeline_FreeSpace(t *testing.T) {
	c := testConfig(t)
	writeInputs(t, c)

	out, err := runPipeline(context.Background(), c)
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, "EPSG:32638", res.Run.CRS)
	assert.Equal(t, model.RunStatusComplete, res.Run.Status)
	assert.Equal(t, 1, res.Stats.Categories)
	require.Len(t, res.Zones, 1)
	assert.InDelta(t, 31_416, res.Stats.ForbiddenAreaM2, 200)
	assert.Equal(t, model.SizeVeryLarge, res.Zones[0].SizeClass)

	x := export.New(c.Output.Dir, c.Output.City, out.Projector)
	out.Files, err = x.WriteZones(res.Run, res.Zones, export.DefaultFormats)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, out))
	var summary map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, res.Run.ID, summary["run_id"])
	assert.Equal(t, "freespace", summary["method"])
	files := summary["files"].(map[string]any)
	assert.Len(t, files, len(export.DefaultFormats))
	assert.FileExists(t, files["geojson"].(string))
}

func TestRunPipeline_Grid(t *testing.T) {
	c := testConfig(t)
	writeInputs(t, c)
	c.Zones.Method = string(model.MethodGrid)
	c.Grid.StepM = 50
	c.Grid.MaxPoints = 100

	out, err := runPipeline(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, out.Result.Points, 100)
	assert.Greater(t, out.Result.Stats.SafePoints, 100)
	assert.Empty(t, out.Result.Zones)
}

func TestRunPipeline_ConfigErrors(t *testing.T) {
	c := testConfig(t)
	_, err := runPipeline(context.Background(), c)
	assert.ErrorContains(t, err, "boundary file is required")

	c.Zones.MinAreaM2 = -1
	_, err = runPipeline(context.Background(), c)
	assert.True(t, resilience.IsConfig(err))
}

func TestExplainRunError(t *testing.T) {
	fatal := &resilience.GeometryError{Op: "union", Repaired: true, Err: errors.New("topology exception")}
	err := explainRunError(fatal)
	assert.ErrorContains(t, err, "check the inputs")
	assert.True(t, resilience.IsFatalGeometry(err))

	first := resilience.NewGeometryError("union", errors.New("topology exception"))
	assert.Same(t, first, explainRunError(first))

	cfgErr := resilience.ConfigErrorf("grid.step_m", "must be positive")
	assert.Equal(t, cfgErr, explainRunError(cfgErr))
}

func TestWriteCategoryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCategoryTable(&buf, category.MustDefault()))
	out := buf.String()
	assert.Contains(t, out, "fuel_stations")
	assert.Contains(t, out, "41 categories, default buffer 30 m")
}

func TestWriteQueryTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeQueryTags(&buf, category.MustDefault()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Contains(t, lines, "waterway=*")
	assert.Contains(t, lines, "building=*")
	for _, l := range lines {
		if strings.HasPrefix(l, "amenity=") {
			assert.Contains(t, l, "fuel")
			assert.Contains(t, l, "school")
		}
	}
}

func TestRecordRun(t *testing.T) {
	c := testConfig(t)
	writeInputs(t, c)
	c.Store.Path = filepath.Join(t.TempDir(), "runs.db")

	ctx := context.Background()
	out, err := runPipeline(ctx, c)
	require.NoError(t, err)
	out.Files = map[export.Format]string{export.FormatGeoJSON: "safe_zones.geojson"}
	recordRun(ctx, c, out)

	st, err := openStore(ctx, c)
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.GetRun(ctx, out.Result.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yerevan, Armenia", rec.Run.City)
	assert.Equal(t, model.RunStatusComplete, rec.Run.Status)
	assert.Equal(t, "safe_zones.geojson", rec.Files["geojson"])

	var stats summaryStats
	require.NoError(t, json.Unmarshal(rec.Stats, &stats))
	assert.Equal(t, 1, stats.Zones)

	var buf bytes.Buffer
	require.NoError(t, writeRunsTable(&buf, []store.Record{*rec}))
	assert.Contains(t, buf.String(), out.Result.Run.ID)
	assert.Contains(t, buf.String(), "freespace")
}

func TestOpenStore_Disabled(t *testing.T) {
	c := testConfig(t)
	_, err := openStore(context.Background(), c)
	assert.ErrorContains(t, err, "run history is disabled")
}
