package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/config"
	"github.com/sells-group/safezones/internal/export"
	"github.com/sells-group/safezones/internal/loader"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/pipeline"
	"github.com/sells-group/safezones/internal/projection"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/store"
)

// addRunFlags registers the flags shared by the zones and points commands.
// Every flag overrides the matching config key only when set.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("boundary", "", "boundary file, .geojson or .shp (overrides input.boundary)")
	f.StringSlice("obstacles", nil, "obstacle files with tagged features (overrides input.obstacles)")
	f.String("frame", "", "input reference frame: geographic or projected")
	f.Int("srid", 0, "UTM EPSG code of projected input")
	f.String("categories", "", "category table YAML file (overrides categories.file)")
	f.String("city", "", "city name used in output metadata and directory")
	f.String("out", "", "output root directory (overrides output.dir)")
	f.String("formats", "", "comma-separated output formats (e.g., geojson,csv,kml)")
	f.Float64("step", 0, "grid spacing in metres")
	f.Int("max-points", 0, "maximum number of safe points to keep (0=all)")
	f.String("thinning", "", "thinning method: uniform or random")
	f.Uint64("seed", 0, "seed for random thinning")
	f.Int("workers", 0, "parallel workers for grid filtering (0=NumCPU)")
}

// applyRunFlags copies explicitly set flags onto c.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if v, _ := f.GetString("boundary"); f.Changed("boundary") {
		c.Input.Boundary = v
	}
	if v, _ := f.GetStringSlice("obstacles"); f.Changed("obstacles") {
		c.Input.Obstacles = v
	}
	if v, _ := f.GetString("frame"); f.Changed("frame") {
		c.Input.Frame = v
	}
	if v, _ := f.GetInt("srid"); f.Changed("srid") {
		c.Input.SRID = v
	}
	if v, _ := f.GetString("categories"); f.Changed("categories") {
		c.Categories.File = v
	}
	if v, _ := f.GetString("city"); f.Changed("city") {
		c.Output.City = v
	}
	if v, _ := f.GetString("out"); f.Changed("out") {
		c.Output.Dir = v
	}
	if v, _ := f.GetString("formats"); f.Changed("formats") {
		c.Output.Formats = splitAndTrim(v)
	}
	if v, _ := f.GetFloat64("step"); f.Changed("step") {
		c.Grid.StepM = v
	}
	if v, _ := f.GetInt("max-points"); f.Changed("max-points") {
		c.Grid.MaxPoints = v
	}
	if v, _ := f.GetString("thinning"); f.Changed("thinning") {
		c.Grid.Thinning = v
	}
	if v, _ := f.GetUint64("seed"); f.Changed("seed") {
		c.Grid.Seed = v
	}
	if v, _ := f.GetInt("workers"); f.Changed("workers") {
		c.Grid.Workers = v
	}
}

// runOutput is what a command run produced.
type runOutput struct {
	Result    *pipeline.Result
	Projector *projection.Projector
	Files     map[export.Format]string
}

// runPipeline loads the configured inputs, projects them into a UTM frame
// and runs the pipeline.
func runPipeline(ctx context.Context, c *config.Config) (*runOutput, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Input.Boundary == "" {
		return nil, eris.New("boundary file is required (--boundary or SAFEZONES_INPUT_BOUNDARY)")
	}

	table, err := c.CategoryTable()
	if err != nil {
		return nil, eris.Wrap(err, "load category table")
	}

	ds, stats, err := loader.Load(c.Sources(), table)
	if err != nil {
		return nil, eris.Wrap(err, "load inputs")
	}
	zap.L().Info("inputs loaded",
		zap.Int("features", stats.Features),
		zap.Int("assigned", stats.Assigned),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("no_geometry", stats.NoGeometry),
		zap.Int("categories", len(ds.Obstacles)),
	)

	projector, err := pickProjector(c, ds)
	if err != nil {
		return nil, err
	}
	projected, err := ds.Project(projector)
	if err != nil {
		return nil, eris.Wrap(err, "project inputs")
	}

	p, err := pipeline.New(c.PipelineOptions())
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, pipeline.Input{
		City:       c.Output.City,
		CRS:        projector.CRS(),
		Boundary:   model.Projected(projected.Boundary),
		Categories: projected.Categories(table),
	})
	if err != nil {
		return nil, explainRunError(err)
	}
	zap.L().Info("run complete", append(res.Stats.Fields(), zap.String("run_id", res.Run.ID))...)

	return &runOutput{Result: res, Projector: projector}, nil
}

// explainRunError adds an input hint to geometry failures that survived the
// repair retry.
func explainRunError(err error) error {
	if resilience.IsFatalGeometry(err) {
		return eris.Wrap(err, "geometry could not be repaired, check the inputs for self-intersecting or degenerate shapes")
	}
	return err
}

// pickProjector selects the UTM zone of the boundary centroid for
// geographic input and the configured SRID for projected input.
func pickProjector(c *config.Config, ds *loader.Dataset) (*projection.Projector, error) {
	if ds.Frame == model.FrameProjected {
		p, err := projection.ForEPSG(c.Input.SRID)
		if err != nil {
			return nil, eris.Wrap(err, "input.srid")
		}
		return p, nil
	}
	p, err := projection.ForBoundary(ds.Boundary)
	if err != nil {
		return nil, eris.Wrap(err, "pick projection")
	}
	zap.L().Info("projection selected", zap.String("crs", p.CRS()), zap.Int("utm_zone", p.Zone))
	return p, nil
}

// openStore opens the run history configured by store.path.
func openStore(ctx context.Context, c *config.Config) (*store.SQLiteStore, error) {
	if c.Store.Path == "" {
		return nil, eris.New("run history is disabled (set store.path or SAFEZONES_STORE_PATH)")
	}
	st, err := store.NewSQLite(c.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// recordRun saves out to the run history when one is configured. A failure
// to record is logged and does not fail the command.
func recordRun(ctx context.Context, c *config.Config, out *runOutput) {
	if c.Store.Path == "" {
		return
	}
	st, err := openStore(ctx, c)
	if err != nil {
		zap.L().Warn("run history unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	files := make(map[string]string, len(out.Files))
	for f, path := range out.Files {
		files[string(f)] = path
	}
	if err := st.SaveRun(ctx, out.Result.Run, newSummaryStats(out.Result.Stats), files); err != nil {
		zap.L().Warn("failed to record run", zap.String("run_id", out.Result.Run.ID), zap.Error(err))
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
