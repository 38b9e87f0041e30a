package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/export"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/pipeline"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Compute safe zones as polygons",
	Long:  "Builds the forbidden region from the obstacle categories and exports the safe zones inside the boundary, either as free-space polygons or as dissolved circles around safe grid points.",
	RunE:  runZones,
}

func init() {
	addRunFlags(zonesCmd)
	f := zonesCmd.Flags()
	f.String("method", "", "zone method: freespace or points (overrides zones.method)")
	f.Float64("min-area", 0, "minimum zone area in m² (overrides zones.min_area_m2)")
	f.Float64("radius", 0, "circle radius in metres for the points method")
	f.Bool("dissolve", true, "merge overlapping point circles")
	rootCmd.AddCommand(zonesCmd)
}

func runZones(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyRunFlags(cmd, cfg)
	f := cmd.Flags()
	if v, _ := f.GetString("method"); f.Changed("method") {
		cfg.Zones.Method = v
	}
	if v, _ := f.GetFloat64("min-area"); f.Changed("min-area") {
		cfg.Zones.MinAreaM2 = v
	}
	if v, _ := f.GetFloat64("radius"); f.Changed("radius") {
		cfg.Zones.RadiusM = v
	}
	if v, _ := f.GetBool("dissolve"); f.Changed("dissolve") {
		cfg.Zones.Dissolve = v
	}
	if model.ZoneMethod(cfg.Zones.Method) == model.MethodGrid {
		return eris.New("zones: the grid method produces points, use the points command")
	}

	out, err := runPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	formats, err := export.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return err
	}

	x := export.New(cfg.Output.Dir, cfg.Output.City, out.Projector)
	out.Files, err = x.WriteZones(out.Result.Run, out.Result.Zones, formats)
	if err != nil {
		return eris.Wrap(err, "zones: export")
	}
	zap.L().Info("zones exported",
		zap.String("dir", x.CityDir()),
		zap.Int("zones", len(out.Result.Zones)),
		zap.Int("files", len(out.Files)),
	)

	recordRun(ctx, cfg, out)
	return printSummary(os.Stdout, out)
}

// runSummary is printed to stdout after a run.
type runSummary struct {
	RunID  string                   `json:"run_id"`
	City   string                   `json:"city"`
	Method model.ZoneMethod         `json:"method"`
	CRS    string                   `json:"processing_crs"`
	Phases []model.PhaseResult      `json:"phases"`
	Stats  summaryStats             `json:"stats"`
	Files  map[export.Format]string `json:"files"`
}

type summaryStats struct {
	BoundaryAreaM2  float64                 `json:"boundary_area_m2"`
	Categories      int                     `json:"categories"`
	ForbiddenAreaM2 float64                 `json:"forbidden_area_m2"`
	Zones           int                     `json:"zones"`
	Discarded       int                     `json:"discarded"`
	ZoneAreaM2      float64                 `json:"zone_area_m2"`
	BySize          map[model.SizeClass]int `json:"by_size,omitempty"`
	SafePoints      int                     `json:"safe_points,omitempty"`
	KeptPoints      int                     `json:"kept_points,omitempty"`
}

func newSummary(out *runOutput) runSummary {
	r := out.Result
	return runSummary{
		RunID:  r.Run.ID,
		City:   r.Run.City,
		Method: r.Run.Method,
		CRS:    r.Run.CRS,
		Phases: r.Run.Phases,
		Stats:  newSummaryStats(r.Stats),
		Files:  out.Files,
	}
}

func newSummaryStats(s pipeline.Stats) summaryStats {
	return summaryStats{
		BoundaryAreaM2:  s.BoundaryAreaM2,
		Categories:      s.Categories,
		ForbiddenAreaM2: s.ForbiddenAreaM2,
		Zones:           s.Zones,
		Discarded:       s.Discarded,
		ZoneAreaM2:      s.ZoneAreaM2,
		BySize:          s.BySize,
		SafePoints:      s.SafePoints,
		KeptPoints:      s.KeptPoints,
	}
}

func printSummary(w io.Writer, out *runOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newSummary(out))
}
