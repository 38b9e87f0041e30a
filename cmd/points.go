package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/export"
	"github.com/sells-group/safezones/internal/model"
)

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Sample safe launch points on a regular grid",
	Long:  "Generates a grid over the boundary, keeps the points outside the forbidden region and exports them, optionally thinned to a maximum count.",
	RunE:  runPoints,
}

func init() {
	addRunFlags(pointsCmd)
	rootCmd.AddCommand(pointsCmd)
}

func runPoints(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyRunFlags(cmd, cfg)
	cfg.Zones.Method = string(model.MethodGrid)

	out, err := runPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	formats, err := export.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return err
	}

	x := export.New(cfg.Output.Dir, cfg.Output.City, out.Projector)
	out.Files, err = x.WritePoints(out.Result.Run, out.Result.Points, formats)
	if err != nil {
		return eris.Wrap(err, "points: export")
	}
	zap.L().Info("points exported",
		zap.String("dir", x.CityDir()),
		zap.Int("points", len(out.Result.Points)),
		zap.Int("files", len(out.Files)),
	)

	recordRun(ctx, cfg, out)
	return printSummary(os.Stdout, out)
}
