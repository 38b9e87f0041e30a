package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Long:  "Lists the runs recorded in the run history configured by store.path, newest first.",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one recorded run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a run from the history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	f := runsCmd.Flags()
	f.String("status", "", "filter by run status (e.g., complete)")
	f.String("city", "", "filter by city name")
	f.String("method", "", "filter by zone method")
	f.Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	f := cmd.Flags()
	status, _ := f.GetString("status")
	city, _ := f.GetString("city")
	method, _ := f.GetString("method")
	limit, _ := f.GetInt("limit")

	records, err := st.ListRuns(ctx, store.RunFilter{
		Status: model.RunStatus(status),
		City:   city,
		Method: model.ZoneMethod(method),
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return writeRunsTable(os.Stdout, records)
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	rec, err := st.GetRun(ctx, args[0])
	if err != nil {
		return eris.Wrapf(err, "runs: show %s", args[0])
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.DeleteRun(ctx, args[0]); err != nil {
		return eris.Wrapf(err, "runs: delete %s", args[0])
	}
	zap.L().Info("run deleted", zap.String("run_id", args[0]))
	return nil
}

func writeRunsTable(w io.Writer, records []store.Record) error {
	header := fmt.Sprintf("%-36s %-24s %-10s %-11s %-10s %s\n",
		"Run ID", "City", "Method", "Status", "CRS", "Created")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "runs: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 115)); err != nil {
		return eris.Wrap(err, "runs: write table separator")
	}

	for _, r := range records {
		city := r.Run.City
		if len(city) > 24 {
			city = city[:21] + "..."
		}
		line := fmt.Sprintf("%-36s %-24s %-10s %-11s %-10s %s\n",
			r.Run.ID, city, r.Run.Method, r.Run.Status, r.Run.CRS,
			r.Run.CreatedAt.UTC().Format("2006-01-02 15:04"))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "runs: write table row")
		}
	}
	return nil
}
