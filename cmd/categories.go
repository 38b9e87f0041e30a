package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/safezones/internal/category"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the obstacle category table",
	Long:  "Prints the configured obstacle categories with their buffer distances, as a table, as a YAML file usable with categories.file, or as the tag query needed to fetch the obstacles.",
	RunE:  runCategories,
}

func init() {
	f := categoriesCmd.Flags()
	f.String("format", "table", "output format: table, yaml or tags")
	f.String("output", "", "output file path (default: stdout)")
	f.String("categories", "", "category table YAML file (overrides categories.file)")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	if v, _ := f.GetString("categories"); f.Changed("categories") {
		cfg.Categories.File = v
	}
	table, err := cfg.CategoryTable()
	if err != nil {
		return eris.Wrap(err, "categories: load table")
	}

	format, _ := f.GetString("format")
	outputPath, _ := f.GetString("output")

	var w io.Writer = os.Stdout
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "categories: create output file %s", outputPath)
		}
		defer file.Close() //nolint:errcheck
		w = file
	}

	switch format {
	case "table":
		return writeCategoryTable(w, table)
	case "yaml":
		data, err := table.Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return eris.Wrap(err, "categories: write yaml")
	case "tags":
		return writeQueryTags(w, table)
	default:
		return eris.Errorf("categories: unsupported format %q", format)
	}
}

func writeCategoryTable(w io.Writer, table *category.Table) error {
	if _, err := fmt.Fprintf(w, "%-28s %9s  %s\n", "Category", "Buffer m", "Standard"); err != nil {
		return eris.Wrap(err, "categories: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 60)); err != nil {
		return eris.Wrap(err, "categories: write table separator")
	}
	for _, c := range table.Categories() {
		if _, err := fmt.Fprintf(w, "%-28s %9.0f  %s\n", c.Name, c.BufferM, c.Standard); err != nil {
			return eris.Wrap(err, "categories: write table row")
		}
	}
	_, err := fmt.Fprintf(w, "\n%d categories, default buffer %.0f m\n", table.Len(), table.DefaultBuffer())
	return eris.Wrap(err, "categories: write table footer")
}

// writeQueryTags prints one line per tag key with the values to request,
// "*" standing for any value.
func writeQueryTags(w io.Writer, table *category.Table) error {
	tags := table.QueryTags()
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values := tags[k]
		if len(values) == 0 {
			values = []string{"*"}
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, strings.Join(values, ",")); err != nil {
			return eris.Wrap(err, "categories: write tags")
		}
	}
	return nil
}
