package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/export"
)

var (
	exportSel    selectionFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a comparison as JSON or an xlsx workbook",
	Long: `Run a comparison and write it as a JSON document (default) or as an xlsx
workbook with Summary, Carries, Top Differences and Cumulative sheets.

Example:
  rushmetrics export --season 2022 --team-two Michigan --format xlsx --out psu-mich.xlsx`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportSel.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json or xlsx (default from --out extension, else json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(exportFormat)
	if format == "" {
		format = "json"
		if strings.HasSuffix(strings.ToLower(exportOut), ".xlsx") {
			format = "xlsx"
		}
	}
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unknown format %q (want json or xlsx)", exportFormat)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	sel, top, err := exportSel.resolve(ctx, a.sess)
	if err != nil {
		return err
	}
	c, err := a.sess.Compare(ctx, sel, top)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error { return export.WriteJSON(w, c) }
	if format == "xlsx" {
		write = func(w io.Writer) error { return export.WriteXLSX(w, c) }
	}

	if exportOut == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOut, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}
