package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/chart"
	"github.com/pable/go-rushing-metrics/internal/model"
	"github.com/pable/go-rushing-metrics/internal/report"
)

var (
	compareSel      selectionFlags
	compareChartDir string
	compareTables   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two teams' carry distributions in one season",
	Long: `Print carry totals and the top bin differences for two teams in a season.
With --tables, also print per-bin shares and cumulative percentages.
With --chart-dir, write the four comparison charts as PNG files.

Example:
  rushmetrics compare --season 2022 --team-one "Penn State" --team-two "Ohio State" --top 5`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	compareSel.register(compareCmd)
	compareCmd.Flags().StringVar(&compareChartDir, "chart-dir", "", "write PNG charts into this directory")
	compareCmd.Flags().BoolVar(&compareTables, "tables", false, "also print share and cumulative tables")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	sel, top, err := compareSel.resolve(ctx, a.sess)
	if err != nil {
		return err
	}
	c, err := a.sess.Compare(ctx, sel, top)
	if err != nil {
		return err
	}

	printComparison(os.Stdout, c, compareTables)

	if compareChartDir != "" {
		return writeCharts(compareChartDir, c)
	}
	return nil
}

func printComparison(w io.Writer, c model.Comparison, tables bool) {
	report.PrintSelection(w, c.Selection)
	report.PrintCarryMetrics(w, c)
	fmt.Fprintln(w)
	report.PrintTopDifferences(w, c.TopDifferences)
	if tables && !c.Empty() {
		fmt.Fprintln(w)
		report.PrintShareTable(w, c)
		fmt.Fprintln(w)
		report.PrintCumulativeTable(w, c)
	}
}

var chartFiles = []struct {
	name   string
	render func(io.Writer, model.Comparison) error
}{
	{"shares.png", chart.Shares},
	{"differences.png", chart.Differences},
	{"cumulative.png", chart.Cumulative},
	{"cumulative-difference.png", chart.CumulativeDifference},
}

// writeCharts renders every chart into dir. Charts with nothing to plot are
// skipped with a warning.
func writeCharts(dir string, c model.Comparison) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	for _, cf := range chartFiles {
		var buf bytes.Buffer
		if err := cf.render(&buf, c); err != nil {
			if errors.Is(err, chart.ErrNoData) {
				fmt.Fprintf(os.Stderr, "skip %s: no data\n", cf.name)
				continue
			}
			return err
		}
		path := filepath.Join(dir, cf.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}
	return nil
}
