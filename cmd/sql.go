package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/report"
	"github.com/pable/go-rushing-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the snapshot database",
	Long: `Run an arbitrary SQL query against the snapshot database and print results as a table.

Schema overview:
  snapshots(id, kind, identifier, fetched_at, row_count)
  carry_records(snapshot_id, seq, team, season, stat_bin, count,
    count_over_window_sum, cum_sum_as_window_percentage)
  comparison_records(snapshot_id, seq, primary_team, compared_against_team,
    season, stat_bin, difference)

Example:
  rushmetrics sql "SELECT team, SUM(count) FROM carry_records WHERE season = 2022 GROUP BY team"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(_ *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRaw(os.Stdout, cols, rows)
	return nil
}
