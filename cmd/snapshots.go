package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/report"
	"github.com/pable/go-rushing-metrics/internal/storage"
)

var snapshotsKeep int

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored table snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshots,
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune [source...]",
	Short: "Delete all but the newest snapshots of each table",
	Long:  "Delete old snapshots for the given sources, or for the configured carry and comparison sources when none are given.",
	RunE:  runSnapshotsPrune,
}

func init() {
	snapshotsPruneCmd.Flags().IntVar(&snapshotsKeep, "keep", 1, "number of snapshots to keep per table")
	snapshotsCmd.AddCommand(snapshotsPruneCmd)
}

func runSnapshots(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	snaps, err := db.ListSnapshots()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	report.PrintSnapshots(os.Stdout, snaps)
	return nil
}

func runSnapshotsPrune(_ *cobra.Command, args []string) error {
	if snapshotsKeep < 1 {
		return fmt.Errorf("--keep must be at least 1")
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	sources := args
	if len(sources) == 0 {
		sources = []string{cfg.Data.CarriesURL, cfg.Data.ComparisonsURL}
	}
	total := 0
	for _, src := range sources {
		n, err := db.PruneSnapshots(src, snapshotsKeep)
		if err != nil {
			return fmt.Errorf("prune %s: %w", src, err)
		}
		total += n
	}
	fmt.Fprintf(os.Stdout, "Pruned %d snapshot(s).\n", total)
	return nil
}
