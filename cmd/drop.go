package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the snapshot database",
	Long: `Delete the SQLite snapshot database together with its -wal and -shm files.
Every stored snapshot is lost; the next command fetches both tables again.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "delete without asking for confirmation")
}

func runDrop(_ *cobra.Command, _ []string) error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "Would delete %s (and its -wal/-shm files). Re-run with --force.\n", dbPath)
		return nil
	}
	removed, err := removeDatabase(dbPath)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintf(os.Stdout, "No snapshot database at %s.\n", dbPath)
		return nil
	}
	for _, p := range removed {
		fmt.Fprintf(os.Stdout, "Deleted %s\n", p)
	}
	return nil
}

// removeDatabase deletes path and its SQLite side files and returns the
// files that existed. Missing files are skipped.
func removeDatabase(path string) ([]string, error) {
	var removed []string
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case os.IsNotExist(err):
		default:
			return removed, fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return removed, nil
}
