package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "List seasons in the carry table, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSeasons,
}

func runSeasons(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	seasons, err := a.sess.Seasons(cmd.Context())
	if err != nil {
		return err
	}
	for _, s := range seasons {
		fmt.Fprintln(os.Stdout, s)
	}
	return nil
}
