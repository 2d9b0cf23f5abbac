package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/filter"
)

var teamsExclude string

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List teams in the carry table",
	Long:  "List teams in first-appearance order. --exclude drops one team, the way the second selector hides the first pick.",
	Args:  cobra.NoArgs,
	RunE:  runTeams,
}

func init() {
	teamsCmd.Flags().StringVar(&teamsExclude, "exclude", "", "team to leave out")
}

func runTeams(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	teams, err := a.sess.Teams(cmd.Context())
	if err != nil {
		return err
	}
	if teamsExclude != "" {
		teams = filter.TeamOptions(teams, teamsExclude)
	}
	for _, t := range teams {
		fmt.Fprintln(os.Stdout, t)
	}
	return nil
}
