package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/aggregator"
	"github.com/pable/go-rushing-metrics/internal/model"
)

var (
	loadKeep  int
	loadCheck bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch both tables and store a fresh snapshot",
	Long: `Fetch the carry and comparison tables from their configured sources,
decode them and store them as new snapshots. Later commands read the newest
snapshot instead of fetching again, unless --refresh is given.`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadKeep, "keep", 0, "after loading, prune all but the newest N snapshots per table (0 = keep all)")
	loadCmd.Flags().BoolVar(&loadCheck, "check", true, "warn about team-seasons whose cumulative shares look inconsistent")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	refresh = true
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	fmt.Fprintf(os.Stderr, "Fetching %s...\n", cfg.Data.CarriesURL)
	carries, err := a.cache.Carries(ctx, cfg.Data.CarriesURL)
	if err != nil {
		return fmt.Errorf("load carries: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Fetching %s...\n", cfg.Data.ComparisonsURL)
	comparisons, err := a.cache.Comparisons(ctx, cfg.Data.ComparisonsURL)
	if err != nil {
		return fmt.Errorf("load comparisons: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Stored %d carry rows and %d comparison rows.\n", len(carries), len(comparisons))

	if loadCheck {
		warnCumulative(carries)
	}

	if loadKeep > 0 {
		removed := 0
		for _, id := range []string{cfg.Data.CarriesURL, cfg.Data.ComparisonsURL} {
			n, err := a.db.PruneSnapshots(id, loadKeep)
			if err != nil {
				return fmt.Errorf("prune %s: %w", id, err)
			}
			removed += n
		}
		fmt.Fprintf(os.Stdout, "Pruned %d old snapshot(s).\n", removed)
	}
	return nil
}

type teamSeason struct {
	team   string
	season int
}

// warnCumulative prints one warning per team-season whose cumulative share
// series is not a monotone walk to 1.0.
func warnCumulative(rows []model.CarryRecord) {
	var order []teamSeason
	groups := make(map[teamSeason][]model.CarryRecord)
	for _, r := range rows {
		k := teamSeason{r.Team, r.Season}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	bad := 0
	for _, k := range order {
		if err := aggregator.CheckCumulative(groups[k], 0.01); err != nil {
			bad++
			fmt.Fprintf(os.Stderr, "warning: %s %d: %v\n", k.team, k.season, err)
		}
	}
	if bad > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d team-seasons failed the cumulative check\n", bad, len(order))
	}
}
