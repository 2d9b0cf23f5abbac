package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/model"
	"github.com/pable/go-rushing-metrics/internal/session"
)

// selectionFlags are shared by every command that runs a comparison.
type selectionFlags struct {
	season  int
	teamOne string
	teamTwo string
	top     int
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.season, "season", 0, "season year (default newest)")
	cmd.Flags().StringVar(&f.teamOne, "team-one", "", "first team (default from config)")
	cmd.Flags().StringVar(&f.teamTwo, "team-two", "", "second team (default from config)")
	cmd.Flags().IntVar(&f.top, "top", 0, "number of bin differences to show (default from config)")
}

// resolve fills unset flags from config and the newest available season.
func (f *selectionFlags) resolve(ctx context.Context, sess *session.Session) (model.Selection, int, error) {
	sel := model.Selection{Season: f.season, TeamOne: f.teamOne, TeamTwo: f.teamTwo}
	if sel.TeamOne == "" {
		sel.TeamOne = cfg.Compare.TeamOne
	}
	if sel.TeamTwo == "" {
		sel.TeamTwo = cfg.Compare.TeamTwo
	}
	top := f.top
	if top <= 0 {
		top = cfg.Compare.Top
	}
	if top <= 0 {
		top = session.DefaultTopK
	}

	if sel.Season == 0 {
		seasons, err := sess.Seasons(ctx)
		if err != nil {
			return sel, 0, err
		}
		if len(seasons) == 0 {
			return sel, 0, fmt.Errorf("carry table has no seasons")
		}
		sel.Season = seasons[0]
	}
	return sel, top, nil
}
