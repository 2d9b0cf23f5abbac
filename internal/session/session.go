// Package session ties the cached tables to the filter and aggregator for
// one user session. A Session replaces process-wide table globals: it owns
// the table identifiers and loads them on first use.
package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/pable/go-rushing-metrics/internal/aggregator"
	"github.com/pable/go-rushing-metrics/internal/filter"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// DefaultTopK is how many bin differences a comparison shows by default.
const DefaultTopK = 10

// Tables is the read side of source.Cache.
type Tables interface {
	Carries(ctx context.Context, identifier string) ([]model.CarryRecord, error)
	Comparisons(ctx context.Context, identifier string) ([]model.ComparisonRecord, error)
}

// Session answers selection queries against one pair of tables.
type Session struct {
	tables        Tables
	carriesID     string
	comparisonsID string
}

// New returns a Session reading the carry table at carriesID and the
// comparison table at comparisonsID through tables.
func New(tables Tables, carriesID, comparisonsID string) *Session {
	return &Session{tables: tables, carriesID: carriesID, comparisonsID: comparisonsID}
}

// Seasons lists the seasons available for selection, newest first.
func (s *Session) Seasons(ctx context.Context) ([]int, error) {
	rows, err := s.tables.Carries(ctx, s.carriesID)
	if err != nil {
		return nil, err
	}
	return filter.Seasons(rows), nil
}

// Teams lists the teams available for selection.
func (s *Session) Teams(ctx context.Context) ([]string, error) {
	rows, err := s.tables.Carries(ctx, s.carriesID)
	if err != nil {
		return nil, err
	}
	return filter.Teams(rows), nil
}

// Compare runs the filter and aggregation for sel and returns up to topK
// bin differences. An unmatched selection yields zero totals, not an error.
func (s *Session) Compare(ctx context.Context, sel model.Selection, topK int) (model.Comparison, error) {
	if err := sel.Validate(); err != nil {
		return model.Comparison{}, err
	}

	carries, err := s.tables.Carries(ctx, s.carriesID)
	if err != nil {
		return model.Comparison{}, err
	}
	comparisons, err := s.tables.Comparisons(ctx, s.comparisonsID)
	if err != nil {
		return model.Comparison{}, err
	}

	rows := filter.Carries(carries, sel.Season, sel.TeamOne, sel.TeamTwo)
	t1 := filter.Team(rows, sel.TeamOne)
	t2 := filter.Team(rows, sel.TeamTwo)
	pair := filter.Comparisons(comparisons, sel.Season, sel.TeamOne, sel.TeamTwo)

	bins := model.Bins()
	aligned := aggregator.Aligned(t1, t2, bins)
	var cum []model.BinValue
	if aligned {
		cum = aggregator.CumulativeDifference(t1, t2, bins)
	} else {
		cum = aggregator.CumulativeDifferenceByBin(t1, t2, bins)
	}

	return model.Comparison{
		Selection:            sel,
		TeamOneCarries:       aggregator.TotalCarries(rows, sel.TeamOne),
		TeamTwoCarries:       aggregator.TotalCarries(rows, sel.TeamTwo),
		Carries:              rows,
		TeamOneRows:          t1,
		TeamTwoRows:          t2,
		TopDifferences:       aggregator.TopKDifferences(pair, topK),
		CumulativeDifference: cum,
		Aligned:              aligned,
	}, nil
}

// DefaultSelection picks the newest season and the default teams when they
// exist, otherwise the first two teams in the table.
func (s *Session) DefaultSelection(ctx context.Context) (model.Selection, error) {
	seasons, err := s.Seasons(ctx)
	if err != nil {
		return model.Selection{}, err
	}
	teams, err := s.Teams(ctx)
	if err != nil {
		return model.Selection{}, err
	}
	if len(seasons) == 0 || len(teams) < 2 {
		return model.Selection{}, fmt.Errorf("carry table needs at least one season and two teams")
	}

	sel := model.Selection{Season: seasons[0], TeamOne: model.DefaultTeamOne, TeamTwo: model.DefaultTeamTwo}
	if !slices.Contains(teams, sel.TeamOne) || !slices.Contains(teams, sel.TeamTwo) {
		sel.TeamOne, sel.TeamTwo = teams[0], teams[1]
	}
	return sel, nil
}
