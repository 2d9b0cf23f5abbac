// Package filter narrows the loaded carry and comparison tables down to the
// rows relevant for one season/team selection.
package filter

import (
	"sort"

	"github.com/pable/go-rushing-metrics/internal/model"
)

// Carries returns the rows in a canonical stat bin for season whose team is
// teamOne or teamTwo. Source order is preserved; no match yields an empty slice.
func Carries(rows []model.CarryRecord, season int, teamOne, teamTwo string) []model.CarryRecord {
	out := make([]model.CarryRecord, 0)
	for _, r := range rows {
		if !model.IsCanonicalBin(r.StatBin) {
			continue
		}
		if r.Season != season {
			continue
		}
		if r.Team != teamOne && r.Team != teamTwo {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Team returns the rows belonging to team, in source order.
func Team(rows []model.CarryRecord, team string) []model.CarryRecord {
	out := make([]model.CarryRecord, 0)
	for _, r := range rows {
		if r.Team == team {
			out = append(out, r)
		}
	}
	return out
}

// Comparisons returns the rows for season where primary_team is teamOne and
// compared_against_team is teamTwo. The reverse pair is not matched.
func Comparisons(rows []model.ComparisonRecord, season int, teamOne, teamTwo string) []model.ComparisonRecord {
	out := make([]model.ComparisonRecord, 0)
	for _, r := range rows {
		if r.Season == season && r.PrimaryTeam == teamOne && r.ComparedAgainstTeam == teamTwo {
			out = append(out, r)
		}
	}
	return out
}

// Seasons lists the distinct seasons in rows, newest first.
func Seasons(rows []model.CarryRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range rows {
		if !seen[r.Season] {
			seen[r.Season] = true
			out = append(out, r.Season)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Teams lists the distinct teams in rows in order of first appearance.
func Teams(rows []model.CarryRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Team] {
			seen[r.Team] = true
			out = append(out, r.Team)
		}
	}
	return out
}

// TeamOptions returns teams without exclude, which is the value currently
// held by the other selector.
func TeamOptions(teams []string, exclude string) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		if t != exclude {
			out = append(out, t)
		}
	}
	return out
}
