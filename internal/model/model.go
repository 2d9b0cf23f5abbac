package model

import (
	"errors"
	"strings"
	"time"
)

// Default selection shown when the user has not picked teams yet.
const (
	DefaultTeamOne = "Penn State"
	DefaultTeamTwo = "Ohio State"
)

var (
	// ErrSameTeam is returned when both selectors point at the same team.
	ErrSameTeam = errors.New("team one and team two must differ")
	// ErrEmptyTeam is returned when a team name is blank.
	ErrEmptyTeam = errors.New("team name is required")
)

// ---- Loaded reference tables ----

// CarryRecord is one row of the per-bin carry table: how many running-back
// carries a team had in one yardage bin during one season.
type CarryRecord struct {
	Team    string
	Season  int
	StatBin string
	Count   int

	// CountOverWindowSum is Count as a fraction of the team-season total.
	CountOverWindowSum float64
	// CumSumAsWindowPercentage is the running total of CountOverWindowSum
	// up to and including this bin, in canonical bin order.
	CumSumAsWindowPercentage float64
}

// ComparisonRecord is one row of the team-pair table. Difference is the
// primary team's bin proportion minus the compared team's.
type ComparisonRecord struct {
	PrimaryTeam         string
	ComparedAgainstTeam string
	Season              int
	StatBin             string
	Difference          float64
}

// ---- Per-request values ----

// Selection is the user's current season and team pick. It is rebuilt on
// every interaction and never stored.
type Selection struct {
	Season  int
	TeamOne string
	TeamTwo string
}

// Validate checks the selector constraints: both teams named and distinct.
func (s Selection) Validate() error {
	if strings.TrimSpace(s.TeamOne) == "" || strings.TrimSpace(s.TeamTwo) == "" {
		return ErrEmptyTeam
	}
	if s.TeamOne == s.TeamTwo {
		return ErrSameTeam
	}
	return nil
}

// BinValue is one point of a derived per-bin series.
type BinValue struct {
	StatBin string  `json:"stat_bin"`
	Value   float64 `json:"value"`
}

// Comparison is everything the presentation layer needs for one selection.
type Comparison struct {
	Selection      Selection
	TeamOneCarries int
	TeamTwoCarries int

	// Carries holds the filtered rows for both teams in source order.
	Carries     []CarryRecord
	TeamOneRows []CarryRecord
	TeamTwoRows []CarryRecord

	TopDifferences       []ComparisonRecord
	CumulativeDifference []BinValue

	// Aligned is false when the two teams' rows did not cover the same bins
	// in the same order; CumulativeDifference was then built by bin label.
	Aligned bool
}

// Empty reports whether neither team had any carries in the selection.
func (c *Comparison) Empty() bool {
	return len(c.Carries) == 0
}

// ---- Stored snapshots ----

// Snapshot kinds.
const (
	KindCarries     = "carries"
	KindComparisons = "comparisons"
)

// Snapshot describes one stored copy of a loaded table.
type Snapshot struct {
	ID         string
	Kind       string
	Identifier string
	FetchedAt  time.Time
	RowCount   int
}
