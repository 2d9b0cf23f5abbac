// Package export writes a comparison as a JSON document or an xlsx workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-rushing-metrics/internal/aggregator"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// Document is the JSON shape of one comparison. It is also what the
// analyze command sends to the model and what the HTTP API returns.
type Document struct {
	Season         int    `json:"season"`
	TeamOne        string `json:"team_one"`
	TeamTwo        string `json:"team_two"`
	TeamOneCarries int    `json:"team_one_carries"`
	TeamTwoCarries int    `json:"team_two_carries"`

	TeamOneShares        []model.BinValue `json:"team_one_shares"`
	TeamTwoShares        []model.BinValue `json:"team_two_shares"`
	TeamOneCumulative    []model.BinValue `json:"team_one_cumulative"`
	TeamTwoCumulative    []model.BinValue `json:"team_two_cumulative"`
	TopDifferences       []Difference     `json:"top_differences"`
	CumulativeDifference []model.BinValue `json:"cumulative_difference"`
	BinsAligned          bool             `json:"bins_aligned"`

	GeneratedAt string `json:"generated_at"`
}

// Difference is one top-k row.
type Difference struct {
	StatBin             string  `json:"stat_bin"`
	PrimaryTeam         string  `json:"primary_team"`
	ComparedAgainstTeam string  `json:"compared_against_team"`
	Difference          float64 `json:"difference"`
}

// NewDocument flattens c into its JSON shape. Empty series are encoded as
// [] rather than null.
func NewDocument(c model.Comparison) Document {
	diffs := make([]Difference, 0, len(c.TopDifferences))
	for _, r := range c.TopDifferences {
		diffs = append(diffs, Difference{
			StatBin:             r.StatBin,
			PrimaryTeam:         r.PrimaryTeam,
			ComparedAgainstTeam: r.ComparedAgainstTeam,
			Difference:          r.Difference,
		})
	}
	sel := c.Selection
	return Document{
		Season:               sel.Season,
		TeamOne:              sel.TeamOne,
		TeamTwo:              sel.TeamTwo,
		TeamOneCarries:       c.TeamOneCarries,
		TeamTwoCarries:       c.TeamTwoCarries,
		TeamOneShares:        nonNil(aggregator.BinShares(c.TeamOneRows, sel.TeamOne)),
		TeamTwoShares:        nonNil(aggregator.BinShares(c.TeamTwoRows, sel.TeamTwo)),
		TeamOneCumulative:    nonNil(aggregator.CumulativeSeries(c.TeamOneRows, sel.TeamOne)),
		TeamTwoCumulative:    nonNil(aggregator.CumulativeSeries(c.TeamTwoRows, sel.TeamTwo)),
		TopDifferences:       diffs,
		CumulativeDifference: nonNil(c.CumulativeDifference),
		BinsAligned:          c.Aligned,
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
	}
}

func nonNil(s []model.BinValue) []model.BinValue {
	if s == nil {
		return []model.BinValue{}
	}
	return s
}

// WriteJSON writes c as an indented JSON document.
func WriteJSON(w io.Writer, c model.Comparison) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(c))
}

// Sheet names in the workbook.
const (
	SheetSummary     = "Summary"
	SheetCarries     = "Carries"
	SheetDifferences = "Top Differences"
	SheetCumulative  = "Cumulative"
)

// Workbook builds an xlsx workbook for c. The caller owns the returned
// file and must Close it.
func Workbook(c model.Comparison) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetCarries, SheetDifferences, SheetCumulative} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	sel := c.Selection
	sheets := map[string][][]any{
		SheetSummary: {
			{"Field", "Value"},
			{"Season", sel.Season},
			{"Team one", sel.TeamOne},
			{"Team two", sel.TeamTwo},
			{sel.TeamOne + " carries", c.TeamOneCarries},
			{sel.TeamTwo + " carries", c.TeamTwoCarries},
			{"Bins aligned", c.Aligned},
		},
		SheetCarries:     carryRows(c.Carries),
		SheetDifferences: differenceRows(c.TopDifferences),
		SheetCumulative:  cumulativeRows(c),
	}

	for name, rows := range sheets {
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("write %s row %d: %w", name, i+1, err)
			}
		}
		f.SetRowStyle(name, 1, 1, headerStyle)
		f.SetColWidth(name, "A", "A", 24)
		f.SetColWidth(name, "B", "F", 16)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func carryRows(rows []model.CarryRecord) [][]any {
	out := [][]any{{"Team", "Season", "Bin", "Count", "Share", "Cumulative share"}}
	for _, r := range rows {
		out = append(out, []any{r.Team, r.Season, r.StatBin, r.Count, r.CountOverWindowSum, r.CumSumAsWindowPercentage})
	}
	return out
}

func differenceRows(rows []model.ComparisonRecord) [][]any {
	out := [][]any{{"Rank", "Bin", "Primary team", "Compared against", "Difference"}}
	for i, r := range rows {
		out = append(out, []any{i + 1, r.StatBin, r.PrimaryTeam, r.ComparedAgainstTeam, r.Difference})
	}
	return out
}

func cumulativeRows(c model.Comparison) [][]any {
	one := aggregator.CumulativeSeries(c.TeamOneRows, c.Selection.TeamOne)
	two := aggregator.CumulativeSeries(c.TeamTwoRows, c.Selection.TeamTwo)
	oneBy := make(map[string]float64, len(one))
	for _, p := range one {
		oneBy[p.StatBin] = p.Value
	}
	twoBy := make(map[string]float64, len(two))
	for _, p := range two {
		twoBy[p.StatBin] = p.Value
	}

	out := [][]any{{"Bin", c.Selection.TeamOne, c.Selection.TeamTwo, "Difference"}}
	for _, p := range c.CumulativeDifference {
		out = append(out, []any{p.StatBin, oneBy[p.StatBin], twoBy[p.StatBin], p.Value})
	}
	return out
}

// WriteXLSX writes the workbook for c to w.
func WriteXLSX(w io.Writer, c model.Comparison) error {
	f, err := Workbook(c)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
