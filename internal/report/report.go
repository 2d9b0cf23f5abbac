package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-rushing-metrics/internal/aggregator"
	"github.com/pable/go-rushing-metrics/internal/model"
)

var (
	cPositive = color.New(color.FgBlue)
	cNegative = color.New(color.FgYellow)
	cWarn     = color.New(color.FgYellow, color.Bold)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintSelection prints a one-line header for the current selection.
func PrintSelection(w io.Writer, sel model.Selection) {
	fmt.Fprintf(w, "\nSeason: %d  |  %s vs %s\n\n", sel.Season, sel.TeamOne, sel.TeamTwo)
}

// PrintCarryMetrics prints the two headline carry counts, plus a warning
// when the cumulative difference had to be joined by bin label.
func PrintCarryMetrics(w io.Writer, c model.Comparison) {
	table := newTable(w)
	table.Header("TEAM", "CARRIES")
	table.Append(c.Selection.TeamOne+" Carries", strconv.Itoa(c.TeamOneCarries))
	table.Append(c.Selection.TeamTwo+" Carries", strconv.Itoa(c.TeamTwoCarries))
	table.Render()

	if c.Empty() {
		fmt.Fprintln(w, "  no carries for this selection")
	}
	if !c.Aligned && !c.Empty() {
		cWarn.Fprintln(w, "  warning: teams do not cover the same bins; cumulative difference joined by bin")
	}
}

// PrintShareTable prints the per-bin share of carries for both teams.
// Bins missing for one team show "-".
func PrintShareTable(w io.Writer, c model.Comparison) {
	one := shareIndex(c.TeamOneRows)
	two := shareIndex(c.TeamTwoRows)

	table := newTable(w)
	table.Header("BIN", c.Selection.TeamOne+" %", c.Selection.TeamTwo+" %")
	for _, bin := range model.Bins() {
		a, okA := one[bin]
		b, okB := two[bin]
		if !okA && !okB {
			continue
		}
		table.Append(bin, pct(a, okA), pct(b, okB))
	}
	table.Render()
}

// PrintTopDifferences prints the top-k difference rows in their given
// order. Positive differences favour the primary team.
func PrintTopDifferences(w io.Writer, rows []model.ComparisonRecord) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  no bin differences for this pairing")
		return
	}
	table := newTable(w)
	table.Header("#", "BIN", "PRIMARY", "AGAINST", "DIFF")
	for i, r := range rows {
		diff := fmt.Sprintf("%+.2f%%", r.Difference*100)
		if r.Difference >= 0 {
			diff = cPositive.Sprint(diff)
		} else {
			diff = cNegative.Sprint(diff)
		}
		table.Append(strconv.Itoa(i+1), r.StatBin, r.PrimaryTeam, r.ComparedAgainstTeam, diff)
	}
	table.Render()
}

// PrintCumulativeTable prints both teams' cumulative percentage per bin and
// the difference between them.
func PrintCumulativeTable(w io.Writer, c model.Comparison) {
	one := seriesIndex(aggregator.CumulativeSeries(c.TeamOneRows, c.Selection.TeamOne))
	two := seriesIndex(aggregator.CumulativeSeries(c.TeamTwoRows, c.Selection.TeamTwo))

	table := newTable(w)
	table.Header("BIN", c.Selection.TeamOne+" CUM%", c.Selection.TeamTwo+" CUM%", "DIFF")
	for _, p := range c.CumulativeDifference {
		a, okA := one[p.StatBin]
		b, okB := two[p.StatBin]
		table.Append(p.StatBin, pct(a, okA), pct(b, okB), fmt.Sprintf("%+.2f%%", p.Value*100))
	}
	table.Render()
}

// PrintSnapshots lists stored table snapshots.
func PrintSnapshots(w io.Writer, snaps []model.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots stored yet. Run: rushmetrics load")
		return
	}
	table := newTable(w)
	table.Header("ID", "KIND", "SOURCE", "FETCHED", "ROWS")
	for _, s := range snaps {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(id, s.Kind, s.Identifier, s.FetchedAt.Local().Format("2006-01-02 15:04"), strconv.Itoa(s.RowCount))
	}
	table.Render()
}

// PrintRaw prints the result of an ad-hoc query.
func PrintRaw(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, v := range r {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func shareIndex(rows []model.CarryRecord) map[string]float64 {
	m := make(map[string]float64, len(rows))
	for _, r := range rows {
		if _, dup := m[r.StatBin]; !dup {
			m[r.StatBin] = r.CountOverWindowSum
		}
	}
	return m
}

func seriesIndex(s []model.BinValue) map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, p := range s {
		if _, dup := m[p.StatBin]; !dup {
			m[p.StatBin] = p.Value
		}
	}
	return m
}

func pct(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}
