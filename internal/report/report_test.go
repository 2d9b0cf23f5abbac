package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/pable/go-rushing-metrics/internal/model"
)

func init() {
	color.NoColor = true
}

func sampleComparison() model.Comparison {
	sel := model.Selection{Season: 2022, TeamOne: "Penn State", TeamTwo: "Ohio State"}
	one := []model.CarryRecord{
		{Team: "Penn State", Season: 2022, StatBin: "(0 | 2]", Count: 40, CountOverWindowSum: 0.4, CumSumAsWindowPercentage: 0.4},
		{Team: "Penn State", Season: 2022, StatBin: "(2 | 4]", Count: 60, CountOverWindowSum: 0.6, CumSumAsWindowPercentage: 1.0},
	}
	two := []model.CarryRecord{
		{Team: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Count: 25, CountOverWindowSum: 0.25, CumSumAsWindowPercentage: 0.25},
	}
	return model.Comparison{
		Selection:      sel,
		TeamOneCarries: 100,
		TeamTwoCarries: 25,
		Carries:        append(append([]model.CarryRecord{}, one...), two...),
		TeamOneRows:    one,
		TeamTwoRows:    two,
		TopDifferences: []model.ComparisonRecord{
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Difference: 0.15},
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: "(2 | 4]", Difference: -0.05},
		},
		CumulativeDifference: []model.BinValue{{StatBin: "(0 | 2]", Value: 0.15}},
		Aligned:              false,
	}
}

func TestPrintCarryMetrics(t *testing.T) {
	var buf bytes.Buffer
	PrintCarryMetrics(&buf, sampleComparison())
	out := buf.String()

	for _, want := range []string{"Penn State Carries", "100", "Ohio State Carries", "25", "warning"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCarryMetrics_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := model.Comparison{Selection: model.Selection{Season: 1999, TeamOne: "A", TeamTwo: "B"}}
	PrintCarryMetrics(&buf, c)
	out := buf.String()

	if !strings.Contains(out, "no carries") {
		t.Errorf("expected empty-selection note:\n%s", out)
	}
	if strings.Contains(out, "warning") {
		t.Errorf("empty selection should not warn about alignment:\n%s", out)
	}
}

func TestPrintShareTable_MissingBin(t *testing.T) {
	var buf bytes.Buffer
	PrintShareTable(&buf, sampleComparison())
	out := buf.String()

	if !strings.Contains(out, "40.00%") || !strings.Contains(out, "25.00%") {
		t.Errorf("expected share percentages:\n%s", out)
	}
	// Ohio State has no (2 | 4] row.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "(2 | 4]") && !strings.Contains(line, "-") {
			t.Errorf("expected placeholder for missing bin: %s", line)
		}
	}
}

func TestPrintTopDifferences(t *testing.T) {
	var buf bytes.Buffer
	PrintTopDifferences(&buf, sampleComparison().TopDifferences)
	out := buf.String()

	if !strings.Contains(out, "+15.00%") || !strings.Contains(out, "-5.00%") {
		t.Errorf("expected signed differences:\n%s", out)
	}
	if strings.Index(out, "(0 | 2]") > strings.Index(out, "(2 | 4]") {
		t.Error("rows must keep their given order")
	}

	buf.Reset()
	PrintTopDifferences(&buf, nil)
	if !strings.Contains(buf.String(), "no bin differences") {
		t.Errorf("expected empty note, got %q", buf.String())
	}
}

func TestPrintCumulativeTable(t *testing.T) {
	var buf bytes.Buffer
	PrintCumulativeTable(&buf, sampleComparison())
	out := buf.String()

	if !strings.Contains(out, "+15.00%") {
		t.Errorf("expected difference column:\n%s", out)
	}
}

func TestPrintSnapshots(t *testing.T) {
	var buf bytes.Buffer
	PrintSnapshots(&buf, nil)
	if !strings.Contains(buf.String(), "No snapshots") {
		t.Errorf("unexpected empty output %q", buf.String())
	}

	buf.Reset()
	PrintSnapshots(&buf, []model.Snapshot{{
		ID: "0123456789abcdef", Kind: model.KindCarries, Identifier: "carries.csv",
		FetchedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC), RowCount: 54,
	}})
	out := buf.String()
	if !strings.Contains(out, "01234567") || strings.Contains(out, "0123456789abcdef") {
		t.Errorf("expected truncated id:\n%s", out)
	}
	if !strings.Contains(out, "54") {
		t.Errorf("expected row count:\n%s", out)
	}
}
