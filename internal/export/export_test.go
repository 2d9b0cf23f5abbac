package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-rushing-metrics/internal/model"
)

func sample() model.Comparison {
	one := []model.CarryRecord{
		{Team: "Penn State", Season: 2022, StatBin: "(0 | 2]", Count: 40, CountOverWindowSum: 0.4, CumSumAsWindowPercentage: 0.4},
		{Team: "Penn State", Season: 2022, StatBin: "(2 | 4]", Count: 60, CountOverWindowSum: 0.6, CumSumAsWindowPercentage: 1.0},
	}
	two := []model.CarryRecord{
		{Team: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Count: 25, CountOverWindowSum: 0.5, CumSumAsWindowPercentage: 0.5},
		{Team: "Ohio State", Season: 2022, StatBin: "(2 | 4]", Count: 25, CountOverWindowSum: 0.5, CumSumAsWindowPercentage: 1.0},
	}
	return model.Comparison{
		Selection:      model.Selection{Season: 2022, TeamOne: "Penn State", TeamTwo: "Ohio State"},
		TeamOneCarries: 100,
		TeamTwoCarries: 50,
		Carries:        append(append([]model.CarryRecord{}, one...), two...),
		TeamOneRows:    one,
		TeamTwoRows:    two,
		TopDifferences: []model.ComparisonRecord{
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Difference: -0.1},
		},
		CumulativeDifference: []model.BinValue{{StatBin: "(0 | 2]", Value: -0.1}, {StatBin: "(2 | 4]", Value: 0}},
		Aligned:              true,
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.TeamOneCarries != 100 || doc.TeamTwoCarries != 50 {
		t.Errorf("unexpected totals %d/%d", doc.TeamOneCarries, doc.TeamTwoCarries)
	}
	if len(doc.TeamOneShares) != 2 || doc.TeamOneShares[1].Value != 0.6 {
		t.Errorf("unexpected shares %+v", doc.TeamOneShares)
	}
	if len(doc.TopDifferences) != 1 || doc.TopDifferences[0].Difference != -0.1 {
		t.Errorf("unexpected differences %+v", doc.TopDifferences)
	}
	if !doc.BinsAligned || doc.GeneratedAt == "" {
		t.Errorf("missing provenance fields: %+v", doc)
	}
}

func TestWriteJSON_EmptyUsesArrays(t *testing.T) {
	var buf bytes.Buffer
	c := model.Comparison{Selection: model.Selection{Season: 1999, TeamOne: "A", TeamTwo: "B"}}
	if err := WriteJSON(&buf, c); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.Contains(buf.String(), "null") {
		t.Errorf("empty series should encode as []:\n%s", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetSummary, SheetCarries, SheetDifferences, SheetCumulative}
	if len(sheets) != len(want) {
		t.Fatalf("sheets: want %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d: want %q, got %q", i, want[i], sheets[i])
		}
	}

	carries, err := f.GetRows(SheetCarries)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(carries) != 5 {
		t.Errorf("carries sheet: want header + 4 rows, got %d", len(carries))
	}

	v, err := f.GetCellValue(SheetSummary, "B5")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if v != "100" {
		t.Errorf("team one carries cell: want 100, got %q", v)
	}

	diffs, _ := f.GetRows(SheetDifferences)
	if len(diffs) != 2 || diffs[1][1] != "(0 | 2]" {
		t.Errorf("unexpected differences sheet %v", diffs)
	}
}
