package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pable/go-rushing-metrics/internal/model"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func comparison() model.Comparison {
	bins := model.Bins()
	var one, two []model.CarryRecord
	cum1, cum2 := 0.0, 0.0
	for i, b := range bins {
		s1 := 1.0 / float64(len(bins))
		s2 := s1
		if i < 10 {
			s2 = s1 * 1.5
		} else if i < 20 {
			s2 = s1 * 0.5
		}
		cum1 += s1
		cum2 += s2
		one = append(one, model.CarryRecord{Team: "Penn State", Season: 2022, StatBin: b, Count: 2, CountOverWindowSum: s1, CumSumAsWindowPercentage: cum1})
		two = append(two, model.CarryRecord{Team: "Ohio State", Season: 2022, StatBin: b, Count: 3, CountOverWindowSum: s2, CumSumAsWindowPercentage: cum2})
	}
	var cum []model.BinValue
	for i := range bins {
		cum = append(cum, model.BinValue{StatBin: bins[i], Value: one[i].CumSumAsWindowPercentage - two[i].CumSumAsWindowPercentage})
	}
	return model.Comparison{
		Selection:   model.Selection{Season: 2022, TeamOne: "Penn State", TeamTwo: "Ohio State"},
		TeamOneRows: one,
		TeamTwoRows: two,
		TopDifferences: []model.ComparisonRecord{
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: bins[0], Difference: 0.02},
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: bins[1], Difference: -0.03},
			{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: bins[2], Difference: 0.01},
		},
		CumulativeDifference: cum,
		Aligned:              true,
	}
}

func TestRenderers(t *testing.T) {
	c := comparison()
	renderers := map[string]func(*bytes.Buffer, model.Comparison) error{
		"shares":                func(b *bytes.Buffer, c model.Comparison) error { return Shares(b, c) },
		"cumulative":            func(b *bytes.Buffer, c model.Comparison) error { return Cumulative(b, c) },
		"cumulative-difference": func(b *bytes.Buffer, c model.Comparison) error { return CumulativeDifference(b, c) },
		"differences":           func(b *bytes.Buffer, c model.Comparison) error { return Differences(b, c) },
	}
	for name, render := range renderers {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := render(&buf, c); err != nil {
				t.Fatalf("render: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
				t.Errorf("output is not a PNG (%d bytes)", buf.Len())
			}
		})
	}
}

func TestRenderers_NoData(t *testing.T) {
	empty := model.Comparison{Selection: model.Selection{Season: 1999, TeamOne: "A", TeamTwo: "B"}}
	var buf bytes.Buffer

	for name, err := range map[string]error{
		"shares":                Shares(&buf, empty),
		"cumulative":            Cumulative(&buf, empty),
		"cumulative-difference": CumulativeDifference(&buf, empty),
		"differences":           Differences(&buf, empty),
	} {
		if !errors.Is(err, ErrNoData) {
			t.Errorf("%s: expected ErrNoData, got %v", name, err)
		}
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written without data")
	}
}

func TestSinglePoint(t *testing.T) {
	c := model.Comparison{
		Selection:            model.Selection{Season: 2022, TeamOne: "A", TeamTwo: "B"},
		CumulativeDifference: []model.BinValue{{StatBin: "(0 | 2]", Value: 0.1}},
		TopDifferences:       []model.ComparisonRecord{{PrimaryTeam: "A", ComparedAgainstTeam: "B", StatBin: "(0 | 2]", Difference: 0}},
	}
	var buf bytes.Buffer
	if err := CumulativeDifference(&buf, c); err != nil {
		t.Errorf("single point line: %v", err)
	}
	buf.Reset()
	if err := Differences(&buf, c); err != nil {
		t.Errorf("single flat bar: %v", err)
	}
}

func TestShares_OneTeamOnly(t *testing.T) {
	c := comparison()
	c.TeamTwoRows = nil
	var buf bytes.Buffer
	if err := Shares(&buf, c); err != nil {
		t.Fatalf("Shares: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngSignature) {
		t.Error("output is not a PNG")
	}
}

func TestShares_ZeroShares(t *testing.T) {
	c := model.Comparison{
		Selection: model.Selection{Season: 2022, TeamOne: "A", TeamTwo: "B"},
		TeamOneRows: []model.CarryRecord{
			{Team: "A", Season: 2022, StatBin: "(0 | 2]"},
		},
		TeamTwoRows: []model.CarryRecord{
			{Team: "B", Season: 2022, StatBin: "(98 | 100]", CountOverWindowSum: 1},
		},
	}
	var buf bytes.Buffer
	if err := Shares(&buf, c); err != nil {
		t.Errorf("flat bars: %v", err)
	}
}
