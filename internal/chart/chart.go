// Package chart renders comparison charts as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pable/go-rushing-metrics/internal/aggregator"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("chart: no data to plot")

// Default image size.
const (
	Width  = 1024
	Height = 480
)

var (
	positiveColor = hexColor("#4682B4") // steelblue
	negativeColor = hexColor("#FFA500") // orange
)

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    2,
	}
}

// binAxis labels every fifth canonical bin so 54 labels stay legible.
func binAxis() gochart.XAxis {
	bins := model.Bins()
	var ticks []gochart.Tick
	for i := 0; i < len(bins); i += 5 {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: bins[i]})
	}
	return gochart.XAxis{Name: "Yards gained", Ticks: ticks}
}

// binSeries places each point at its canonical bin position. Points with a
// non-canonical label are skipped.
func binSeries(name string, points []model.BinValue, scale float64, col drawing.Color) (gochart.ContinuousSeries, bool) {
	var xs, ys []float64
	for _, p := range points {
		i, ok := model.BinIndex(p.StatBin)
		if !ok {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, p.Value*scale)
	}
	if len(xs) == 0 {
		return gochart.ContinuousSeries{}, false
	}
	// A continuous series needs two points to establish a range.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	return gochart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: lineStyle(col)}, true
}

func renderLines(w io.Writer, title, yName string, series []gochart.Series) error {
	if len(series) == 0 {
		return ErrNoData
	}
	ch := gochart.Chart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      binAxis(),
		YAxis:      gochart.YAxis{Name: yName, Range: flatRange(series)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

// flatRange returns an explicit y range when every value is equal, since
// go-chart cannot derive ticks from a zero-height range. Otherwise nil, so
// the axis range is computed from the series.
func flatRange(series []gochart.Series) gochart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		cs, ok := s.(gochart.ContinuousSeries)
		if !ok {
			return nil
		}
		for _, y := range cs.YValues {
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
	}
	if lo != hi {
		return nil
	}
	return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// teamLines builds one line per team from pick, coloured by team.
func teamLines(c model.Comparison, pick func([]model.CarryRecord, string) []model.BinValue) []gochart.Series {
	var series []gochart.Series
	for slot, team := range []string{c.Selection.TeamOne, c.Selection.TeamTwo} {
		rows := c.TeamOneRows
		if slot == 1 {
			rows = c.TeamTwoRows
		}
		s, ok := binSeries(team, pick(rows, team), 100, hexColor(model.TeamColor(team, slot)))
		if ok {
			series = append(series, s)
		}
	}
	return series
}

// Shares renders each team's percentage of carries per bin as bars, team
// one's bar to the left of team two's in every bin either team has carries
// in.
func Shares(w io.Writer, c model.Comparison) error {
	one := byBin(aggregator.BinShares(c.TeamOneRows, c.Selection.TeamOne))
	two := byBin(aggregator.BinShares(c.TeamTwoRows, c.Selection.TeamTwo))
	if len(one) == 0 && len(two) == 0 {
		return ErrNoData
	}
	col1 := hexColor(model.TeamColor(c.Selection.TeamOne, 0))
	col2 := hexColor(model.TeamColor(c.Selection.TeamTwo, 1))

	var bars []gochart.Value
	for i, b := range model.Bins() {
		v1, ok1 := one[b]
		v2, ok2 := two[b]
		if !ok1 && !ok2 {
			continue
		}
		label := ""
		if i%5 == 0 {
			label = b
		}
		bars = append(bars, bar(label, v1*100, col1), bar("", v2*100, col2))
	}
	title := fmt.Sprintf("Carry distribution %d: %s (left) vs %s (right)", c.Selection.Season, c.Selection.TeamOne, c.Selection.TeamTwo)
	return renderBars(w, title, "% of carries", bars)
}

func byBin(points []model.BinValue) map[string]float64 {
	out := make(map[string]float64, len(points))
	for _, p := range points {
		if model.IsCanonicalBin(p.StatBin) {
			out[p.StatBin] = p.Value
		}
	}
	return out
}

func bar(label string, v float64, col drawing.Color) gochart.Value {
	return gochart.Value{
		Label: label,
		Value: v,
		Style: gochart.Style{FillColor: col, StrokeColor: col},
	}
}

// Cumulative renders each team's cumulative percentage of carries per bin.
func Cumulative(w io.Writer, c model.Comparison) error {
	title := fmt.Sprintf("Cumulative carries %d: %s vs %s", c.Selection.Season, c.Selection.TeamOne, c.Selection.TeamTwo)
	return renderLines(w, title, "cumulative %", teamLines(c, aggregator.CumulativeSeries))
}

// CumulativeDifference renders team one's cumulative percentage minus team
// two's per bin.
func CumulativeDifference(w io.Writer, c model.Comparison) error {
	title := fmt.Sprintf("Cumulative difference %d: %s - %s", c.Selection.Season, c.Selection.TeamOne, c.Selection.TeamTwo)
	s, ok := binSeries("difference", c.CumulativeDifference, 100, positiveColor)
	if !ok {
		return ErrNoData
	}
	return renderLines(w, title, "percentage points", []gochart.Series{s})
}

// Differences renders the top-k difference rows as bars in their given
// order. Positive bars are steelblue, negative bars orange.
func Differences(w io.Writer, c model.Comparison) error {
	rows := c.TopDifferences
	if len(rows) == 0 {
		return ErrNoData
	}
	bars := make([]gochart.Value, 0, len(rows))
	for _, r := range rows {
		v := r.Difference * 100
		col := positiveColor
		if v < 0 {
			col = negativeColor
		}
		bars = append(bars, bar(r.StatBin, v, col))
	}
	title := fmt.Sprintf("Top %d bin differences %d: %s vs %s", len(rows), c.Selection.Season, c.Selection.TeamOne, c.Selection.TeamTwo)
	return renderBars(w, title, "percentage points", bars)
}

// renderBars draws bars from a zero baseline. The image widens when the
// bars would not fit at the minimum bar width.
func renderBars(w io.Writer, title, yName string, bars []gochart.Value) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	// Pad so a flat set of bars still has a usable range.
	pad := math.Max((hi-lo)*0.1, 1)

	bw := barWidth(len(bars))
	bc := gochart.BarChart{
		Title:        title,
		Width:        max(Width, len(bars)*bw*2+120),
		Height:       Height,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40}},
		BarWidth:     bw,
		BarSpacing:   bw,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:  yName,
			Range: &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Bars: bars,
	}
	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

func barWidth(n int) int {
	w := (Width - 120) / (n * 2)
	return max(8, min(w, 60))
}
