package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/types"

	"github.com/pable/go-rushing-metrics/internal/model"
)

// ErrMalformed is wrapped by every schema or value error found while decoding.
var ErrMalformed = errors.New("malformed table")

// Column names used by the source CSVs.
const (
	colTeam         = "team"
	colSeason       = "season"
	colStatBin      = "statBin"
	colCount        = "count"
	colShare        = "count_over_window_sum"
	colCumShare     = "cum_sum_as_window_percentage"
	colPrimary      = "primary_team"
	colComparedWith = "compared_against_team"
	colDifference   = "difference"
)

// unnamedPrefix names header cells left blank, such as the index column
// pandas writes by default. Those columns are read but never used.
const unnamedPrefix = "unnamed_"

// DecodeCarries parses the per-bin carry table.
func DecodeCarries(r io.Reader) ([]model.CarryRecord, error) {
	f, err := readFrame(r, colTeam, colSeason, colStatBin, colCount, colShare, colCumShare)
	if err != nil {
		return nil, err
	}
	if f.qf.Len() == 0 {
		return []model.CarryRecord{}, nil
	}

	teams, err := f.textColumn(colTeam)
	if err != nil {
		return nil, err
	}
	seasons, err := f.intColumn(colSeason)
	if err != nil {
		return nil, err
	}
	bins, err := f.textColumn(colStatBin)
	if err != nil {
		return nil, err
	}
	counts, err := f.intColumn(colCount)
	if err != nil {
		return nil, err
	}
	shares, err := f.floatColumn(colShare)
	if err != nil {
		return nil, err
	}
	cums, err := f.floatColumn(colCumShare)
	if err != nil {
		return nil, err
	}

	out := make([]model.CarryRecord, f.qf.Len())
	for i := range out {
		rec := model.CarryRecord{
			Team:                     teams[i],
			Season:                   seasons[i],
			StatBin:                  bins[i],
			Count:                    counts[i],
			CountOverWindowSum:       shares[i],
			CumSumAsWindowPercentage: cums[i],
		}
		if err := validateCarry(i, rec); err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// DecodeComparisons parses the team-pair difference table.
func DecodeComparisons(r io.Reader) ([]model.ComparisonRecord, error) {
	f, err := readFrame(r, colPrimary, colComparedWith, colSeason, colStatBin, colDifference)
	if err != nil {
		return nil, err
	}
	if f.qf.Len() == 0 {
		return []model.ComparisonRecord{}, nil
	}

	primaries, err := f.textColumn(colPrimary)
	if err != nil {
		return nil, err
	}
	others, err := f.textColumn(colComparedWith)
	if err != nil {
		return nil, err
	}
	seasons, err := f.intColumn(colSeason)
	if err != nil {
		return nil, err
	}
	bins, err := f.textColumn(colStatBin)
	if err != nil {
		return nil, err
	}
	diffs, err := f.floatColumn(colDifference)
	if err != nil {
		return nil, err
	}

	out := make([]model.ComparisonRecord, f.qf.Len())
	for i := range out {
		rec := model.ComparisonRecord{
			PrimaryTeam:         primaries[i],
			ComparedAgainstTeam: others[i],
			Season:              seasons[i],
			StatBin:             bins[i],
			Difference:          diffs[i],
		}
		if rec.PrimaryTeam == "" || rec.ComparedAgainstTeam == "" || rec.StatBin == "" {
			return nil, fmt.Errorf("%w: row %d: empty team or statBin", ErrMalformed, i+1)
		}
		if math.IsNaN(rec.Difference) {
			return nil, fmt.Errorf("%w: row %d: difference is not a number", ErrMalformed, i+1)
		}
		out[i] = rec
	}
	return out, nil
}

func validateCarry(i int, rec model.CarryRecord) error {
	switch {
	case rec.Team == "" || rec.StatBin == "":
		return fmt.Errorf("%w: row %d: empty team or statBin", ErrMalformed, i+1)
	case rec.Count < 0:
		return fmt.Errorf("%w: row %d: negative count %d", ErrMalformed, i+1, rec.Count)
	case math.IsNaN(rec.CountOverWindowSum) || math.IsNaN(rec.CumSumAsWindowPercentage):
		return fmt.Errorf("%w: row %d: share is not a number", ErrMalformed, i+1)
	}
	return nil
}

// frame wraps a parsed qframe with typed column accessors.
type frame struct {
	qf      qframe.QFrame
	colType map[string]types.DataType
}

// readFrame parses r and checks that every required column is present.
// A header-only table yields an empty frame whose column types are unknown.
func readFrame(r io.Reader, required ...string) (*frame, error) {
	r, err := nameBlankColumns(r)
	if err != nil {
		return nil, err
	}
	qf := qframe.ReadCSV(r)
	if qf.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, qf.Err)
	}
	f := &frame{qf: qf, colType: qf.ColumnTypeMap()}

	var missing []string
	for _, col := range required {
		if _, ok := f.colType[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformed, strings.Join(missing, ", "))
	}
	return f, nil
}

func (f *frame) textColumn(col string) ([]string, error) {
	out := make([]string, f.qf.Len())
	switch f.colType[col] {
	case types.String:
		view, err := f.qf.StringView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			if p := view.ItemAt(i); p != nil {
				out[i] = strings.TrimSpace(*p)
			}
		}
	case types.Enum:
		view, err := f.qf.EnumView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			if p := view.ItemAt(i); p != nil {
				out[i] = strings.TrimSpace(*p)
			}
		}
	default:
		return nil, fmt.Errorf("%w: column %s: expected text, got %s", ErrMalformed, col, f.colType[col])
	}
	return out, nil
}

// intColumn accepts integer columns and float columns holding whole numbers,
// since CSV writers often emit counts as "12.0".
func (f *frame) intColumn(col string) ([]int, error) {
	out := make([]int, f.qf.Len())
	switch f.colType[col] {
	case types.Int:
		view, err := f.qf.IntView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = view.ItemAt(i)
		}
	case types.Float:
		view, err := f.qf.FloatView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			v := view.ItemAt(i)
			if math.IsNaN(v) || v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: column %s row %d: %v is not a whole number", ErrMalformed, col, i+1, v)
			}
			out[i] = int(v)
		}
	default:
		return nil, fmt.Errorf("%w: column %s: expected integer, got %s", ErrMalformed, col, f.colType[col])
	}
	return out, nil
}

func (f *frame) floatColumn(col string) ([]float64, error) {
	out := make([]float64, f.qf.Len())
	switch f.colType[col] {
	case types.Float:
		view, err := f.qf.FloatView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = view.ItemAt(i)
		}
	case types.Int:
		view, err := f.qf.IntView(col)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(view.ItemAt(i))
		}
	default:
		return nil, fmt.Errorf("%w: column %s: expected number, got %s", ErrMalformed, col, f.colType[col])
	}
	return out, nil
}

// nameBlankColumns rewrites the header line so every column has a name.
// Blank cells become unnamed_<i>; the body is passed through untouched.
func nameBlankColumns(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return strings.NewReader(line), nil
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	blank := false
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			header[i] = unnamedPrefix + strconv.Itoa(i)
			blank = true
		}
	}
	if !blank {
		return io.MultiReader(strings.NewReader(line), br), nil
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return io.MultiReader(&buf, br), nil
}
