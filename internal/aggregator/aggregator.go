package aggregator

import (
	"fmt"
	"math"

	"github.com/pable/go-rushing-metrics/internal/model"
)

// TotalCarries sums Count over the rows belonging to team. Returns 0 when
// the team has no rows.
func TotalCarries(rows []model.CarryRecord, team string) int {
	total := 0
	for _, r := range rows {
		if r.Team == team {
			total += r.Count
		}
	}
	return total
}

// CumulativeDifference pairs t1 and t2 by position and returns, for each
// bucket in bins, t1's cumulative share minus t2's.
//
// Both inputs must already hold exactly one row per bucket in bins order.
// Rows are paired by index, not by StatBin: if either team is missing a
// bucket the remaining points are mis-paired. Use Aligned to check the
// precondition, or CumulativeDifferenceByBin to join on the label instead.
func CumulativeDifference(t1, t2 []model.CarryRecord, bins []string) []model.BinValue {
	n := min(len(t1), len(t2), len(bins))
	out := make([]model.BinValue, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.BinValue{
			StatBin: bins[i],
			Value:   t1[i].CumSumAsWindowPercentage - t2[i].CumSumAsWindowPercentage,
		})
	}
	return out
}

// CumulativeDifferenceByBin joins t1 and t2 on StatBin and returns the
// cumulative share difference for every bucket in bins present on both sides.
func CumulativeDifferenceByBin(t1, t2 []model.CarryRecord, bins []string) []model.BinValue {
	left := cumulativeByBin(t1)
	right := cumulativeByBin(t2)

	out := make([]model.BinValue, 0, len(bins))
	for _, b := range bins {
		l, ok1 := left[b]
		r, ok2 := right[b]
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, model.BinValue{StatBin: b, Value: l - r})
	}
	return out
}

func cumulativeByBin(rows []model.CarryRecord) map[string]float64 {
	m := make(map[string]float64, len(rows))
	for _, r := range rows {
		if _, dup := m[r.StatBin]; dup {
			continue // first row wins, same as positional order
		}
		m[r.StatBin] = r.CumSumAsWindowPercentage
	}
	return m
}

// Aligned reports whether t1 and t2 both list exactly the buckets in bins,
// in that order. When true, CumulativeDifference and
// CumulativeDifferenceByBin agree.
func Aligned(t1, t2 []model.CarryRecord, bins []string) bool {
	return coversInOrder(t1, bins) && coversInOrder(t2, bins)
}

func coversInOrder(rows []model.CarryRecord, bins []string) bool {
	if len(rows) != len(bins) {
		return false
	}
	for i, r := range rows {
		if r.StatBin != bins[i] {
			return false
		}
	}
	return true
}

// TopKDifferences returns the first k rows in their existing order. No
// sorting is applied; ordering is whatever produced the comparison table.
func TopKDifferences(rows []model.ComparisonRecord, k int) []model.ComparisonRecord {
	if k <= 0 {
		return []model.ComparisonRecord{}
	}
	if k > len(rows) {
		k = len(rows)
	}
	out := make([]model.ComparisonRecord, k)
	copy(out, rows[:k])
	return out
}

// BinShares returns team's per-bin share of carries, in row order.
func BinShares(rows []model.CarryRecord, team string) []model.BinValue {
	var out []model.BinValue
	for _, r := range rows {
		if r.Team == team {
			out = append(out, model.BinValue{StatBin: r.StatBin, Value: r.CountOverWindowSum})
		}
	}
	return out
}

// CumulativeSeries returns team's cumulative share per bin, in row order.
func CumulativeSeries(rows []model.CarryRecord, team string) []model.BinValue {
	var out []model.BinValue
	for _, r := range rows {
		if r.Team == team {
			out = append(out, model.BinValue{StatBin: r.StatBin, Value: r.CumSumAsWindowPercentage})
		}
	}
	return out
}

// CheckCumulative verifies that a single team-season's cumulative series
// never decreases, stays within [0, 1+tol] and ends within tol of 1.0.
func CheckCumulative(rows []model.CarryRecord, tol float64) error {
	if len(rows) == 0 {
		return nil
	}
	prev := 0.0
	for i, r := range rows {
		v := r.CumSumAsWindowPercentage
		if math.IsNaN(v) || v < -tol || v > 1+tol {
			return fmt.Errorf("bin %s: cumulative share %.4f out of range", r.StatBin, v)
		}
		if i > 0 && v+tol < prev {
			return fmt.Errorf("bin %s: cumulative share decreased from %.4f to %.4f", r.StatBin, prev, v)
		}
		prev = v
	}
	if math.Abs(prev-1.0) > tol {
		return fmt.Errorf("cumulative share ends at %.4f, want 1.0", prev)
	}
	return nil
}
