package storage

import (
	"testing"

	"github.com/pable/go-rushing-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleCarries() []model.CarryRecord {
	return []model.CarryRecord{
		{Team: "Penn State", Season: 2022, StatBin: "(2 | 4]", Count: 60, CountOverWindowSum: 0.6, CumSumAsWindowPercentage: 1.0},
		{Team: "Penn State", Season: 2022, StatBin: "(0 | 2]", Count: 40, CountOverWindowSum: 0.4, CumSumAsWindowPercentage: 0.4},
		{Team: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Count: 25, CountOverWindowSum: 0.25, CumSumAsWindowPercentage: 0.25},
	}
}

func TestLatestCarries_Empty(t *testing.T) {
	db := openMemDB(t)

	rows, found, err := db.LatestCarries("carries.csv")
	if err != nil {
		t.Fatalf("LatestCarries: %v", err)
	}
	if found || rows != nil {
		t.Errorf("expected nothing stored, got found=%v rows=%v", found, rows)
	}
}

func TestCarriesRoundTrip_PreservesOrder(t *testing.T) {
	db := openMemDB(t)
	in := sampleCarries()

	if err := db.SaveCarries("carries.csv", in); err != nil {
		t.Fatalf("SaveCarries: %v", err)
	}

	got, found, err := db.LatestCarries("carries.csv")
	if err != nil {
		t.Fatalf("LatestCarries: %v", err)
	}
	if !found {
		t.Fatal("expected stored snapshot")
	}
	if len(got) != len(in) {
		t.Fatalf("expected %d rows, got %d", len(in), len(got))
	}
	// Source order must survive, it drives positional pairing and top-k.
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("row %d: want %+v, got %+v", i, in[i], got[i])
		}
	}
}

func TestLatestCarries_NewestWins(t *testing.T) {
	db := openMemDB(t)

	if err := db.SaveCarries("carries.csv", sampleCarries()); err != nil {
		t.Fatalf("SaveCarries: %v", err)
	}
	newer := sampleCarries()[:1]
	if err := db.SaveCarries("carries.csv", newer); err != nil {
		t.Fatalf("SaveCarries: %v", err)
	}

	got, _, err := db.LatestCarries("carries.csv")
	if err != nil {
		t.Fatalf("LatestCarries: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected newest snapshot with 1 row, got %d", len(got))
	}

	// Other identifiers are independent.
	_, found, _ := db.LatestCarries("other.csv")
	if found {
		t.Error("unexpected snapshot for other identifier")
	}
}

func TestComparisonsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	in := []model.ComparisonRecord{
		{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: "(0 | 2]", Difference: 0.03},
		{PrimaryTeam: "Penn State", ComparedAgainstTeam: "Ohio State", Season: 2022, StatBin: "(4 | 6]", Difference: -0.05},
	}
	if err := db.SaveComparisons("comparisons.csv", in); err != nil {
		t.Fatalf("SaveComparisons: %v", err)
	}

	got, found, err := db.LatestComparisons("comparisons.csv")
	if err != nil || !found {
		t.Fatalf("LatestComparisons: found=%v err=%v", found, err)
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("row %d: want %+v, got %+v", i, in[i], got[i])
		}
	}
}

func TestListAndPruneSnapshots(t *testing.T) {
	db := openMemDB(t)

	for i := 0; i < 3; i++ {
		if err := db.SaveCarries("carries.csv", sampleCarries()); err != nil {
			t.Fatalf("SaveCarries: %v", err)
		}
	}
	if err := db.SaveComparisons("carries.csv", nil); err != nil {
		t.Fatalf("SaveComparisons: %v", err)
	}

	snaps, err := db.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(snaps))
	}
	if snaps[0].Kind != model.KindComparisons {
		t.Errorf("expected newest snapshot first, got kind %s", snaps[0].Kind)
	}
	if snaps[1].RowCount != 3 {
		t.Errorf("row count: want 3, got %d", snaps[1].RowCount)
	}

	removed, err := db.PruneSnapshots("carries.csv", 1)
	if err != nil {
		t.Fatalf("PruneSnapshots: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 pruned, got %d", removed)
	}

	_, rows, err := db.QueryRaw("SELECT COUNT(*) FROM carry_records")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "3" {
		t.Errorf("expected 3 carry rows after prune, got %s", rows[0][0])
	}

	// The kept snapshot still loads.
	got, found, err := db.LatestCarries("carries.csv")
	if err != nil || !found || len(got) != 3 {
		t.Errorf("latest after prune: found=%v rows=%d err=%v", found, len(got), err)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.SaveCarries("carries.csv", sampleCarries())

	cols, rows, err := db.QueryRaw("SELECT team, SUM(count) AS total FROM carry_records GROUP BY team ORDER BY team")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[1] != "total" {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 2 || rows[0][0] != "Ohio State" || rows[0][1] != "25" || rows[1][1] != "100" {
		t.Errorf("unexpected rows %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT * FROM nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}
