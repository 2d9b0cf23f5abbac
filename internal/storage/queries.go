package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-rushing-metrics/internal/model"
)

// timeLayout is fixed-width so fetched_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SaveCarries stores rows as a new carries snapshot for identifier.
func (db *DB) SaveCarries(identifier string, rows []model.CarryRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := insertSnapshot(tx, model.KindCarries, identifier, len(rows))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO carry_records(
			snapshot_id, seq, team, season, stat_bin, count,
			count_over_window_sum, cum_sum_as_window_percentage
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err = stmt.Exec(
			id, i, r.Team, r.Season, r.StatBin, r.Count,
			r.CountOverWindowSum, r.CumSumAsWindowPercentage,
		)
		if err != nil {
			return fmt.Errorf("insert carry_records row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SaveComparisons stores rows as a new comparisons snapshot for identifier.
func (db *DB) SaveComparisons(identifier string, rows []model.ComparisonRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := insertSnapshot(tx, model.KindComparisons, identifier, len(rows))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO comparison_records(
			snapshot_id, seq, primary_team, compared_against_team,
			season, stat_bin, difference
		) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err = stmt.Exec(
			id, i, r.PrimaryTeam, r.ComparedAgainstTeam,
			r.Season, r.StatBin, r.Difference,
		)
		if err != nil {
			return fmt.Errorf("insert comparison_records row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func insertSnapshot(tx *sql.Tx, kind, identifier string, rowCount int) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(`
		INSERT INTO snapshots(id, kind, identifier, fetched_at, row_count)
		VALUES (?, ?, ?, ?, ?)`,
		id, kind, identifier, time.Now().UTC().Format(timeLayout), rowCount,
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// latestSnapshotID returns the newest snapshot id for kind/identifier, or "".
func (db *DB) latestSnapshotID(kind, identifier string) (string, error) {
	var id string
	err := db.conn.QueryRow(`
		SELECT id FROM snapshots
		WHERE kind = ? AND identifier = ?
		ORDER BY fetched_at DESC, rowid DESC LIMIT 1`, kind, identifier).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

// LatestCarries returns the rows of the newest carries snapshot for
// identifier in their original order. found is false when none is stored.
func (db *DB) LatestCarries(identifier string) ([]model.CarryRecord, bool, error) {
	id, err := db.latestSnapshotID(model.KindCarries, identifier)
	if err != nil || id == "" {
		return nil, false, err
	}

	rows, err := db.conn.Query(`
		SELECT team, season, stat_bin, count, count_over_window_sum, cum_sum_as_window_percentage
		FROM carry_records WHERE snapshot_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := make([]model.CarryRecord, 0)
	for rows.Next() {
		var r model.CarryRecord
		if err := rows.Scan(&r.Team, &r.Season, &r.StatBin, &r.Count,
			&r.CountOverWindowSum, &r.CumSumAsWindowPercentage); err != nil {
			return nil, false, err
		}
		out = append(out, r)
	}
	return out, true, rows.Err()
}

// LatestComparisons returns the rows of the newest comparisons snapshot for
// identifier in their original order. found is false when none is stored.
func (db *DB) LatestComparisons(identifier string) ([]model.ComparisonRecord, bool, error) {
	id, err := db.latestSnapshotID(model.KindComparisons, identifier)
	if err != nil || id == "" {
		return nil, false, err
	}

	rows, err := db.conn.Query(`
		SELECT primary_team, compared_against_team, season, stat_bin, difference
		FROM comparison_records WHERE snapshot_id = ?
		ORDER BY seq`, id)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out := make([]model.ComparisonRecord, 0)
	for rows.Next() {
		var r model.ComparisonRecord
		if err := rows.Scan(&r.PrimaryTeam, &r.ComparedAgainstTeam, &r.Season,
			&r.StatBin, &r.Difference); err != nil {
			return nil, false, err
		}
		out = append(out, r)
	}
	return out, true, rows.Err()
}

// ListSnapshots returns all stored snapshots, newest first.
func (db *DB) ListSnapshots() ([]model.Snapshot, error) {
	rows, err := db.conn.Query(`
		SELECT id, kind, identifier, fetched_at, row_count
		FROM snapshots ORDER BY fetched_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var s model.Snapshot
		var fetchedAt string
		if err := rows.Scan(&s.ID, &s.Kind, &s.Identifier, &fetchedAt, &s.RowCount); err != nil {
			return nil, err
		}
		s.FetchedAt, _ = time.Parse(timeLayout, fetchedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneSnapshots deletes all but the newest keep snapshots of each kind for
// identifier and returns how many were removed.
func (db *DB) PruneSnapshots(identifier string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	var stale []string
	for _, kind := range []string{model.KindCarries, model.KindComparisons} {
		ids, err := db.snapshotIDs(kind, identifier)
		if err != nil {
			return 0, err
		}
		if len(ids) > keep {
			stale = append(stale, ids[keep:]...)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, id := range stale {
		for _, q := range []string{
			"DELETE FROM carry_records WHERE snapshot_id = ?",
			"DELETE FROM comparison_records WHERE snapshot_id = ?",
			"DELETE FROM snapshots WHERE id = ?",
		} {
			if _, err := tx.Exec(q, id); err != nil {
				return 0, fmt.Errorf("prune snapshot %s: %w", id, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (db *DB) snapshotIDs(kind, identifier string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT id FROM snapshots
		WHERE kind = ? AND identifier = ?
		ORDER BY fetched_at DESC, rowid DESC`, kind, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and rows
// rendered as strings. NULL values render as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				rec[i] = "NULL"
			case []byte:
				rec[i] = string(x)
			default:
				rec[i] = fmt.Sprint(x)
			}
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}
