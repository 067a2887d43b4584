package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetRun returns a single run header by id.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, time, mode, account, dry_run, params
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Time,
		&rec.Mode,
		&rec.Account,
		&rec.DryRun,
		&rec.Params,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 means
// no limit.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	q := `
		SELECT run_id, time, mode, account, dry_run, params
		FROM runs
		ORDER BY time DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Time,
			&rec.Mode,
			&rec.Account,
			&rec.DryRun,
			&rec.Params,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMovementsByRun returns a run's movements in insertion order.
func (j *SQLite) ListMovementsByRun(runID string) ([]MovementRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, symbol, action, current_value, target_value, amount, reason, degraded
		FROM movements
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListMovementsBetween returns movements recorded within [start, end),
// oldest first.
func (j *SQLite) ListMovementsBetween(start, end time.Time) ([]MovementRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, symbol, action, current_value, target_value, amount, reason, degraded
		FROM movements
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, rowid ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows *sql.Rows) ([]MovementRecord, error) {
	var out []MovementRecord
	for rows.Next() {
		var rec MovementRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Time,
			&rec.Symbol,
			&rec.Action,
			&rec.CurrentValue,
			&rec.TargetValue,
			&rec.Amount,
			&rec.Reason,
			&rec.Degraded,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
