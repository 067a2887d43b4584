package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, time, mode, account, dry_run, params)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Time, r.Mode, r.Account, r.DryRun, r.Params,
	)
	return err
}

func (j *SQLite) RecordMovement(m MovementRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO movements
		(run_id, time, symbol, action, current_value, target_value, amount, reason, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Time, m.Symbol, m.Action,
		m.CurrentValue, m.TargetValue, m.Amount, m.Reason, m.Degraded,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
