package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	runs, movements *csv.Writer
	rf, mf          *os.File
}

func NewCSV(runsPath, movementsPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	mf, err := os.Create(movementsPath)
	if err != nil {
		rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	mw := csv.NewWriter(mf)

	if err := rw.Write([]string{"run_id", "time", "mode", "account", "dry_run", "params"}); err != nil {
		return nil, err
	}
	if err := mw.Write([]string{"run_id", "time", "symbol", "action", "current_value", "target_value", "amount", "reason", "degraded"}); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	mw.Flush()
	if err := mw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, mw, rf, mf}, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Time.Format(time.RFC3339),
		r.Mode,
		r.Account,
		strconv.FormatBool(r.DryRun),
		r.Params,
	})
	if err != nil {
		return err
	}

	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordMovement(m MovementRecord) error {
	err := j.movements.Write([]string{
		m.RunID,
		m.Time.Format(time.RFC3339),
		m.Symbol,
		m.Action,
		f(m.CurrentValue),
		f(m.TargetValue),
		f(m.Amount),
		m.Reason,
		strconv.FormatBool(m.Degraded),
	})
	if err != nil {
		return err
	}

	j.movements.Flush()
	return j.movements.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.movements.Flush()
	if err := j.movements.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.mf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
