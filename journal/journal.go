// Package journal keeps a durable record of every execution run and the
// movements it produced, queryable after the fact.
package journal

import (
	"time"

	"github.com/Tvpower/seekingQuant/portfolio"
)

// RunRecord is the header row for one engine run.
type RunRecord struct {
	RunID   string
	Time    time.Time
	Mode    string // rebalance, buy, order, demo
	Account string
	DryRun  bool
	Params  string
}

// MovementRecord is one journaled movement, tied to its run.
type MovementRecord struct {
	RunID        string
	Time         time.Time
	Symbol       string
	Action       string
	CurrentValue float64
	TargetValue  float64
	Amount       float64
	Reason       string
	Degraded     bool
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordMovement(MovementRecord) error
	Close() error
}

// Append writes a run header and all of its movements.
func Append(j Journal, run RunRecord, movements []portfolio.Movement) error {
	if err := j.RecordRun(run); err != nil {
		return err
	}
	for _, mv := range movements {
		rec := MovementRecord{
			RunID:        run.RunID,
			Time:         run.Time,
			Symbol:       mv.Symbol,
			Action:       string(mv.Action),
			CurrentValue: mv.CurrentValue,
			TargetValue:  mv.TargetValue,
			Amount:       mv.Amount,
			Reason:       mv.Reason,
			Degraded:     mv.Degraded,
		}
		if err := j.RecordMovement(rec); err != nil {
			return err
		}
	}
	return nil
}
