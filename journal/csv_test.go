package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	runsPath := filepath.Join(dir, "runs.csv")
	movementsPath := filepath.Join(dir, "movements.csv")

	j, err := NewCSV(runsPath, movementsPath)
	require.NoError(t, err)

	return j, runsPath, movementsPath
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, runsPath, movementsPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	runs := readCSV(t, runsPath)
	require.NotEmpty(t, runs)
	assert.Equal(t, []string{"run_id", "time", "mode", "account", "dry_run", "params"}, runs[0])

	movements := readCSV(t, movementsPath)
	require.NotEmpty(t, movements)
	assert.Equal(t, []string{"run_id", "time", "symbol", "action", "current_value", "target_value", "amount", "reason", "degraded"}, movements[0])
}

func TestCSVJournalRecordRun(t *testing.T) {
	t.Parallel()

	j, runsPath, _ := newTestCSV(t)

	ts := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	err := j.RecordRun(RunRecord{
		RunID:   "R1",
		Time:    ts,
		Mode:    "rebalance",
		Account: "DU123",
		DryRun:  true,
		Params:  "threshold=$5.00",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readCSV(t, runsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"R1", "2025-03-04T15:30:00Z", "rebalance", "DU123", "true", "threshold=$5.00"}, rows[1])
}

func TestCSVJournalRecordMovement(t *testing.T) {
	t.Parallel()

	j, _, movementsPath := newTestCSV(t)

	ts := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	err := j.RecordMovement(MovementRecord{
		RunID:        "R1",
		Time:         ts,
		Symbol:       "AAPL",
		Action:       "BUY",
		CurrentValue: 480,
		TargetValue:  500,
		Amount:       20,
		Reason:       "order 10",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readCSV(t, movementsPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"R1", "2025-03-04T15:30:00Z", "AAPL", "BUY", "480.00", "500.00", "20.00", "order 10", "false"}, rows[1])
}

func TestCSVJournalMultipleMovements(t *testing.T) {
	t.Parallel()

	j, _, movementsPath := newTestCSV(t)

	ts := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)
	for _, sym := range []string{"MSFT", "AAPL", "GOOG"} {
		require.NoError(t, j.RecordMovement(MovementRecord{
			RunID: "R1", Time: ts, Symbol: sym, Action: "BUY", Amount: 20, Reason: "test",
		}))
	}
	assert.NoError(t, j.Close())

	rows := readCSV(t, movementsPath)
	require.Len(t, rows, 4)
	assert.Equal(t, "MSFT", rows[1][2])
	assert.Equal(t, "AAPL", rows[2][2])
	assert.Equal(t, "GOOG", rows[3][2])
}
