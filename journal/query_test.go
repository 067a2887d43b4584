package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(id string, ts time.Time) RunRecord {
	return RunRecord{
		RunID:   id,
		Time:    ts,
		Mode:    "rebalance",
		Account: "DU123",
		Params:  "threshold=$5.00",
	}
}

func testMovement(runID, symbol string, ts time.Time) MovementRecord {
	return MovementRecord{
		RunID:        runID,
		Time:         ts,
		Symbol:       symbol,
		Action:       "BUY",
		CurrentValue: 480,
		TargetValue:  500,
		Amount:       20,
		Reason:       "test",
	}
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	want := testRun("R123", ts)
	require.NoError(t, j.RecordRun(want))

	got, err := j.GetRun("R123")
	require.NoError(t, err)

	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, got.Time.Equal(want.Time))
	assert.Equal(t, want.Mode, got.Mode)
	assert.Equal(t, want.Account, got.Account)
	assert.Equal(t, want.Params, got.Params)
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetRun("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRunsNewestFirst(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordRun(testRun("R1", base)))
	require.NoError(t, j.RecordRun(testRun("R3", base.Add(2*time.Hour))))
	require.NoError(t, j.RecordRun(testRun("R2", base.Add(time.Hour))))

	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "R3", runs[0].RunID)
	assert.Equal(t, "R2", runs[1].RunID)
	assert.Equal(t, "R1", runs[2].RunID)
}

func TestListRunsLimit(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"R1", "R2", "R3"} {
		require.NoError(t, j.RecordRun(testRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := j.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "R3", runs[0].RunID)
	assert.Equal(t, "R2", runs[1].RunID)
}

func TestListMovementsByRunKeepsOrder(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)
	// insertion order is submission order, not alphabetical
	require.NoError(t, j.RecordMovement(testMovement("R1", "MSFT", ts)))
	require.NoError(t, j.RecordMovement(testMovement("R1", "AAPL", ts)))
	require.NoError(t, j.RecordMovement(testMovement("R2", "GOOG", ts)))

	got, err := j.ListMovementsByRun("R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MSFT", got[0].Symbol)
	assert.Equal(t, "AAPL", got[1].Symbol)
}

func TestListMovementsBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordMovement(testMovement("R1", "EARLY", base.Add(1*time.Hour))))
	require.NoError(t, j.RecordMovement(testMovement("R2", "MIDDLE", base.Add(5*time.Hour))))
	require.NoError(t, j.RecordMovement(testMovement("R3", "LATE", base.Add(10*time.Hour))))
	require.NoError(t, j.RecordMovement(testMovement("R4", "NEXTDAY", base.Add(24*time.Hour))))

	got, err := j.ListMovementsBetween(base.Add(3*time.Hour), base.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MIDDLE", got[0].Symbol)
	assert.Equal(t, "LATE", got[1].Symbol)
}

func TestListMovementsBetweenBoundaries(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordMovement(testMovement("R1", "AAPL", ts)))

	// start is inclusive
	got, err := j.ListMovementsBetween(ts, ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// end is exclusive
	got, err = j.ListMovementsBetween(ts.Add(-time.Hour), ts)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListMovementsBetweenEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	got, err := j.ListMovementsBetween(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Empty(t, got)
}
