package ibgw_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tvpower/seekingQuant/broker/sim"
)

func TestPositions_ValuedAtMarket(t *testing.T) {
	t.Parallel()

	gw, cfg := startGateway(t)
	gw.SetPositions(
		sim.PositionSpec{Account: "DU111111", Symbol: "AAPL", Quantity: 2, AvgCost: 210},
		sim.PositionSpec{Account: "DU111111", Symbol: "BRK B", Quantity: 1, AvgCost: 480},
		sim.PositionSpec{Account: "DU111111", Symbol: "FLAT", Quantity: 0, AvgCost: 10},
	)
	gw.SetLast("AAPL", 240)
	gw.SetLast("BRK.B", 500)

	s := dialTest(t, cfg)
	held, err := s.Positions(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, held, 2, "zero-quantity rows are dropped")

	aapl := held["AAPL"]
	assert.Equal(t, 2.0, aapl.Quantity)
	assert.Equal(t, 240.0, aapl.Price)
	assert.Equal(t, 480.0, aapl.MarketValue)
	assert.False(t, aapl.Degraded)

	brk, ok := held["BRK.B"]
	require.True(t, ok, "gateway share-class symbols are normalized")
	assert.Equal(t, 500.0, brk.MarketValue)
}

func TestPositions_DegradedFallback(t *testing.T) {
	t.Parallel()

	gw, cfg := startGateway(t)
	cfg.BulkQuoteTimeout = 100 * time.Millisecond
	gw.SetPositions(
		sim.PositionSpec{Account: "DU111111", Symbol: "AAPL", Quantity: 2, AvgCost: 210},
		sim.PositionSpec{Account: "DU111111", Symbol: "DARK", Quantity: 3, AvgCost: 50},
	)
	gw.SetLast("AAPL", 240)

	s := dialTest(t, cfg)
	held, err := s.Positions(context.Background(), "")
	require.NoError(t, err, "one unpriced symbol must not fail the call")

	dark := held["DARK"]
	assert.True(t, dark.Degraded)
	assert.Equal(t, 150.0, dark.MarketValue, "degraded positions fall back to cost basis")
	assert.False(t, held["AAPL"].Degraded)
}

func TestPositions_AccountFilter(t *testing.T) {
	t.Parallel()

	gw, cfg := startGateway(t)
	gw.SetPositions(
		sim.PositionSpec{Account: "DU111111", Symbol: "AAPL", Quantity: 2, AvgCost: 210},
		sim.PositionSpec{Account: "DU222222", Symbol: "MSFT", Quantity: 1, AvgCost: 480},
	)
	gw.SetLast("AAPL", 240)
	gw.SetLast("MSFT", 500)

	s := dialTest(t, cfg)
	held, err := s.Positions(context.Background(), "DU111111")
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Contains(t, held, "AAPL")
}

func TestPositions_EmptyPortfolio(t *testing.T) {
	t.Parallel()

	_, cfg := startGateway(t)

	s := dialTest(t, cfg)
	held, err := s.Positions(context.Background(), "")
	require.NoError(t, err, "an empty portfolio is not an error")
	assert.Empty(t, held)
}
