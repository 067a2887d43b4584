package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tvpower/seekingQuant/broker"
)

func valued(sym string, value float64) broker.Position {
	return broker.Position{Symbol: sym, MarketValue: value}
}

func planOf(t *testing.T, ops []Operation) map[string]Operation {
	t.Helper()
	out := make(map[string]Operation, len(ops))
	for _, op := range ops {
		out[op.Symbol] = op
	}
	require.Len(t, out, len(ops), "one operation per symbol")
	return out
}

func TestPlan_HoldWithinThreshold(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{"AAPL": valued("AAPL", 498)}
	targets := []Target{{Symbol: "AAPL", Value: 500}}

	ops := Plan(current, targets, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 1)
	assert.Equal(t, ActionHold, ops[0].Action)
	assert.Zero(t, ops[0].Amount)
}

func TestPlan_BuyNewIsFullTarget(t *testing.T) {
	t.Parallel()

	ops := Plan(nil, []Target{{Symbol: "GOOG", Value: 500}}, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 1)
	assert.Equal(t, ActionBuyNew, ops[0].Action)
	assert.Equal(t, 500.0, ops[0].Amount)
	assert.Equal(t, 500.0, ops[0].TargetValue)
	assert.Zero(t, ops[0].CurrentValue)
}

func TestPlan_SellAllIsFullPosition(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{"MSFT": valued("MSFT", 520)}

	ops := Plan(current, nil, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 1)
	assert.Equal(t, ActionSellAll, ops[0].Action)
	assert.Equal(t, 520.0, ops[0].Amount)
	assert.Equal(t, 520.0, ops[0].CurrentValue)
}

func TestPlan_Deltas(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{
		"AAPL": valued("AAPL", 480),
		"MSFT": valued("MSFT", 520),
	}
	targets := []Target{
		{Symbol: "AAPL", Value: 500},
		{Symbol: "MSFT", Value: 500},
		{Symbol: "GOOG", Value: 500},
	}

	ops := Plan(current, targets, PlanConfig{MinDelta: 5, Policy: SellsFirst})
	bySym := planOf(t, ops)

	assert.Equal(t, ActionBuy, bySym["AAPL"].Action)
	assert.Equal(t, 20.0, bySym["AAPL"].Amount)
	assert.Equal(t, ActionSell, bySym["MSFT"].Action)
	assert.Equal(t, 20.0, bySym["MSFT"].Amount)
	assert.Equal(t, ActionBuyNew, bySym["GOOG"].Action)
	assert.Equal(t, 500.0, bySym["GOOG"].Amount)

	// sells lead, buys follow alphabetically
	require.Len(t, ops, 3)
	assert.Equal(t, "MSFT", ops[0].Symbol)
	assert.Equal(t, "AAPL", ops[1].Symbol)
	assert.Equal(t, "GOOG", ops[2].Symbol)
}

func TestPlan_BuysFirstPolicy(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{
		"AAPL": valued("AAPL", 480),
		"MSFT": valued("MSFT", 520),
	}
	targets := []Target{
		{Symbol: "AAPL", Value: 500},
		{Symbol: "MSFT", Value: 500},
	}

	ops := Plan(current, targets, PlanConfig{MinDelta: 5, Policy: BuysFirst})
	require.Len(t, ops, 2)
	assert.Equal(t, ActionBuy, ops[0].Action)
	assert.Equal(t, ActionSell, ops[1].Action)
}

func TestPlan_Idempotent(t *testing.T) {
	t.Parallel()

	targets := []Target{
		{Symbol: "AAPL", Value: 500},
		{Symbol: "MSFT", Value: 500},
		{Symbol: "GOOG", Value: 500},
	}
	// the state a successful run leaves behind
	settled := map[string]broker.Position{
		"AAPL": valued("AAPL", 500),
		"MSFT": valued("MSFT", 500),
		"GOOG": valued("GOOG", 500),
	}

	ops := Plan(settled, targets, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, ActionHold, op.Action, "second run must be all holds")
	}
}

func TestPlan_ExactMatchHoldsAtZeroThreshold(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{"AAPL": valued("AAPL", 500)}
	targets := []Target{{Symbol: "AAPL", Value: 500}}

	ops := Plan(current, targets, PlanConfig{MinDelta: 0})
	require.Len(t, ops, 1)
	assert.Equal(t, ActionHold, ops[0].Action)
}

func TestPlan_NormalizesTargetSymbols(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{"BRK.B": valued("BRK.B", 480)}
	targets := []Target{{Symbol: "BRK B", Value: 500}}

	ops := Plan(current, targets, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 1)
	assert.Equal(t, "BRK.B", ops[0].Symbol)
	assert.Equal(t, ActionBuy, ops[0].Action)
}

func TestPlan_DegradedCarriesThrough(t *testing.T) {
	t.Parallel()

	current := map[string]broker.Position{
		"DARK": {Symbol: "DARK", MarketValue: 150, Degraded: true},
	}
	targets := []Target{{Symbol: "DARK", Value: 150}}

	ops := Plan(current, targets, PlanConfig{MinDelta: 5})
	require.Len(t, ops, 1)
	assert.True(t, ops[0].Degraded)
}

func TestPlan_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Plan(nil, nil, PlanConfig{MinDelta: 5}))
}
