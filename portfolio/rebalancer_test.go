package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tvpower/seekingQuant/broker"
)

type fakePlacer struct {
	mu    sync.Mutex
	calls []broker.OrderSpec
	errs  map[string]error
	next  int64
}

func (f *fakePlacer) PlaceDollarOrder(_ context.Context, spec broker.OrderSpec) (broker.OrderAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, spec)
	if err, ok := f.errs[spec.Symbol]; ok {
		return broker.OrderAck{}, err
	}
	f.next++
	return broker.OrderAck{
		OrderID:  f.next,
		Symbol:   spec.Symbol,
		Action:   spec.Action,
		Quantity: spec.Amount / 100,
		Price:    100,
		Status:   "Submitted",
	}, nil
}

func newTestRebalancer(placer OrderPlacer, cfg RebalancerConfig) *Rebalancer {
	return NewRebalancer(placer, cfg, zerolog.Nop())
}

func TestExecute_SubmitsInGivenOrder(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{}
	r := newTestRebalancer(placer, RebalancerConfig{Account: "DU123"})

	ops := []Operation{
		{Symbol: "MSFT", Action: ActionSell, Amount: 20},
		{Symbol: "AAPL", Action: ActionBuy, Amount: 20},
		{Symbol: "GOOG", Action: ActionBuyNew, Amount: 500},
	}
	movements := r.Execute(context.Background(), ops)
	require.Len(t, movements, 3)

	require.Len(t, placer.calls, 3)
	assert.Equal(t, "MSFT", placer.calls[0].Symbol)
	assert.Equal(t, broker.Sell, placer.calls[0].Action)
	assert.Equal(t, "AAPL", placer.calls[1].Symbol)
	assert.Equal(t, broker.Buy, placer.calls[1].Action)
	assert.Equal(t, "GOOG", placer.calls[2].Symbol)
	assert.Equal(t, broker.Buy, placer.calls[2].Action)
	assert.Equal(t, "DU123", placer.calls[0].Account)

	assert.Equal(t, ActionSell, movements[0].Action)
	assert.Contains(t, movements[0].Reason, "order 1: Submitted")
	assert.Contains(t, movements[2].Reason, "order 3: Submitted")
}

func TestExecute_HoldsAreRecordedNotSubmitted(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{}
	r := newTestRebalancer(placer, RebalancerConfig{})

	ops := []Operation{
		{Symbol: "AAPL", Action: ActionHold, CurrentValue: 498, TargetValue: 500},
		{Symbol: "DARK", Action: ActionHold, CurrentValue: 150, TargetValue: 150, Degraded: true},
	}
	movements := r.Execute(context.Background(), ops)

	assert.Empty(t, placer.calls)
	require.Len(t, movements, 2)
	assert.Equal(t, "within threshold", movements[0].Reason)
	assert.Equal(t, "within threshold (cost-basis valuation)", movements[1].Reason)
}

func TestExecute_FailedSymbolDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{errs: map[string]error{
		"PENNY": &broker.OrderRejectedError{Code: 202, Message: "order rejected"},
	}}
	r := newTestRebalancer(placer, RebalancerConfig{})

	ops := []Operation{
		{Symbol: "PENNY", Action: ActionSellAll, Amount: 40},
		{Symbol: "AAPL", Action: ActionBuy, Amount: 20},
	}
	movements := r.Execute(context.Background(), ops)
	require.Len(t, movements, 2)

	assert.Equal(t, ActionSellFail, movements[0].Action)
	assert.Contains(t, movements[0].Reason, "order rejected")
	assert.Equal(t, ActionBuy, movements[1].Action)
	require.Len(t, placer.calls, 2, "batch must continue past the failure")
}

func TestExecute_ConnectionLossAbortsBatch(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{errs: map[string]error{
		"MSFT": &broker.ConnectionError{Op: "write", Err: errors.New("broken pipe")},
	}}
	r := newTestRebalancer(placer, RebalancerConfig{})

	ops := []Operation{
		{Symbol: "MSFT", Action: ActionSell, Amount: 20},
		{Symbol: "AAPL", Action: ActionBuy, Amount: 20},
	}
	movements := r.Execute(context.Background(), ops)

	require.Len(t, placer.calls, 1, "nothing may be submitted after a connection loss")
	require.Len(t, movements, 1)
	assert.Equal(t, ActionSellFail, movements[0].Action)
	assert.Contains(t, movements[0].Reason, "broken pipe")
}

func TestExecute_CancelledContext(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{}
	r := newTestRebalancer(placer, RebalancerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	movements := r.Execute(ctx, []Operation{{Symbol: "AAPL", Action: ActionBuy, Amount: 20}})
	assert.Empty(t, movements)
	assert.Empty(t, placer.calls)
}

func TestExecute_BuyAfterFailedBuyKeepsGoing(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{errs: map[string]error{
		"AAPL": broker.ErrQuantityTooSmall,
	}}
	r := newTestRebalancer(placer, RebalancerConfig{})

	ops := []Operation{
		{Symbol: "AAPL", Action: ActionBuyNew, Amount: 3},
		{Symbol: "GOOG", Action: ActionBuyNew, Amount: 500},
	}
	movements := r.Execute(context.Background(), ops)
	require.Len(t, movements, 2)
	assert.Equal(t, ActionBuyFail, movements[0].Action)
	assert.Equal(t, ActionBuyNew, movements[1].Action)
	assert.Contains(t, movements[1].Reason, "order 1: Submitted")
}

func TestPreview_SubmitsNothing(t *testing.T) {
	t.Parallel()

	ops := []Operation{
		{Symbol: "MSFT", Action: ActionSell, CurrentValue: 520, TargetValue: 500, Amount: 20},
		{Symbol: "AAPL", Action: ActionHold, CurrentValue: 498, TargetValue: 500},
	}
	movements := Preview(ops)
	require.Len(t, movements, 2)

	assert.Equal(t, ActionSell, movements[0].Action)
	assert.Equal(t, 20.0, movements[0].Amount)
	assert.Contains(t, movements[0].Reason, "dry run")
	assert.Equal(t, "within threshold", movements[1].Reason)
}

func TestExecuteDirectives(t *testing.T) {
	t.Parallel()

	placer := &fakePlacer{}
	r := newTestRebalancer(placer, RebalancerConfig{})

	dirs := []Directive{
		{Symbol: "AAPL", Action: broker.Buy, Amount: 100},
		{Symbol: "BRK B", Action: broker.Sell, Amount: 50},
	}
	movements := r.ExecuteDirectives(context.Background(), dirs, SellsFirst)
	require.Len(t, movements, 2)

	require.Len(t, placer.calls, 2)
	assert.Equal(t, "BRK.B", placer.calls[0].Symbol, "sells lead under the default policy")
	assert.Equal(t, broker.Sell, placer.calls[0].Action)
	assert.Equal(t, "AAPL", placer.calls[1].Symbol)

	assert.Equal(t, ActionSell, movements[0].Action)
	assert.Equal(t, 50.0, movements[0].Amount)
	assert.Equal(t, ActionBuy, movements[1].Action)
}
