package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// OrderPlacer is the slice of the broker session the executor needs.
type OrderPlacer interface {
	PlaceDollarOrder(ctx context.Context, spec broker.OrderSpec) (broker.OrderAck, error)
}

// Rebalancer submits planned operations and records a movement per symbol.
type Rebalancer struct {
	placer  OrderPlacer
	log     zerolog.Logger
	account string
	limit   bool
	spacing time.Duration
}

type RebalancerConfig struct {
	Account string

	// LimitOrders submits overnight-capable limit orders instead of
	// regular-hours market orders.
	LimitOrders bool

	// OrderSpacing pauses between consecutive submissions.
	OrderSpacing time.Duration
}

func NewRebalancer(placer OrderPlacer, cfg RebalancerConfig, log zerolog.Logger) *Rebalancer {
	return &Rebalancer{
		placer:  placer,
		log:     log.With().Str("component", "rebalancer").Logger(),
		account: cfg.Account,
		limit:   cfg.LimitOrders,
		spacing: cfg.OrderSpacing,
	}
}

// Execute submits every non-HOLD operation in the order given. A failed
// symbol records a *_FAILED movement with the cause and the batch goes on;
// a connectivity failure stops the batch. The movements recorded so far
// are returned in every case, so a report can always be written.
func (r *Rebalancer) Execute(ctx context.Context, ops []Operation) []Movement {
	movements := make([]Movement, 0, len(ops))
	submitted := 0

	for _, op := range ops {
		if ctx.Err() != nil {
			r.log.Warn().Err(ctx.Err()).Msg("cancelled, abandoning remaining operations")
			return movements
		}

		mv := Movement{
			Symbol:       op.Symbol,
			Action:       op.Action,
			CurrentValue: op.CurrentValue,
			TargetValue:  op.TargetValue,
			Amount:       op.Amount,
			Degraded:     op.Degraded,
		}
		if op.Action == ActionHold {
			mv.Reason = "within threshold"
			if op.Degraded {
				mv.Reason = "within threshold (cost-basis valuation)"
			}
			movements = append(movements, mv)
			continue
		}

		if submitted > 0 && r.spacing > 0 {
			time.Sleep(r.spacing)
		}

		ack, err := r.placer.PlaceDollarOrder(ctx, broker.OrderSpec{
			Symbol:  op.Symbol,
			Action:  orderAction(op.Action),
			Amount:  op.Amount,
			Limit:   r.limit,
			Account: r.account,
		})
		if err != nil {
			mv.Action = failedAction(op.Action)
			mv.Reason = err.Error()
			movements = append(movements, mv)
			if broker.IsConnection(err) {
				r.log.Error().Err(err).Msg("connection lost, aborting batch")
				return movements
			}
			r.log.Warn().Str("symbol", op.Symbol).Err(err).Msg("order failed")
			continue
		}

		submitted++
		mv.Reason = fmt.Sprintf("order %d: %s %.4f shares at ref $%.2f",
			ack.OrderID, ack.Status, ack.Quantity, ack.Price)
		r.log.Info().
			Str("symbol", op.Symbol).
			Str("action", string(op.Action)).
			Float64("amount", op.Amount).
			Int64("order_id", ack.OrderID).
			Msg("movement executed")
		movements = append(movements, mv)
	}
	return movements
}

// Preview converts planned operations into the movements a dry run
// reports. Nothing is submitted.
func Preview(ops []Operation) []Movement {
	movements := make([]Movement, 0, len(ops))
	for _, op := range ops {
		mv := Movement{
			Symbol:       op.Symbol,
			Action:       op.Action,
			CurrentValue: op.CurrentValue,
			TargetValue:  op.TargetValue,
			Amount:       op.Amount,
			Degraded:     op.Degraded,
			Reason:       "planned, not submitted (dry run)",
		}
		if op.Action == ActionHold {
			mv.Reason = "within threshold"
		}
		movements = append(movements, mv)
	}
	return movements
}

// Directive is an explicit flat-dollar instruction, no delta computation.
type Directive struct {
	Symbol string
	Action broker.Action
	Amount float64
}

// DirectiveOperations shapes explicit instructions into submittable
// operations, ordered by policy.
func DirectiveOperations(dirs []Directive, policy OrderPolicy) []Operation {
	ops := make([]Operation, 0, len(dirs))
	for _, d := range dirs {
		action := ActionBuy
		if d.Action == broker.Sell {
			action = ActionSell
		}
		ops = append(ops, Operation{
			Symbol: market.Normalize(d.Symbol),
			Action: action,
			Amount: d.Amount,
		})
	}
	sortOps(ops, policy)
	return ops
}

// ExecuteDirectives places one flat dollar order per directive, grouped by
// the same ordering policy and with the same fail-soft behavior as a
// planned batch.
func (r *Rebalancer) ExecuteDirectives(ctx context.Context, dirs []Directive, policy OrderPolicy) []Movement {
	return r.Execute(ctx, DirectiveOperations(dirs, policy))
}

func orderAction(a Action) broker.Action {
	if a == ActionSell || a == ActionSellAll {
		return broker.Sell
	}
	return broker.Buy
}
