package portfolio

import (
	"math"
	"sort"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// OrderPolicy fixes which side of a batch submits first. Selling first
// frees cash for the buys that follow.
type OrderPolicy string

const (
	SellsFirst OrderPolicy = "sells_first"
	BuysFirst  OrderPolicy = "buys_first"
)

func (p OrderPolicy) Valid() bool {
	return p == SellsFirst || p == BuysFirst
}

// Target is the dollar value one symbol should end up holding.
type Target struct {
	Symbol string
	Value  float64
}

// PlanConfig tunes the planner. MinDelta is the dollar threshold below
// which a difference is left alone.
type PlanConfig struct {
	MinDelta float64
	Policy   OrderPolicy
}

// Operation is one planned movement, ready to submit.
type Operation struct {
	Symbol       string
	Action       Action
	CurrentValue float64
	TargetValue  float64
	Amount       float64
	Degraded     bool // current value is a cost-basis fallback
}

// Plan compares holdings against targets and decides a movement per
// symbol. Held symbols with a target trade their delta or hold inside
// MinDelta; targets with no position buy in full; positions with no
// target sell out in full. The result is ordered by cfg.Policy, sells
// first by default, and alphabetically within each phase so runs are
// deterministic.
func Plan(current map[string]broker.Position, targets []Target, cfg PlanConfig) []Operation {
	targetFor := make(map[string]float64, len(targets))
	for _, t := range targets {
		targetFor[market.Normalize(t.Symbol)] = t.Value
	}

	ops := make([]Operation, 0, len(targetFor)+len(current))
	for sym, value := range targetFor {
		pos, held := current[sym]
		if !held {
			ops = append(ops, Operation{
				Symbol:      sym,
				Action:      ActionBuyNew,
				TargetValue: value,
				Amount:      value,
			})
			continue
		}
		op := Operation{
			Symbol:       sym,
			CurrentValue: pos.MarketValue,
			TargetValue:  value,
			Degraded:     pos.Degraded,
		}
		delta := value - pos.MarketValue
		switch {
		case delta == 0 || math.Abs(delta) < cfg.MinDelta:
			op.Action = ActionHold
		case delta > 0:
			op.Action = ActionBuy
			op.Amount = delta
		default:
			op.Action = ActionSell
			op.Amount = -delta
		}
		ops = append(ops, op)
	}

	for sym, pos := range current {
		if _, targeted := targetFor[sym]; targeted {
			continue
		}
		ops = append(ops, Operation{
			Symbol:       sym,
			Action:       ActionSellAll,
			CurrentValue: pos.MarketValue,
			Amount:       pos.MarketValue,
			Degraded:     pos.Degraded,
		})
	}

	sortOps(ops, cfg.Policy)
	return ops
}

// sortOps groups operations into policy phases: one side, the other side,
// then holds. Symbols sort alphabetically within a phase.
func sortOps(ops []Operation, policy OrderPolicy) {
	phase := func(op Operation) int {
		sells := 0
		if policy == BuysFirst {
			sells = 1
		}
		switch op.Action {
		case ActionSell, ActionSellAll:
			return sells
		case ActionBuy, ActionBuyNew:
			return 1 - sells
		default:
			return 2
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		pi, pj := phase(ops[i]), phase(ops[j])
		if pi != pj {
			return pi < pj
		}
		return ops[i].Symbol < ops[j].Symbol
	})
}
