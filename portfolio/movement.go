package portfolio

// Action classifies what the engine decided for one symbol.
type Action string

const (
	ActionBuy      Action = "BUY"
	ActionSell     Action = "SELL"
	ActionBuyNew   Action = "BUY_NEW"
	ActionSellAll  Action = "SELL_ALL"
	ActionHold     Action = "HOLD"
	ActionBuyFail  Action = "BUY_FAILED"
	ActionSellFail Action = "SELL_FAILED"
)

// Failed reports whether the action records a submission that went wrong.
func (a Action) Failed() bool {
	return a == ActionBuyFail || a == ActionSellFail
}

// failedAction maps an intended action to the one recorded when its
// submission fails.
func failedAction(a Action) Action {
	switch a {
	case ActionSell, ActionSellAll:
		return ActionSellFail
	default:
		return ActionBuyFail
	}
}

// Movement is one symbol's outcome in a run: what the engine decided, the
// values it decided from, and how it went. Amount is always non-negative;
// the direction lives in Action. Degraded marks a decision made from a
// cost-basis valuation rather than a live price.
type Movement struct {
	Symbol       string
	Action       Action
	CurrentValue float64
	TargetValue  float64
	Amount       float64
	Reason       string
	Degraded     bool
}
