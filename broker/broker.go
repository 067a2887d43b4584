package broker

import (
	"context"

	"github.com/Tvpower/seekingQuant/market"
)

// Broker is the session surface the rebalancing engine works against.
// The production implementation is ibgw.Session.
type Broker interface {
	// Quote resolves a tradable price for one symbol, falling back from a
	// live last trade to a delayed last and finally the previous close.
	Quote(ctx context.Context, symbol string) (market.Quote, error)

	// QuoteAll resolves prices for many symbols concurrently. Each symbol
	// gets its own result; failures never abort the batch.
	QuoteAll(ctx context.Context, symbols []string) map[string]QuoteResult

	// Positions returns current holdings keyed by canonical symbol, each
	// valued at a freshly resolved price where one is available.
	Positions(ctx context.Context, account string) (map[string]Position, error)

	// ManagedAccounts lists the account ids the session can route to.
	ManagedAccounts(ctx context.Context) ([]string, error)

	// PlaceDollarOrder sizes a dollar amount into shares and submits it.
	PlaceDollarOrder(ctx context.Context, spec OrderSpec) (OrderAck, error)

	Close() error
}

type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// Position is one holding, valued at the best price the session could
// resolve. Degraded marks a fallback to cost basis.
type Position struct {
	Symbol      string
	Quantity    float64
	AvgCost     float64
	Price       float64
	MarketValue float64
	Degraded    bool
}

// CostBasis is what the position was paid for.
func (p Position) CostBasis() float64 {
	return p.Quantity * p.AvgCost
}

// OrderSpec describes an order by dollar amount rather than share count.
// Limit selects an overnight-capable limit order instead of a market order.
type OrderSpec struct {
	Symbol  string
	Action  Action
	Amount  float64
	Limit   bool
	Account string
}

// OrderAck reports a submitted order: the sizing that was derived, the
// reference price it was derived from, and the gateway's first status.
type OrderAck struct {
	OrderID    int64
	Symbol     string
	Action     Action
	Quantity   float64
	Price      float64
	PriceKind  market.TickKind
	LimitPrice float64 // zero for market orders
	Status     string
}

type QuoteResult struct {
	Quote market.Quote
	Err   error
}
