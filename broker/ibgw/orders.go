package ibgw

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// minFractionalQty is the smallest share quantity the gateway accepts when
// fractional sizing is on.
const minFractionalQty = 0.0001

// PlaceDollarOrder resolves a price, sizes spec.Amount into shares, and
// submits. The order id is consumed only after resolution and sizing
// succeed, so a failed resolution never advances the counter. The call
// blocks until the gateway acknowledges or rejects the order.
func (s *Session) PlaceDollarOrder(ctx context.Context, spec broker.OrderSpec) (broker.OrderAck, error) {
	if err := s.readyErr(); err != nil {
		return broker.OrderAck{}, err
	}
	if spec.Action != broker.Buy && spec.Action != broker.Sell {
		return broker.OrderAck{}, fmt.Errorf("ibgw: unknown action %q", spec.Action)
	}
	if spec.Amount <= 0 {
		return broker.OrderAck{}, fmt.Errorf("ibgw: order amount must be positive, got %.2f", spec.Amount)
	}
	sym := market.Normalize(spec.Symbol)

	q, err := s.quoteWithin(ctx, sym, s.cfg.OrderQuoteTimeout)
	if err != nil {
		return broker.OrderAck{}, err
	}
	qty, err := shareQuantity(spec.Amount, q.Price, s.cfg.FractionalShares)
	if err != nil {
		return broker.OrderAck{}, err
	}

	orderID, err := s.takeOrderID()
	if err != nil {
		return broker.OrderAck{}, err
	}

	payload := OrderPayload{
		OrderID:  orderID,
		Symbol:   market.BrokerSymbol(sym),
		Action:   string(spec.Action),
		Quantity: qty,
		Type:     "MKT",
		TIF:      "DAY",
		Account:  spec.Account,
	}
	var limit float64
	if spec.Limit {
		limit = limitThrough(q.Price, spec.Action)
		payload.Type = "LMT"
		payload.LimitPrice = limit
		payload.TIF = "GTC"
		payload.OutsideRTH = true
	}

	id := s.nextReq.Add(1)
	p := &pending{id: id, kind: kindOrder, done: make(chan struct{}), orderID: orderID}
	s.addPending(p)

	if err := s.send(Envelope{Type: MsgPlaceOrder, ReqID: id, Order: &payload}); err != nil {
		s.removePending(id)
		return broker.OrderAck{}, err
	}
	s.log.Info().
		Int64("order_id", orderID).
		Str("symbol", sym).
		Str("action", string(spec.Action)).
		Float64("qty", qty).
		Float64("ref_price", q.Price).
		Str("type", payload.Type).
		Msg("order submitted")

	timer := time.NewTimer(s.cfg.OrderAckTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		if s.removePending(id) {
			return broker.OrderAck{}, fmt.Errorf("ibgw: order %d unconfirmed after %s", orderID, s.cfg.OrderAckTimeout)
		}
	case <-ctx.Done():
		if s.removePending(id) {
			return broker.OrderAck{}, ctx.Err()
		}
	}
	if p.err != nil {
		return broker.OrderAck{}, p.err
	}
	return broker.OrderAck{
		OrderID:    orderID,
		Symbol:     sym,
		Action:     spec.Action,
		Quantity:   qty,
		Price:      q.Price,
		PriceKind:  q.Kind,
		LimitPrice: limit,
		Status:     p.status,
	}, nil
}

// shareQuantity converts a dollar amount at price into shares. Whole-share
// mode floors; fractional mode keeps four decimal places.
func shareQuantity(amount, price float64, fractional bool) (float64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: bad reference price %.4f", broker.ErrPriceUnavailable, price)
	}
	raw := amount / price
	if !fractional {
		qty := math.Floor(raw)
		if qty < 1 {
			return 0, fmt.Errorf("%w: $%.2f is %.4f shares at $%.2f", broker.ErrQuantityTooSmall, amount, raw, price)
		}
		return qty, nil
	}
	qty := math.Round(raw*1e4) / 1e4
	if qty < minFractionalQty {
		return 0, fmt.Errorf("%w: $%.2f is %.4f shares at $%.2f", broker.ErrQuantityTooSmall, amount, raw, price)
	}
	return qty, nil
}

// limitThrough prices a limit order 2% through ref in the order's favor,
// above for buys and below for sells, so it fills like a bounded market
// order even outside regular hours.
func limitThrough(ref float64, action broker.Action) float64 {
	if action == broker.Buy {
		return round2(ref * 1.02)
	}
	return round2(ref * 0.98)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (s *Session) onOrderStatus(env Envelope) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok || p.kind != kindOrder {
		s.log.Debug().Int64("req_id", env.ReqID).Str("status", env.Status).Msg("status for retired request")
		return
	}
	p.status = env.Status
	s.completeLocked(p, nil)
}
