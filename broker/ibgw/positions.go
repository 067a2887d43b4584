package ibgw

import (
	"context"
	"fmt"
	"time"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// Positions fetches current holdings keyed by canonical symbol, then values
// each at a freshly resolved price. Symbols with no resolvable price are
// valued at cost basis and flagged Degraded instead of failing the call.
// Zero-quantity rows are dropped; an empty portfolio is an empty map, not
// an error.
func (s *Session) Positions(ctx context.Context, account string) (map[string]broker.Position, error) {
	if err := s.readyErr(); err != nil {
		return nil, err
	}

	id := s.nextReq.Add(1)
	p := &pending{id: id, kind: kindPositions, done: make(chan struct{})}
	s.addPending(p)

	if err := s.send(Envelope{Type: MsgPositions, ReqID: id, Account: account}); err != nil {
		s.removePending(id)
		return nil, err
	}

	timer := time.NewTimer(s.cfg.PositionsTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		if s.removePending(id) {
			return nil, fmt.Errorf("ibgw: positions not delivered within %s", s.cfg.PositionsTimeout)
		}
	case <-ctx.Done():
		if s.removePending(id) {
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, fmt.Errorf("positions: %w", p.err)
	}

	held := make(map[string]broker.Position, len(p.rows))
	for _, row := range p.rows {
		if row.quantity == 0 {
			continue
		}
		if account != "" && row.account != account {
			continue
		}
		sym := market.Normalize(row.symbol)
		held[sym] = broker.Position{Symbol: sym, Quantity: row.quantity, AvgCost: row.avgCost}
	}
	if len(held) == 0 {
		return held, nil
	}

	syms := make([]string, 0, len(held))
	for sym := range held {
		syms = append(syms, sym)
	}
	quotes := s.QuoteAll(ctx, syms)

	for sym, pos := range held {
		res, ok := quotes[sym]
		if ok && broker.IsConnection(res.Err) {
			return nil, fmt.Errorf("positions pricing: %w", res.Err)
		}
		if ok && res.Err == nil {
			pos.Price = res.Quote.Price
			pos.MarketValue = pos.Quantity * res.Quote.Price
		} else {
			pos.MarketValue = pos.CostBasis()
			pos.Degraded = true
			s.log.Warn().Str("symbol", sym).Msg("no price resolved, valuing at cost basis")
		}
		held[sym] = pos
	}
	return held, nil
}

func (s *Session) onPosition(env Envelope) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok || p.kind != kindPositions {
		s.log.Debug().Int64("req_id", env.ReqID).Msg("position row for retired request")
		return
	}
	p.rows = append(p.rows, positionRow{
		account:  env.Account,
		symbol:   env.Symbol,
		quantity: env.Quantity,
		avgCost:  env.AvgCost,
	})
}

func (s *Session) onPositionsEnd(env Envelope) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok || p.kind != kindPositions {
		return
	}
	s.completeLocked(p, nil)
}
