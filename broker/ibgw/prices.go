package ibgw

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
)

// Quote resolves a tradable price for symbol: a live last trade if one
// prints within the window, otherwise a delayed last, otherwise the
// previous close. No usable tick at all means ErrPriceUnavailable.
func (s *Session) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	return s.quoteWithin(ctx, symbol, s.cfg.QuoteTimeout)
}

// quoteWithin is Quote with an explicit resolution window. A live last
// returns immediately; delayed and close ticks are held until the deadline
// in case something better still prints.
func (s *Session) quoteWithin(ctx context.Context, symbol string, timeout time.Duration) (market.Quote, error) {
	if err := s.readyErr(); err != nil {
		return market.Quote{}, err
	}
	sym := market.Normalize(symbol)
	if sym == "" {
		return market.Quote{}, fmt.Errorf("ibgw: empty symbol")
	}

	id := s.nextReq.Add(1)
	p := &pending{id: id, kind: kindPrice, done: make(chan struct{})}
	s.addPending(p)

	if err := s.send(Envelope{Type: MsgSubscribeMarketData, ReqID: id, Symbol: market.BrokerSymbol(sym)}); err != nil {
		s.removePending(id)
		return market.Quote{}, err
	}
	// the subscription dies with the request, whichever path returns
	defer func() {
		_ = s.send(Envelope{Type: MsgCancelMarketData, ReqID: id})
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
	case <-ctx.Done():
		if s.removePending(id) {
			return market.Quote{}, ctx.Err()
		}
	}

	s.pmu.Lock()
	delete(s.pending, id)
	err, tick, ok := p.err, p.best, p.haveBest
	s.pmu.Unlock()

	if err != nil {
		return market.Quote{}, err
	}
	if !ok {
		return market.Quote{}, fmt.Errorf("%w: no tick for %s within %s", broker.ErrPriceUnavailable, sym, timeout)
	}
	return market.Quote{Symbol: sym, Price: tick.Price, Kind: tick.Kind, Time: tick.Time}, nil
}

// QuoteAll resolves prices for all symbols concurrently, staggering the
// subscriptions by RequestSpacing so large portfolios respect gateway
// pacing. Every distinct symbol gets an entry; a failure only fails its
// own symbol.
func (s *Session) QuoteAll(ctx context.Context, symbols []string) map[string]broker.QuoteResult {
	seen := make(map[string]bool, len(symbols))
	syms := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		sym := market.Normalize(raw)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	out := make(map[string]broker.QuoteResult, len(syms))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, sym := range syms {
		if i > 0 {
			time.Sleep(s.cfg.RequestSpacing)
		}
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			q, err := s.quoteWithin(ctx, sym, s.cfg.BulkQuoteTimeout)
			mu.Lock()
			out[sym] = broker.QuoteResult{Quote: q, Err: err}
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return out
}

func tickRank(k market.TickKind) int {
	switch k {
	case market.TickLast:
		return 3
	case market.TickDelayedLast:
		return 2
	case market.TickClose, market.TickDelayedClose:
		return 1
	}
	return 0
}

func (s *Session) onTick(env Envelope) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok || p.kind != kindPrice {
		s.log.Debug().Int64("req_id", env.ReqID).Msg("tick for retired request")
		return
	}
	kind := market.TickKind(env.TickKind)
	rank := tickRank(kind)
	if rank == 0 || env.Price <= 0 {
		return
	}
	if !p.haveBest || rank > tickRank(p.best.Kind) {
		p.best = market.Tick{Symbol: market.Normalize(env.Symbol), Kind: kind, Price: env.Price, Time: time.Now()}
		p.haveBest = true
	}
	if kind.Live() {
		s.completeLocked(p, nil)
	}
}
