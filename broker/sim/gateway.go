// Package sim is an in-process brokerage gateway speaking the same wire
// protocol as the real one. Tests and the demo command point a session at
// it to exercise the full pipeline without a broker.
package sim

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tvpower/seekingQuant/broker/ibgw"
	"github.com/Tvpower/seekingQuant/market"
)

// QuoteSpec is one tick the feed serves for a symbol. Specs play in order
// per subscription; Delay holds the tick back from the subscribe.
type QuoteSpec struct {
	Kind  market.TickKind
	Price float64
	Delay time.Duration
}

// PositionSpec is one holding row the gateway reports.
type PositionSpec struct {
	Account  string
	Symbol   string
	Quantity float64
	AvgCost  float64
}

// PlacedOrder is a submission the gateway accepted, in arrival order.
type PlacedOrder struct {
	OrderID    int64
	Symbol     string
	Action     string
	Quantity   float64
	Type       string
	LimitPrice float64
	TIF        string
	OutsideRTH bool
	Account    string
	Time       time.Time
}

type rejectSpec struct {
	code int
	msg  string
}

// Gateway holds the simulated book: quotes, positions, accounts, and the
// orders it has accepted. One Gateway serves any number of connections.
type Gateway struct {
	log zerolog.Logger

	mu           sync.Mutex
	quotes       map[string][]QuoteSpec
	positions    []PositionSpec
	accounts     []string
	nextOrderID  int64
	dataRejects  map[string]rejectSpec
	orderRejects map[string]rejectSpec
	mutedAcks    map[string]bool
	orders       []PlacedOrder

	upgrader websocket.Upgrader
	srv      *http.Server
}

func New(log zerolog.Logger) *Gateway {
	return &Gateway{
		log:          log.With().Str("component", "gwsim").Logger(),
		quotes:       make(map[string][]QuoteSpec),
		nextOrderID:  1,
		dataRejects:  make(map[string]rejectSpec),
		orderRejects: make(map[string]rejectSpec),
		mutedAcks:    make(map[string]bool),
	}
}

// SetQuote replaces the tick sequence served for symbol.
func (g *Gateway) SetQuote(symbol string, specs ...QuoteSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quotes[market.Normalize(symbol)] = specs
}

// SetLast is SetQuote with a single immediate live trade print.
func (g *Gateway) SetLast(symbol string, price float64) {
	g.SetQuote(symbol, QuoteSpec{Kind: market.TickLast, Price: price})
}

func (g *Gateway) SetPositions(rows ...PositionSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.positions = rows
}

func (g *Gateway) SetAccounts(accounts ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts = accounts
}

func (g *Gateway) SetNextOrderID(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextOrderID = id
}

// RejectData fails market data subscriptions for symbol with a gateway
// error.
func (g *Gateway) RejectData(symbol string, code int, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dataRejects[market.Normalize(symbol)] = rejectSpec{code: code, msg: msg}
}

// RejectOrders fails order submissions for symbol with a gateway error.
func (g *Gateway) RejectOrders(symbol string, code int, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderRejects[market.Normalize(symbol)] = rejectSpec{code: code, msg: msg}
}

// MuteOrderAcks makes the gateway accept orders for symbol without ever
// acknowledging them.
func (g *Gateway) MuteOrderAcks(symbol string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mutedAcks[market.Normalize(symbol)] = true
}

// Orders returns every accepted submission in arrival order.
func (g *Gateway) Orders() []PlacedOrder {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PlacedOrder, len(g.orders))
	copy(out, g.orders)
	return out
}

// Listen serves the gateway on addr (port 0 picks a free one) and returns
// the websocket URL sessions should dial.
func (g *Gateway) Listen(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	g.srv = &http.Server{Handler: g}
	go g.srv.Serve(ln)
	return "ws://" + ln.Addr().String() + "/ws", nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.srv == nil {
		return nil
	}
	return g.srv.Shutdown(ctx)
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error().Err(err).Msg("upgrade failed")
		return
	}
	g.serve(conn)
}

// serve runs one connection: handshake, then request dispatch until the
// peer goes away. Tick streams run on their own goroutines and stop when
// their subscription is cancelled or the connection dies.
func (g *Gateway) serve(conn *websocket.Conn) {
	defer conn.Close()

	var wmu sync.Mutex
	send := func(env ibgw.Envelope) {
		wmu.Lock()
		defer wmu.Unlock()
		if err := conn.WriteJSON(env); err != nil {
			g.log.Debug().Err(err).Msg("write failed")
		}
	}

	g.mu.Lock()
	seed := g.nextOrderID
	g.mu.Unlock()
	send(ibgw.Envelope{Type: ibgw.MsgNextValidID, OrderID: seed})
	send(ibgw.Envelope{Type: ibgw.MsgError, Code: 2104, Message: "Market data farm connection is OK"})

	subs := make(map[int64]chan struct{})
	var smu sync.Mutex
	defer func() {
		smu.Lock()
		defer smu.Unlock()
		for id, stop := range subs {
			close(stop)
			delete(subs, id)
		}
	}()

	for {
		var env ibgw.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Type {
		case ibgw.MsgSubscribeMarketData:
			stop := make(chan struct{})
			smu.Lock()
			subs[env.ReqID] = stop
			smu.Unlock()
			go g.streamTicks(env.ReqID, env.Symbol, send, stop)

		case ibgw.MsgCancelMarketData:
			smu.Lock()
			if stop, ok := subs[env.ReqID]; ok {
				close(stop)
				delete(subs, env.ReqID)
			}
			smu.Unlock()

		case ibgw.MsgPositions:
			g.sendPositions(env, send)

		case ibgw.MsgAccounts:
			g.mu.Lock()
			accounts := append([]string(nil), g.accounts...)
			g.mu.Unlock()
			send(ibgw.Envelope{Type: ibgw.MsgAccounts, ReqID: env.ReqID, Accounts: accounts})

		case ibgw.MsgPlaceOrder:
			g.handleOrder(env, send)

		default:
			g.log.Debug().Str("type", env.Type).Msg("unhandled request")
		}
	}
}

func (g *Gateway) streamTicks(reqID int64, symbol string, send func(ibgw.Envelope), stop chan struct{}) {
	sym := market.Normalize(symbol)

	g.mu.Lock()
	rej, rejected := g.dataRejects[sym]
	specs := append([]QuoteSpec(nil), g.quotes[sym]...)
	g.mu.Unlock()

	if rejected {
		send(ibgw.Envelope{Type: ibgw.MsgError, ReqID: reqID, Code: rej.code, Message: rej.msg})
		return
	}
	for _, spec := range specs {
		if spec.Delay > 0 {
			select {
			case <-stop:
				return
			case <-time.After(spec.Delay):
			}
		}
		select {
		case <-stop:
			return
		default:
		}
		send(ibgw.Envelope{
			Type:     ibgw.MsgTick,
			ReqID:    reqID,
			Symbol:   symbol,
			TickKind: string(spec.Kind),
			Price:    spec.Price,
		})
	}
}

func (g *Gateway) sendPositions(env ibgw.Envelope, send func(ibgw.Envelope)) {
	g.mu.Lock()
	rows := append([]PositionSpec(nil), g.positions...)
	g.mu.Unlock()

	for _, row := range rows {
		if env.Account != "" && row.Account != env.Account {
			continue
		}
		send(ibgw.Envelope{
			Type:     ibgw.MsgPosition,
			ReqID:    env.ReqID,
			Account:  row.Account,
			Symbol:   row.Symbol,
			Quantity: row.Quantity,
			AvgCost:  row.AvgCost,
		})
	}
	send(ibgw.Envelope{Type: ibgw.MsgPositionsEnd, ReqID: env.ReqID})
}

func (g *Gateway) handleOrder(env ibgw.Envelope, send func(ibgw.Envelope)) {
	if env.Order == nil {
		send(ibgw.Envelope{Type: ibgw.MsgError, ReqID: env.ReqID, Code: 320, Message: "malformed order"})
		return
	}
	sym := market.Normalize(env.Order.Symbol)

	g.mu.Lock()
	rej, rejected := g.orderRejects[sym]
	muted := g.mutedAcks[sym]
	if !rejected {
		g.orders = append(g.orders, PlacedOrder{
			OrderID:    env.Order.OrderID,
			Symbol:     sym,
			Action:     env.Order.Action,
			Quantity:   env.Order.Quantity,
			Type:       env.Order.Type,
			LimitPrice: env.Order.LimitPrice,
			TIF:        env.Order.TIF,
			OutsideRTH: env.Order.OutsideRTH,
			Account:    env.Order.Account,
			Time:       time.Now(),
		})
		if env.Order.OrderID >= g.nextOrderID {
			g.nextOrderID = env.Order.OrderID + 1
		}
	}
	g.mu.Unlock()

	switch {
	case rejected:
		send(ibgw.Envelope{Type: ibgw.MsgError, ReqID: env.ReqID, Code: rej.code, Message: rej.msg})
	case muted:
		g.log.Debug().Str("symbol", sym).Msg("holding ack")
	default:
		send(ibgw.Envelope{
			Type:    ibgw.MsgOrderStatus,
			ReqID:   env.ReqID,
			OrderID: env.Order.OrderID,
			Status:  "Submitted",
		})
	}
}
