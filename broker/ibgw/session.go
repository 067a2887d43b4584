// Package ibgw is a client for the brokerage gateway's websocket API. The
// gateway is callback-oriented: requests go out tagged with a correlation
// id and results stream back asynchronously. Session turns that into
// blocking calls with deadlines.
package ibgw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Tvpower/seekingQuant/broker"
)

var errSessionClosed = errors.New("session closed")

// Session is one live gateway connection. All exported methods are safe
// for concurrent use; a single reader goroutine owns the inbound side and
// dispatches callbacks by message type.
type Session struct {
	cfg Config
	log zerolog.Logger

	conn *websocket.Conn
	wmu  sync.Mutex // serializes writes

	pmu     sync.Mutex
	pending map[int64]*pending
	lost    error // first connectivity failure, sticky

	nextReq atomic.Int64 // correlation ids, one per request

	omu         sync.Mutex
	nextOrderID int64 // seeded by the gateway, consumed per submission

	handshake   chan struct{}
	handshakeOK sync.Once

	dispatch map[string]func(Envelope)

	done       chan struct{}
	readerDone chan struct{}
	closeOnce  sync.Once
	closeErr   error
	readerWG   sync.WaitGroup
}

var _ broker.Broker = (*Session)(nil)

// Dial connects to the gateway and blocks until it announces the first
// valid order id, which seeds the session's order counter. On any failure
// the partial connection is torn down.
func Dial(ctx context.Context, cfg Config, log zerolog.Logger) (*Session, error) {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:        cfg,
		log:        log.With().Str("component", "ibgw").Logger(),
		pending:    make(map[int64]*pending),
		handshake:  make(chan struct{}),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	s.dispatch = map[string]func(Envelope){
		MsgNextValidID:  s.onNextValidID,
		MsgTick:         s.onTick,
		MsgPosition:     s.onPosition,
		MsgPositionsEnd: s.onPositionsEnd,
		MsgAccounts:     s.onAccounts,
		MsgOrderStatus:  s.onOrderStatus,
		MsgError:        s.onError,
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, cfg.endpoint(), nil)
	if err != nil {
		return nil, &broker.ConnectionError{Op: "dial", Err: err}
	}
	s.conn = conn

	s.readerWG.Add(1)
	go s.readPump()

	select {
	case <-s.handshake:
	case <-s.readerDone:
		s.Close()
		return nil, &broker.ConnectionError{Op: "handshake", Err: errors.New("connection lost before next_valid_id")}
	case <-time.After(cfg.HandshakeTimeout):
		s.Close()
		return nil, &broker.ConnectionError{Op: "handshake", Err: errors.New("no next_valid_id from gateway")}
	case <-ctx.Done():
		s.Close()
		return nil, &broker.ConnectionError{Op: "handshake", Err: ctx.Err()}
	}

	s.omu.Lock()
	seed := s.nextOrderID
	s.omu.Unlock()
	s.log.Info().Str("endpoint", cfg.endpoint()).Int64("next_order_id", seed).Msg("session ready")
	return s, nil
}

// Close tears the session down, releasing any waiters. Safe to call more
// than once and after a failed dial.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.cfg.DrainDelay > 0 {
			s.log.Debug().Dur("drain", s.cfg.DrainDelay).Msg("waiting for orders to settle")
			time.Sleep(s.cfg.DrainDelay)
		}
		close(s.done)
		s.closeErr = s.conn.Close()
		s.readerWG.Wait()
		s.log.Info().Msg("session closed")
	})
	return s.closeErr
}

func (s *Session) readPump() {
	defer s.readerWG.Done()
	defer close(s.readerDone)
	for {
		var env Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			select {
			case <-s.done:
				s.failPending(&broker.ConnectionError{Op: "close", Err: errSessionClosed})
			default:
				s.log.Error().Err(err).Msg("gateway read failed")
				s.failPending(&broker.ConnectionError{Op: "read", Err: err})
			}
			return
		}
		if h, ok := s.dispatch[env.Type]; ok {
			h(env)
			continue
		}
		s.log.Debug().Str("type", env.Type).Msg("unhandled gateway message")
	}
}

func (s *Session) send(env Envelope) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteJSON(env); err != nil {
		return &broker.ConnectionError{Op: "write", Err: err}
	}
	return nil
}

// readyErr rejects calls on a session that is closed or has lost its
// connection.
func (s *Session) readyErr() error {
	select {
	case <-s.done:
		return fmt.Errorf("%w: session closed", broker.ErrNotReady)
	default:
	}
	s.pmu.Lock()
	defer s.pmu.Unlock()
	return s.lost
}

// takeOrderID consumes the next order id. Only submissions call it, so a
// failed price resolution never advances the counter.
func (s *Session) takeOrderID() (int64, error) {
	s.omu.Lock()
	defer s.omu.Unlock()
	if s.nextOrderID == 0 {
		return 0, fmt.Errorf("%w: no order id from gateway", broker.ErrNotReady)
	}
	id := s.nextOrderID
	s.nextOrderID++
	return id, nil
}

func (s *Session) onNextValidID(env Envelope) {
	s.omu.Lock()
	if env.OrderID > s.nextOrderID {
		s.nextOrderID = env.OrderID
	}
	s.omu.Unlock()
	s.handshakeOK.Do(func() { close(s.handshake) })
}

func (s *Session) onError(env Envelope) {
	if benignCode(env.Code) {
		s.log.Debug().Int("code", env.Code).Str("note", env.Message).Msg("gateway notice")
		return
	}
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok {
		s.log.Warn().Int("code", env.Code).Int64("req_id", env.ReqID).Str("err", env.Message).Msg("gateway error for retired request")
		return
	}
	switch p.kind {
	case kindPrice:
		s.completeLocked(p, fmt.Errorf("%w: %s (code %d)", broker.ErrPriceUnavailable, env.Message, env.Code))
	case kindOrder:
		s.completeLocked(p, &broker.OrderRejectedError{OrderID: p.orderID, Code: env.Code, Message: env.Message})
	default:
		s.completeLocked(p, fmt.Errorf("ibgw: request %d failed: %s (code %d)", env.ReqID, env.Message, env.Code))
	}
}
