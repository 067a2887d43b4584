package ibgw

import (
	"context"
	"fmt"
	"time"
)

// ManagedAccounts lists the account ids the gateway can route orders to.
func (s *Session) ManagedAccounts(ctx context.Context) ([]string, error) {
	if err := s.readyErr(); err != nil {
		return nil, err
	}

	id := s.nextReq.Add(1)
	p := &pending{id: id, kind: kindAccounts, done: make(chan struct{})}
	s.addPending(p)

	if err := s.send(Envelope{Type: MsgAccounts, ReqID: id}); err != nil {
		s.removePending(id)
		return nil, err
	}

	timer := time.NewTimer(s.cfg.AccountsTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		if s.removePending(id) {
			return nil, fmt.Errorf("ibgw: accounts not delivered within %s", s.cfg.AccountsTimeout)
		}
	case <-ctx.Done():
		if s.removePending(id) {
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, fmt.Errorf("accounts: %w", p.err)
	}
	return p.accounts, nil
}

func (s *Session) onAccounts(env Envelope) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	p, ok := s.pending[env.ReqID]
	if !ok || p.kind != kindAccounts {
		return
	}
	p.accounts = env.Accounts
	s.completeLocked(p, nil)
}
