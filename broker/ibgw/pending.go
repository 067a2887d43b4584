package ibgw

import (
	"github.com/Tvpower/seekingQuant/market"
)

type reqKind int

const (
	kindPrice reqKind = iota + 1
	kindPositions
	kindAccounts
	kindOrder
)

// pending is one in-flight request. The reader goroutine accumulates
// callbacks into it under the session's pending mutex and closes done
// exactly once; the requesting goroutine waits on done with a deadline.
// Once an entry leaves the table, late callbacks for its id are discarded.
type pending struct {
	id   int64
	kind reqKind
	done chan struct{}

	err error

	// price: best usable tick so far, upgraded as better kinds arrive
	best     market.Tick
	haveBest bool

	// positions: rows streamed before the end marker
	rows []positionRow

	// accounts
	accounts []string

	// order: first status callback and the exchange-side id
	status  string
	orderID int64
}

type positionRow struct {
	account  string
	symbol   string
	quantity float64
	avgCost  float64
}

func (s *Session) addPending(p *pending) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	s.pending[p.id] = p
}

// removePending retires the entry for id. It reports true when the entry
// was still waiting, false when the reader already completed it.
func (s *Session) removePending(id int64) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// completeLocked finishes p and retires it. Callers hold s.pmu.
func (s *Session) completeLocked(p *pending, err error) {
	p.err = err
	delete(s.pending, p.id)
	close(p.done)
}

// failPending fails every in-flight request. Called when the connection is
// lost or deliberately closed.
func (s *Session) failPending(err error) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	s.lost = err
	for _, p := range s.pending {
		p.err = err
		delete(s.pending, p.id)
		close(p.done)
	}
}
