package market

import "time"

// TickKind classifies a price tick delivered by the gateway.
type TickKind string

const (
	TickLast         TickKind = "last"
	TickDelayedLast  TickKind = "delayed_last"
	TickClose        TickKind = "close"
	TickDelayedClose TickKind = "delayed_close"
)

// Live reports whether the tick is a real-time trade print.
func (k TickKind) Live() bool { return k == TickLast }

// Delayed reports whether the tick is an exchange-delayed trade print.
func (k TickKind) Delayed() bool { return k == TickDelayedLast }

// PrevClose reports whether the tick carries a previous-session close.
func (k TickKind) PrevClose() bool { return k == TickClose || k == TickDelayedClose }

type Tick struct {
	Symbol string
	Kind   TickKind
	Price  float64
	Time   time.Time
}

// Quote is a resolved price for one symbol, tagged with the kind of tick it
// came from so callers can tell a live print from a close fallback.
type Quote struct {
	Symbol string
	Price  float64
	Kind   TickKind
	Time   time.Time
}
