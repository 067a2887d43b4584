package ibgw

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config locates the gateway and bounds every wait the session performs.
// Zero values take the defaults below.
type Config struct {
	Host     string
	Port     int
	ClientID int

	// URL overrides Host/Port with a full websocket endpoint. Mostly for
	// pointing a session at an in-process gateway.
	URL string

	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// QuoteTimeout bounds a single price resolution; OrderQuoteTimeout is
	// the longer window used when pricing an order; BulkQuoteTimeout is the
	// shorter per-symbol window during position valuation.
	QuoteTimeout      time.Duration
	OrderQuoteTimeout time.Duration
	BulkQuoteTimeout  time.Duration

	// RequestSpacing staggers fan-out subscriptions so a large portfolio
	// does not hit gateway pacing limits.
	RequestSpacing time.Duration

	PositionsTimeout time.Duration
	AccountsTimeout  time.Duration
	OrderAckTimeout  time.Duration

	// DrainDelay holds Close open briefly so just-submitted orders settle
	// at the gateway before the connection drops.
	DrainDelay time.Duration

	// FractionalShares sizes orders to four decimal places instead of
	// flooring to whole shares.
	FractionalShares bool
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 7497
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.QuoteTimeout == 0 {
		c.QuoteTimeout = 10 * time.Second
	}
	if c.OrderQuoteTimeout == 0 {
		c.OrderQuoteTimeout = 10 * time.Second
	}
	if c.BulkQuoteTimeout == 0 {
		c.BulkQuoteTimeout = 4 * time.Second
	}
	if c.RequestSpacing == 0 {
		c.RequestSpacing = 100 * time.Millisecond
	}
	if c.PositionsTimeout == 0 {
		c.PositionsTimeout = 10 * time.Second
	}
	if c.AccountsTimeout == 0 {
		c.AccountsTimeout = 5 * time.Second
	}
	if c.OrderAckTimeout == 0 {
		c.OrderAckTimeout = 5 * time.Second
	}
	return c
}

func (c Config) endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	host := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	return fmt.Sprintf("ws://%s/ws?client_id=%d", host, c.ClientID)
}
