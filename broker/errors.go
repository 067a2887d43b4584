package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady means the session is missing something it needs before it
	// can take requests: no connection, or no order id seed from the gateway.
	ErrNotReady = errors.New("broker: session not ready")

	// ErrPriceUnavailable means no usable tick arrived within the resolution
	// window, not even a previous close.
	ErrPriceUnavailable = errors.New("broker: price unavailable")

	// ErrQuantityTooSmall means the dollar amount sizes below the minimum
	// tradable quantity at the resolved price.
	ErrQuantityTooSmall = errors.New("broker: quantity too small")
)

// ConnectionError is a gateway connectivity failure. Batch operations treat
// it as fatal; per-symbol errors only fail their own symbol.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("broker: connection %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnection reports whether err should abort batch work rather than
// degrade to a per-symbol failure.
func IsConnection(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// OrderRejectedError carries the gateway's rejection of a submitted order.
type OrderRejectedError struct {
	OrderID int64
	Code    int
	Message string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("broker: order %d rejected (code %d): %s", e.OrderID, e.Code, e.Message)
}
