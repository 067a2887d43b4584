package ibgw

// Message types exchanged with the gateway. Requests flow client to
// gateway, callbacks flow back; both sides use the same JSON envelope.
const (
	// requests
	MsgSubscribeMarketData = "subscribe_market_data"
	MsgCancelMarketData    = "cancel_market_data"
	MsgPositions           = "positions"
	MsgAccounts            = "accounts"
	MsgPlaceOrder          = "place_order"

	// callbacks
	MsgNextValidID  = "next_valid_id"
	MsgTick         = "tick"
	MsgPosition     = "position"
	MsgPositionsEnd = "positions_end"
	MsgOrderStatus  = "order_status"
	MsgError        = "error"
)

// Envelope is the frame on the wire. ReqID correlates callbacks with the
// request that solicited them; every request carries a fresh one.
type Envelope struct {
	Type  string `json:"type"`
	ReqID int64  `json:"req_id,omitempty"`

	// next_valid_id, order_status
	OrderID int64 `json:"order_id,omitempty"`

	// market data
	Symbol   string  `json:"symbol,omitempty"`
	TickKind string  `json:"tick_kind,omitempty"`
	Price    float64 `json:"price,omitempty"`

	// positions
	Account  string  `json:"account,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	AvgCost  float64 `json:"avg_cost,omitempty"`

	// accounts
	Accounts []string `json:"accounts,omitempty"`

	// orders
	Order  *OrderPayload `json:"order,omitempty"`
	Status string        `json:"status,omitempty"`

	// errors and notices
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OrderPayload is the order description inside a place_order request.
type OrderPayload struct {
	OrderID    int64   `json:"order_id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Quantity   float64 `json:"quantity"`
	Type       string  `json:"order_type"`
	LimitPrice float64 `json:"limit_price,omitempty"`
	TIF        string  `json:"tif"`
	OutsideRTH bool    `json:"outside_rth,omitempty"`
	Account    string  `json:"account,omitempty"`
}

// Gateway status chatter in this code range reports data-farm connectivity.
// It is informational and never fails a request.
func benignCode(code int) bool {
	return (code >= 2103 && code <= 2108) || code == 2158
}
