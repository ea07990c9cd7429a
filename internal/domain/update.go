package domain

// AccountUpdate is the envelope delivered on /accounts/{key}/updates. Any
// subset of the fields may be present in a single message.
type AccountUpdate struct {
	Balance    *Balance    `json:"balance,omitempty"`
	Position   *Position   `json:"position,omitempty"`
	OrderState *OrderState `json:"order_state,omitempty"`
}

// SnapshotRequest is published on an account topic right after subscribing,
// once per scope, to pull the initial state the push channel does not deliver
// on its own.
type SnapshotRequest struct {
	Request string `json:"request"` // always "GET"
	Scope   string `json:"scope"`   // "balance", "positions", or "orders"
}

// Snapshot scopes.
const (
	ScopeBalance   = "balance"
	ScopePositions = "positions"
	ScopeOrders    = "orders"
)
