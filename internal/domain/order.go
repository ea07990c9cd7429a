package domain

import "github.com/shopspring/decimal"

// OrderStatus follows the server's vocabulary.
type OrderStatus string

const (
	OrderRejected      OrderStatus = "Rejected"
	OrderPending       OrderStatus = "Pending"
	OrderOpen          OrderStatus = "Open"
	OrderFilled        OrderStatus = "Filled"
	OrderPendingCancel OrderStatus = "PendingCancel"
	OrderCanceled      OrderStatus = "Canceled"
	OrderExpired       OrderStatus = "Expired"
)

// IsOpen reports whether the order can still trade or be canceled.
func (s OrderStatus) IsOpen() bool {
	switch s {
	case OrderPending, OrderOpen, OrderPendingCancel:
		return true
	}
	return false
}

// OrderLeg is one (ratio, instrument) component of a possibly
// multi-instrument order.
type OrderLeg struct {
	InstrumentKey string `json:"instrument_key"`
	Ratio         int    `json:"ratio"`
}

// Order is the definition part of an order state update.
type Order struct {
	ExtOrderID  string          `json:"ext_order_id"`
	AccountKey  string          `json:"account_key"`
	OrderNumber int             `json:"order_number,omitempty"`
	CreateTime  int64           `json:"create_time,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Legs        []OrderLeg      `json:"legs"`
}

// OrderState is keyed by (account, ext order id) and versioned.
type OrderState struct {
	Order             Order           `json:"order"`
	OrderStatus       OrderStatus     `json:"order_status"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	RejectReason      string          `json:"reject_reason,omitempty"`
	UpdateTime        int64           `json:"update_time,omitempty"`
	VersionNumber     int64           `json:"version_number"`
}

// NewOrderRequest is the body of POST /accounts/{account_key}/orders.
type NewOrderRequest struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Legs     []OrderLeg      `json:"legs"`
}
