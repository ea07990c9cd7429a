// Package domain defines the entities the terminal engine tracks: instruments,
// accounts, balances, positions, orders, and market data. All monetary values
// use shopspring/decimal — never float64 for money. Field tags follow the
// server's snake_case wire format.
package domain

// InstrumentStatus is the lifecycle status reported by the server.
type InstrumentStatus string

const (
	InstrumentActive   InstrumentStatus = "Active"
	InstrumentInactive InstrumentStatus = "Inactive"
	InstrumentExpired  InstrumentStatus = "Expired"
)

// Instrument is immutable once loaded for the session.
type Instrument struct {
	InstrumentKey  string           `json:"instrument_key"`
	Symbol         string           `json:"symbol"`
	Description    string           `json:"description"`
	Status         InstrumentStatus `json:"status"`
	ExpirationTime int64            `json:"expiration_time,omitempty"` // Unix ms, 0 = never expires
}

// Tradeable reports whether the instrument should be shown and subscribed:
// Active status and not expired as of now (Unix ms).
func (i *Instrument) Tradeable(nowMillis int64) bool {
	if i.Status != InstrumentActive {
		return false
	}
	return i.ExpirationTime == 0 || i.ExpirationTime >= nowMillis
}
