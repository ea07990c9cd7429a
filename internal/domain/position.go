package domain

import "github.com/shopspring/decimal"

// Position is keyed by (account, instrument). Quantity, Cost, ClosedGain, and
// VersionNumber come from the server; the remaining fields are derived by the
// engine and are never pushed. Derived fields are nil when the figure is
// unknown — nil means "no mark available", which renders differently from a
// true zero.
type Position struct {
	AccountKey    string          `json:"account_key"`
	InstrumentKey string          `json:"instrument_key"`
	Quantity      decimal.Decimal `json:"quantity"`
	Cost          decimal.Decimal `json:"cost"`
	ClosedGain    decimal.Decimal `json:"closed_gain"`
	UpdateTime    int64           `json:"update_time,omitempty"`
	VersionNumber int64           `json:"version_number"`

	// Derived by the engine, recomputed whenever the position or its
	// instrument's quote changes.
	CostBasis       *decimal.Decimal `json:"cost_basis,omitempty"`
	NetLiq          *decimal.Decimal `json:"net_liq,omitempty"`
	OpenGain        *decimal.Decimal `json:"open_gain,omitempty"`
	OpenGainPercent *decimal.Decimal `json:"open_gain_percent,omitempty"`
	Market          *Quote           `json:"market,omitempty"`
}
