package domain

import "github.com/shopspring/decimal"

// Market fact categories. Depth and last trade are pushed on separate topics
// and versioned independently.
const (
	CategoryDepth     = "depth"
	CategoryLastTrade = "last_trade"
)

// PriceLevel is one rung of the depth ladder.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MarketDepth is the order-book snapshot for one instrument. Buys and sells
// are best-first; the engine only consumes level zero of each side, but the
// full ladders are retained for display.
type MarketDepth struct {
	InstrumentKey string       `json:"instrument_key"`
	Buys          []PriceLevel `json:"buys"`
	Sells         []PriceLevel `json:"sells"`
	CreateTime    int64        `json:"create_time,omitempty"`
	VersionNumber int64        `json:"version_number"`
}

// LastTrade is the most recent trade print for one instrument.
type LastTrade struct {
	InstrumentKey string          `json:"instrument_key"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	CreateTime    int64           `json:"create_time,omitempty"`
	VersionNumber int64           `json:"version_number"`
}

// Quote is the single derived view per instrument, recomputed on demand from
// the depth and last-trade facts. Every field except the key may be nil when
// the underlying fact is missing.
type Quote struct {
	InstrumentKey string           `json:"instrument_key"`
	Bid           *decimal.Decimal `json:"bid,omitempty"`
	BidSize       *decimal.Decimal `json:"bid_size,omitempty"`
	Ask           *decimal.Decimal `json:"ask,omitempty"`
	AskSize       *decimal.Decimal `json:"ask_size,omitempty"`
	Last          *decimal.Decimal `json:"last,omitempty"`
	Mark          *decimal.Decimal `json:"mark,omitempty"`
}
