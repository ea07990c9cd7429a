package engine

import (
	"github.com/shopspring/decimal"

	"github.com/danapple/openbroker/internal/domain"
)

// computeQuote derives the single quote view for an instrument from its raw
// facts. Returns nil only when no market fact exists at all — a quote with a
// nil mark but some fields present is a different, legitimate state.
func computeQuote(instrumentKey string, f *marketFacts) *domain.Quote {
	if f == nil || (f.depth == nil && f.lastTrade == nil) {
		return nil
	}

	q := &domain.Quote{InstrumentKey: instrumentKey}
	if f.depth != nil {
		if len(f.depth.Buys) > 0 {
			best := f.depth.Buys[0]
			q.Bid = dec(best.Price)
			q.BidSize = dec(best.Quantity)
		}
		if len(f.depth.Sells) > 0 {
			best := f.depth.Sells[0]
			q.Ask = dec(best.Price)
			q.AskSize = dec(best.Quantity)
		}
	}
	if f.lastTrade != nil {
		q.Last = dec(f.lastTrade.Price)
	}
	q.Mark = computeMark(q.Bid, q.Ask, q.Last)
	return q
}

// computeMark applies the mark-price priority rule: midpoint when both sides
// of the book exist, then bid alone, then ask alone, then last trade, then
// unknown.
func computeMark(bid, ask, last *decimal.Decimal) *decimal.Decimal {
	switch {
	case bid != nil && ask != nil:
		two := decimal.NewFromInt(2)
		return dec(bid.Add(*ask).Div(two))
	case bid != nil:
		return bid
	case ask != nil:
		return ask
	case last != nil:
		return last
	}
	return nil
}

// dec copies a decimal onto the heap for use in nil-able fields.
func dec(d decimal.Decimal) *decimal.Decimal {
	return &d
}
