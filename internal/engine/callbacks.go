package engine

import "github.com/danapple/openbroker/internal/domain"

// Callbacks is the capability set collaborators register to observe derived
// entities. One optional slot per entity kind; nil slots are no-ops.
// Dispatch is synchronous and happens after the corresponding store and
// recompute step completes, so a callback may read the engine and see the
// value it was handed.
type Callbacks struct {
	OnInstrument func(domain.Instrument)
	OnAccount    func(domain.Account)
	OnDepth      func(domain.MarketDepth)
	OnLastTrade  func(domain.LastTrade)
	OnQuote      func(domain.Quote)
	OnPosition   func(domain.Position)
	OnOrderState func(domain.OrderState)
	OnBalance    func(domain.Balance, domain.Totals)
	OnTotals     func(domain.Totals)
}

func (c *Callbacks) instrument(i domain.Instrument) {
	if c.OnInstrument != nil {
		c.OnInstrument(i)
	}
}

func (c *Callbacks) account(a domain.Account) {
	if c.OnAccount != nil {
		c.OnAccount(a)
	}
}

func (c *Callbacks) depth(d domain.MarketDepth) {
	if c.OnDepth != nil {
		c.OnDepth(d)
	}
}

func (c *Callbacks) lastTrade(lt domain.LastTrade) {
	if c.OnLastTrade != nil {
		c.OnLastTrade(lt)
	}
}

func (c *Callbacks) quote(q domain.Quote) {
	if c.OnQuote != nil {
		c.OnQuote(q)
	}
}

func (c *Callbacks) position(p domain.Position) {
	if c.OnPosition != nil {
		c.OnPosition(p)
	}
}

func (c *Callbacks) orderState(os domain.OrderState) {
	if c.OnOrderState != nil {
		c.OnOrderState(os)
	}
}

func (c *Callbacks) balance(b domain.Balance, t domain.Totals) {
	if c.OnBalance != nil {
		c.OnBalance(b, t)
	}
}

func (c *Callbacks) totals(t domain.Totals) {
	if c.OnTotals != nil {
		c.OnTotals(t)
	}
}
