// Package engine keeps the terminal's view of accounts, positions, orders,
// and market data consistent with an out-of-order, at-least-once stream of
// server updates, and re-derives marks, net liquidation values, and totals
// whenever a contributing fact changes.
package engine

import (
	"github.com/danapple/openbroker/internal/domain"
)

// supersedes is the conflict-resolution rule shared by every versioned entity
// kind: an incoming update wins only if its version is strictly greater than
// the stored one. Ties are stale — re-delivery of the same version must not
// mutate state.
func supersedes(stored, incoming int64) bool {
	return incoming > stored
}

// accountHolder groups everything the store tracks for one account.
// Positions are keyed by instrument key, orders by external order id.
type accountHolder struct {
	account   domain.Account
	balance   *domain.Balance
	positions map[string]*domain.Position
	orders    map[string]*domain.OrderState
	totals    domain.Totals
}

// marketFacts are the two independently versioned raw feeds per instrument.
type marketFacts struct {
	depth     *domain.MarketDepth
	lastTrade *domain.LastTrade
}

// store owns all entity state. Nothing is deleted during a session; closed
// positions remain at quantity zero. The engine wraps every access in its own
// lock, so the store itself is not synchronized.
type store struct {
	instruments map[string]domain.Instrument
	accounts    map[string]*accountHolder
	markets     map[string]*marketFacts
	totals      domain.Totals
}

func newStore() *store {
	return &store{
		instruments: make(map[string]domain.Instrument),
		accounts:    make(map[string]*accountHolder),
		markets:     make(map[string]*marketFacts),
	}
}

// holder returns the account holder, creating it on first touch. Updates can
// legitimately arrive for an account before its one-shot load completes.
func (s *store) holder(accountKey string) *accountHolder {
	h, ok := s.accounts[accountKey]
	if !ok {
		h = &accountHolder{
			positions: make(map[string]*domain.Position),
			orders:    make(map[string]*domain.OrderState),
		}
		s.accounts[accountKey] = h
	}
	return h
}

func (s *store) facts(instrumentKey string) *marketFacts {
	f, ok := s.markets[instrumentKey]
	if !ok {
		f = &marketFacts{}
		s.markets[instrumentKey] = f
	}
	return f
}

func (s *store) putInstrument(inst domain.Instrument) {
	s.instruments[inst.InstrumentKey] = inst
}

func (s *store) putAccount(acct domain.Account) {
	s.holder(acct.AccountKey).account = acct
}

// applyBalance stores the balance iff it supersedes the current one.
func (s *store) applyBalance(b *domain.Balance) bool {
	h := s.holder(b.AccountKey)
	if h.balance != nil && !supersedes(h.balance.VersionNumber, b.VersionNumber) {
		return false
	}
	h.balance = b
	return true
}

// applyPosition stores the position iff it supersedes the current one.
func (s *store) applyPosition(p *domain.Position) bool {
	h := s.holder(p.AccountKey)
	if old, ok := h.positions[p.InstrumentKey]; ok && !supersedes(old.VersionNumber, p.VersionNumber) {
		return false
	}
	h.positions[p.InstrumentKey] = p
	return true
}

// applyOrderState stores the order state iff it supersedes the current one.
func (s *store) applyOrderState(os *domain.OrderState) bool {
	h := s.holder(os.Order.AccountKey)
	if old, ok := h.orders[os.Order.ExtOrderID]; ok && !supersedes(old.VersionNumber, os.VersionNumber) {
		return false
	}
	h.orders[os.Order.ExtOrderID] = os
	return true
}

// applyDepth stores the depth snapshot iff it supersedes the current one.
// Depth and last trade are versioned independently.
func (s *store) applyDepth(d *domain.MarketDepth) bool {
	f := s.facts(d.InstrumentKey)
	if f.depth != nil && !supersedes(f.depth.VersionNumber, d.VersionNumber) {
		return false
	}
	f.depth = d
	return true
}

// applyLastTrade stores the trade print iff it supersedes the current one.
func (s *store) applyLastTrade(lt *domain.LastTrade) bool {
	f := s.facts(lt.InstrumentKey)
	if f.lastTrade != nil && !supersedes(f.lastTrade.VersionNumber, lt.VersionNumber) {
		return false
	}
	f.lastTrade = lt
	return true
}
