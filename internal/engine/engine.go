package engine

import (
	"sort"
	"sync"

	"github.com/danapple/openbroker/internal/domain"
)

// Engine is the versioned entity store plus the recompute cascade. Multiple
// engines can coexist; each owns its state exclusively. Updates are expected
// from a single delivery goroutine; getters are safe from any goroutine.
//
// Every accepted update runs its full cascade — quote recompute, position
// revalue, account totals, global totals — under the lock, then dispatches
// callbacks in cascade order. A callback therefore always observes a store
// that already reflects the value it carries.
type Engine struct {
	mu sync.RWMutex
	st *store
	cb Callbacks
}

// New creates an engine dispatching to the given callback set.
func New(cb Callbacks) *Engine {
	return &Engine{st: newStore(), cb: cb}
}

// LoadInstruments stores the one-shot instrument read and announces every
// tradeable instrument, sorted by symbol. The returned slice is the set the
// caller should subscribe market topics for.
func (e *Engine) LoadInstruments(instruments map[string]domain.Instrument, nowMillis int64) []domain.Instrument {
	e.mu.Lock()
	tradeable := make([]domain.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		e.st.putInstrument(inst)
		if inst.Tradeable(nowMillis) {
			tradeable = append(tradeable, inst)
		}
	}
	e.mu.Unlock()

	sort.Slice(tradeable, func(i, j int) bool { return tradeable[i].Symbol < tradeable[j].Symbol })
	for _, inst := range tradeable {
		e.cb.instrument(inst)
	}
	return tradeable
}

// LoadAccounts stores the one-shot account read and announces each account,
// sorted by account key. The returned slice is the set to subscribe account
// update topics for.
func (e *Engine) LoadAccounts(accounts map[string]domain.Account) []domain.Account {
	e.mu.Lock()
	loaded := make([]domain.Account, 0, len(accounts))
	for _, acct := range accounts {
		e.st.putAccount(acct)
		loaded = append(loaded, acct)
	}
	e.mu.Unlock()

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].AccountKey < loaded[j].AccountKey })
	for _, acct := range loaded {
		e.cb.account(acct)
	}
	return loaded
}

// ApplyDepth applies an order-book update. Returns false when the update is
// stale, in which case nothing changed and nothing is dispatched.
func (e *Engine) ApplyDepth(d *domain.MarketDepth) bool {
	e.mu.Lock()
	if !e.st.applyDepth(d) {
		e.mu.Unlock()
		return false
	}
	fires := e.marketCascade(d.InstrumentKey)
	e.mu.Unlock()

	e.cb.depth(*d)
	for _, fire := range fires {
		fire()
	}
	return true
}

// ApplyLastTrade applies a trade-print update. Returns false when stale.
func (e *Engine) ApplyLastTrade(lt *domain.LastTrade) bool {
	e.mu.Lock()
	if !e.st.applyLastTrade(lt) {
		e.mu.Unlock()
		return false
	}
	fires := e.marketCascade(lt.InstrumentKey)
	e.mu.Unlock()

	e.cb.lastTrade(*lt)
	for _, fire := range fires {
		fire()
	}
	return true
}

// marketCascade recomputes the instrument's quote, revalues the position of
// every account holding it, refreshes the affected account totals and the
// global totals, and returns the dispatches in cascade order: positions and
// balances first, then global totals, then the quote itself.
// Caller holds the write lock.
func (e *Engine) marketCascade(instrumentKey string) []func() {
	q := computeQuote(instrumentKey, e.st.markets[instrumentKey])

	var fires []func()
	for _, h := range e.st.accounts {
		p, ok := h.positions[instrumentKey]
		if !ok {
			continue
		}
		revaluePosition(p, q)
		pc := *p
		fires = append(fires, func() { e.cb.position(pc) })

		e.st.recomputeAccountTotals(h)
		if h.balance != nil {
			bc, tc := *h.balance, h.totals
			fires = append(fires, func() { e.cb.balance(bc, tc) })
		}
	}
	e.st.recomputeGlobalTotals()
	gt := e.st.totals
	fires = append(fires, func() { e.cb.totals(gt) })

	if q != nil {
		qc := *q
		fires = append(fires, func() { e.cb.quote(qc) })
	}
	return fires
}

// ApplyAccountUpdate applies whichever parts of the envelope are present, in
// balance, position, order-state order. Returns true if any part was
// accepted.
func (e *Engine) ApplyAccountUpdate(u *domain.AccountUpdate) bool {
	if u == nil {
		return false
	}
	accepted := false
	if u.Balance != nil {
		accepted = e.ApplyBalance(u.Balance) || accepted
	}
	if u.Position != nil {
		accepted = e.ApplyPosition(u.Position) || accepted
	}
	if u.OrderState != nil {
		accepted = e.ApplyOrderState(u.OrderState) || accepted
	}
	return accepted
}

// ApplyBalance applies a cash balance update and refreshes the account and
// global totals. Returns false when stale.
func (e *Engine) ApplyBalance(b *domain.Balance) bool {
	e.mu.Lock()
	if !e.st.applyBalance(b) {
		e.mu.Unlock()
		return false
	}
	h := e.st.holder(b.AccountKey)
	e.st.recomputeAccountTotals(h)
	e.st.recomputeGlobalTotals()
	bc, tc, gt := *b, h.totals, e.st.totals
	e.mu.Unlock()

	e.cb.balance(bc, tc)
	e.cb.totals(gt)
	return true
}

// ApplyPosition applies a position update, derives its cost basis, revalues
// it against the instrument's current quote, and refreshes totals. Returns
// false when stale.
func (e *Engine) ApplyPosition(p *domain.Position) bool {
	e.mu.Lock()
	if !e.st.applyPosition(p) {
		e.mu.Unlock()
		return false
	}
	deriveCostBasis(p)
	revaluePosition(p, computeQuote(p.InstrumentKey, e.st.markets[p.InstrumentKey]))

	h := e.st.holder(p.AccountKey)
	e.st.recomputeAccountTotals(h)
	e.st.recomputeGlobalTotals()

	pc := *p
	var bal *domain.Balance
	var at domain.Totals
	if h.balance != nil {
		bc := *h.balance
		bal, at = &bc, h.totals
	}
	gt := e.st.totals
	e.mu.Unlock()

	e.cb.position(pc)
	if bal != nil {
		e.cb.balance(*bal, at)
	}
	e.cb.totals(gt)
	return true
}

// ApplyOrderState applies an order lifecycle update. Returns false when
// stale. Order states do not feed valuation, so no totals recompute runs.
func (e *Engine) ApplyOrderState(os *domain.OrderState) bool {
	e.mu.Lock()
	if !e.st.applyOrderState(os) {
		e.mu.Unlock()
		return false
	}
	oc := *os
	e.mu.Unlock()

	e.cb.orderState(oc)
	return true
}

// --- Lookups. Absent is a legitimate result, never an error. ---

// Instrument returns the loaded instrument for the key.
func (e *Engine) Instrument(instrumentKey string) (domain.Instrument, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	inst, ok := e.st.instruments[instrumentKey]
	return inst, ok
}

// Symbol returns the instrument's symbol, or a key-based placeholder when the
// instrument is unknown.
func (e *Engine) Symbol(instrumentKey string) string {
	if inst, ok := e.Instrument(instrumentKey); ok {
		return inst.Symbol
	}
	return "Id: " + instrumentKey
}

// Description returns the instrument's description, or a key-based
// placeholder when the instrument is unknown.
func (e *Engine) Description(instrumentKey string) string {
	if inst, ok := e.Instrument(instrumentKey); ok {
		return inst.Description
	}
	return "Id: " + instrumentKey
}

// Account returns the loaded account for the key.
func (e *Engine) Account(accountKey string) (domain.Account, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok || h.account.AccountKey == "" {
		return domain.Account{}, false
	}
	return h.account, true
}

// Balance returns the account's current cash balance.
func (e *Engine) Balance(accountKey string) (domain.Balance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok || h.balance == nil {
		return domain.Balance{}, false
	}
	return *h.balance, true
}

// Position returns the account's position in an instrument. No position yet
// is a normal state, not an error.
func (e *Engine) Position(accountKey, instrumentKey string) (domain.Position, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok {
		return domain.Position{}, false
	}
	p, ok := h.positions[instrumentKey]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Positions returns all of the account's positions, sorted by instrument key.
func (e *Engine) Positions(accountKey string) []domain.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok {
		return nil
	}
	out := make([]domain.Position, 0, len(h.positions))
	for _, p := range h.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstrumentKey < out[j].InstrumentKey })
	return out
}

// OrderState returns the order state for (account, external order id).
func (e *Engine) OrderState(accountKey, extOrderID string) (domain.OrderState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok {
		return domain.OrderState{}, false
	}
	os, ok := h.orders[extOrderID]
	if !ok {
		return domain.OrderState{}, false
	}
	return *os, true
}

// Orders returns all of the account's order states, sorted by external order
// id.
func (e *Engine) Orders(accountKey string) []domain.OrderState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok {
		return nil
	}
	out := make([]domain.OrderState, 0, len(h.orders))
	for _, os := range h.orders {
		out = append(out, *os)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order.ExtOrderID < out[j].Order.ExtOrderID })
	return out
}

// Quote returns the derived quote for an instrument; false when no market
// fact exists for it at all.
func (e *Engine) Quote(instrumentKey string) (domain.Quote, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	q := computeQuote(instrumentKey, e.st.markets[instrumentKey])
	if q == nil {
		return domain.Quote{}, false
	}
	return *q, true
}

// AccountTotals returns the account's current aggregate figures.
func (e *Engine) AccountTotals(accountKey string) (domain.Totals, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.st.accounts[accountKey]
	if !ok {
		return domain.Totals{}, false
	}
	return h.totals, true
}

// Totals returns the global aggregate across all accounts.
func (e *Engine) Totals() domain.Totals {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st.totals
}
