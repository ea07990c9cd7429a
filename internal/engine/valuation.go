package engine

import (
	"github.com/shopspring/decimal"

	"github.com/danapple/openbroker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// deriveCostBasis sets the position's cost basis: cost / quantity, nil when
// quantity is zero. Runs once per accepted position update.
func deriveCostBasis(p *domain.Position) {
	if p.Quantity.IsZero() {
		p.CostBasis = nil
		return
	}
	p.CostBasis = dec(p.Cost.Div(p.Quantity))
}

// revaluePosition recomputes the position's derived figures from the quote.
// With a known mark: net liq = mark x quantity, open gain = net liq - cost.
// Without one, the derived fields go nil — unknown, not zero.
func revaluePosition(p *domain.Position, q *domain.Quote) {
	if q == nil || q.Mark == nil {
		p.Market = nil
		p.NetLiq = nil
		p.OpenGain = nil
		p.OpenGainPercent = nil
		return
	}
	netLiq := q.Mark.Mul(p.Quantity)
	openGain := netLiq.Sub(p.Cost)
	p.Market = q
	p.NetLiq = dec(netLiq)
	p.OpenGain = dec(openGain)
	if p.Cost.IsZero() {
		p.OpenGainPercent = nil
	} else {
		p.OpenGainPercent = dec(openGain.Div(p.Cost).Mul(hundred))
	}
}

// recomputeAccountTotals folds the account's positions and cash balance into
// its totals. Positions whose mark is unknown contribute zero open gain and
// net liq rather than poisoning the sum.
func (s *store) recomputeAccountTotals(h *accountHolder) {
	var t domain.Totals
	for _, p := range h.positions {
		t.Cost = t.Cost.Add(p.Cost)
		t.ClosedGain = t.ClosedGain.Add(p.ClosedGain)
		if p.OpenGain != nil {
			t.OpenGain = t.OpenGain.Add(*p.OpenGain)
		}
		if p.NetLiq != nil {
			t.NetLiq = t.NetLiq.Add(*p.NetLiq)
		}
	}
	if h.balance != nil {
		t.NetLiq = t.NetLiq.Add(h.balance.Cash)
	}
	h.totals = t
}

// recomputeGlobalTotals folds every account's totals into the global ones.
func (s *store) recomputeGlobalTotals() {
	var t domain.Totals
	for _, h := range s.accounts {
		t.Cost = t.Cost.Add(h.totals.Cost)
		t.OpenGain = t.OpenGain.Add(h.totals.OpenGain)
		t.ClosedGain = t.ClosedGain.Add(h.totals.ClosedGain)
		t.NetLiq = t.NetLiq.Add(h.totals.NetLiq)
	}
	s.totals = t
}
