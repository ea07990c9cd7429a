package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/danapple/openbroker/internal/domain"
)

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestComputeMark(t *testing.T) {
	tests := []struct {
		name           string
		bid, ask, last *decimal.Decimal
		want           *decimal.Decimal
	}{
		{"both sides midpoint", d("100"), d("102"), d("98"), d("101")},
		{"bid only", d("100"), nil, d("98"), d("100")},
		{"ask only", nil, d("102"), d("98"), d("102")},
		{"last only", nil, nil, d("98"), d("98")},
		{"nothing", nil, nil, nil, nil},
		{"crossed book still midpoint", d("102"), d("100"), nil, d("101")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeMark(tt.bid, tt.ask, tt.last)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("mark = %v, want %v", got, tt.want)
			case !got.Equal(*tt.want):
				t.Errorf("mark = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeQuoteNoFacts(t *testing.T) {
	if q := computeQuote("I1", nil); q != nil {
		t.Errorf("quote = %+v, want nil without any market fact", q)
	}
	if q := computeQuote("I1", &marketFacts{}); q != nil {
		t.Errorf("quote = %+v, want nil with empty facts", q)
	}
}

func TestComputeQuoteFromDepth(t *testing.T) {
	f := &marketFacts{depth: &domain.MarketDepth{
		InstrumentKey: "I1",
		Buys: []domain.PriceLevel{
			{Price: decimal.NewFromInt(60), Quantity: decimal.NewFromInt(5)},
			{Price: decimal.NewFromInt(59), Quantity: decimal.NewFromInt(9)},
		},
		Sells: []domain.PriceLevel{
			{Price: decimal.NewFromInt(62), Quantity: decimal.NewFromInt(3)},
		},
		VersionNumber: 1,
	}}
	q := computeQuote("I1", f)
	if q == nil {
		t.Fatal("no quote from depth")
	}
	if !q.Bid.Equal(decimal.NewFromInt(60)) || !q.BidSize.Equal(decimal.NewFromInt(5)) {
		t.Errorf("bid = %s x %s, want 60 x 5 (best level only)", q.Bid, q.BidSize)
	}
	if !q.Ask.Equal(decimal.NewFromInt(62)) || !q.AskSize.Equal(decimal.NewFromInt(3)) {
		t.Errorf("ask = %s x %s, want 62 x 3", q.Ask, q.AskSize)
	}
	if q.Last != nil {
		t.Errorf("last = %s, want nil without a trade print", q.Last)
	}
	if !q.Mark.Equal(decimal.NewFromInt(61)) {
		t.Errorf("mark = %s, want 61", q.Mark)
	}
}

// An empty book with a trade print yields a quote whose mark falls back to
// the last price.
func TestComputeQuoteEmptyBookWithLast(t *testing.T) {
	f := &marketFacts{
		depth:     &domain.MarketDepth{InstrumentKey: "I1", VersionNumber: 3},
		lastTrade: &domain.LastTrade{InstrumentKey: "I1", Price: decimal.NewFromInt(98), VersionNumber: 1},
	}
	q := computeQuote("I1", f)
	if q == nil {
		t.Fatal("no quote")
	}
	if q.Bid != nil || q.Ask != nil {
		t.Errorf("bid/ask = %v/%v, want nil for empty ladders", q.Bid, q.Ask)
	}
	if !q.Mark.Equal(decimal.NewFromInt(98)) {
		t.Errorf("mark = %s, want 98", q.Mark)
	}
}

// Depth with empty ladders and no trade yields a quote with an unknown mark,
// not an absent quote.
func TestComputeQuoteAllFieldsAbsent(t *testing.T) {
	f := &marketFacts{depth: &domain.MarketDepth{InstrumentKey: "I1", VersionNumber: 1}}
	q := computeQuote("I1", f)
	if q == nil {
		t.Fatal("quote absent, want present with nil fields")
	}
	if q.Bid != nil || q.Ask != nil || q.Last != nil || q.Mark != nil {
		t.Errorf("quote = %+v, want all price fields nil", q)
	}
}
