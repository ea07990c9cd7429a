package broker

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestBroker() *Broker {
	return New(Options{RestURL: "http://localhost:0", WSURL: "ws://localhost:0"})
}

func TestHandleDepthMessage(t *testing.T) {
	b := newTestBroker()
	b.handleDepthMessage([]byte(`{
		"instrument_key": "I1",
		"buys":  [{"price": "60", "quantity": "5"}],
		"sells": [{"price": "62", "quantity": "3"}],
		"version_number": 1
	}`))

	q, ok := b.Engine().Quote("I1")
	if !ok {
		t.Fatal("no quote after depth update")
	}
	if q.Bid == nil || !q.Bid.Equal(decimal.NewFromInt(60)) {
		t.Errorf("bid = %v, want 60", q.Bid)
	}
	if q.Mark == nil || !q.Mark.Equal(decimal.NewFromInt(61)) {
		t.Errorf("mark = %v, want 61", q.Mark)
	}
}

func TestHandleDepthMessageMalformed(t *testing.T) {
	b := newTestBroker()
	for name, body := range map[string]string{
		"not json":    `{"instrument_key": `,
		"missing key": `{"buys": [], "sells": [], "version_number": 1}`,
	} {
		b.handleDepthMessage([]byte(body))
		if q, ok := b.Engine().Quote("I1"); ok {
			t.Errorf("%s: quote = %+v, want none", name, q)
		}
	}
}

func TestHandleLastTradeMessage(t *testing.T) {
	b := newTestBroker()
	b.handleLastTradeMessage([]byte(`{
		"instrument_key": "I1",
		"price": "98",
		"quantity": "2",
		"version_number": 1
	}`))

	q, ok := b.Engine().Quote("I1")
	if !ok {
		t.Fatal("no quote after last trade update")
	}
	if q.Last == nil || !q.Last.Equal(decimal.NewFromInt(98)) {
		t.Errorf("last = %v, want 98", q.Last)
	}
	if q.Mark == nil || !q.Mark.Equal(decimal.NewFromInt(98)) {
		t.Errorf("mark = %v, want 98 (last is only source)", q.Mark)
	}
}

func TestHandleAccountMessageAllParts(t *testing.T) {
	b := newTestBroker()
	b.handleAccountMessage([]byte(`{
		"balance": {"account_key": "A1", "cash": "1000", "version_number": 1},
		"position": {
			"account_key": "A1", "instrument_key": "I1",
			"quantity": "10", "cost": "500", "version_number": 1
		},
		"order_state": {
			"order": {
				"ext_order_id": "O1", "account_key": "A1",
				"price": "50", "quantity": "10",
				"legs": [{"ratio": 1, "instrument_key": "I1"}]
			},
			"order_status": "Open",
			"remaining_quantity": "10",
			"version_number": 1
		}
	}`))

	eng := b.Engine()
	if bal, ok := eng.Balance("A1"); !ok || !bal.Cash.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %+v (ok=%v), want cash 1000", bal, ok)
	}
	pos, ok := eng.Position("A1", "I1")
	if !ok || !pos.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("position = %+v (ok=%v), want quantity 10", pos, ok)
	}
	if pos.CostBasis == nil || !pos.CostBasis.Equal(decimal.NewFromInt(50)) {
		t.Errorf("cost basis = %v, want 50", pos.CostBasis)
	}
	if os, ok := eng.OrderState("A1", "O1"); !ok || !os.OrderStatus.IsOpen() {
		t.Errorf("order state = %+v (ok=%v), want open O1", os, ok)
	}
}

// A bad section of the envelope is skipped; the rest still applies.
func TestHandleAccountMessagePartialFailure(t *testing.T) {
	b := newTestBroker()
	b.handleAccountMessage([]byte(`{
		"balance": {"cash": "1000", "version_number": 1},
		"position": {
			"account_key": "A1", "instrument_key": "I1",
			"quantity": "4", "cost": "100", "version_number": 1
		}
	}`))

	eng := b.Engine()
	if bal, ok := eng.Balance("A1"); ok {
		t.Errorf("balance without account_key applied: %+v", bal)
	}
	if _, ok := eng.Position("A1", "I1"); !ok {
		t.Error("valid position skipped because sibling balance was malformed")
	}
}

func TestHandleAccountMessageMalformedEnvelope(t *testing.T) {
	b := newTestBroker()
	b.handleAccountMessage([]byte(`not json`))
	if positions := b.Engine().Positions("A1"); len(positions) != 0 {
		t.Errorf("positions = %v, want none", positions)
	}
}

func TestStaleDepthKeepsCurrentQuote(t *testing.T) {
	b := newTestBroker()
	b.handleDepthMessage([]byte(`{"instrument_key": "I1", "buys": [{"price": "60", "quantity": "1"}], "sells": [], "version_number": 2}`))
	b.handleDepthMessage([]byte(`{"instrument_key": "I1", "buys": [{"price": "99", "quantity": "1"}], "sells": [], "version_number": 2}`))

	q, ok := b.Engine().Quote("I1")
	if !ok || q.Bid == nil || !q.Bid.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("quote = %+v (ok=%v), want bid 60 from the first version-2 update", q, ok)
	}
}
