package domain

import "testing"

func TestInstrument_Tradeable(t *testing.T) {
	const now = int64(1_700_000_000_000)

	tests := []struct {
		name       string
		status     InstrumentStatus
		expiration int64
		want       bool
	}{
		{"ActiveNoExpiry", InstrumentActive, 0, true},
		{"ActiveFutureExpiry", InstrumentActive, now + 1000, true},
		{"ActivePastExpiry", InstrumentActive, now - 1000, false},
		{"Inactive", InstrumentInactive, now + 1000, false},
		{"Expired", InstrumentExpired, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Instrument{Status: tt.status, ExpirationTime: tt.expiration}
			if got := i.Tradeable(now); got != tt.want {
				t.Errorf("Tradeable() = %v, want %v", got, tt.want)
			}
		})
	}
}
