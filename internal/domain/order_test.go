package domain

import "testing"

func TestOrderStatus_IsOpen(t *testing.T) {
	tests := []struct {
		status OrderStatus
		open   bool
	}{
		{OrderRejected, false},
		{OrderPending, true},
		{OrderOpen, true},
		{OrderFilled, false},
		{OrderPendingCancel, true},
		{OrderCanceled, false},
		{OrderExpired, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsOpen(); got != tt.open {
				t.Errorf("OrderStatus(%s).IsOpen() = %v, want %v", tt.status, got, tt.open)
			}
		})
	}
}
