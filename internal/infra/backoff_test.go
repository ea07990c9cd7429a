package infra

import (
	"testing"
	"time"
)

func TestDialBackoff(t *testing.T) {
	tests := []struct {
		name  string
		retry int
		want  time.Duration
	}{
		{"Negative", -1, 1 * time.Second},
		{"Zero", 0, 1 * time.Second},
		{"One", 1, 2 * time.Second},
		{"Five", 5, 32 * time.Second},
		{"Capped", 6, 60 * time.Second},
		{"Huge", 500, 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DialBackoff(tt.retry); got != tt.want {
				t.Errorf("DialBackoff(%d) = %v, want %v", tt.retry, got, tt.want)
			}
		})
	}
}

func TestReplayJitter(t *testing.T) {
	if got := ReplayJitter(0); got != 0 {
		t.Errorf("ReplayJitter(0) = %v, want 0", got)
	}
	if got := ReplayJitter(-time.Second); got != 0 {
		t.Errorf("ReplayJitter(-1s) = %v, want 0", got)
	}
	max := 5 * time.Second
	for i := 0; i < 100; i++ {
		got := ReplayJitter(max)
		if got < 0 || got >= max {
			t.Fatalf("ReplayJitter(%v) = %v, out of [0, max)", max, got)
		}
	}
}
