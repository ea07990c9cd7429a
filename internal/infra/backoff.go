package infra

import (
	"math/rand"
	"time"
)

const (
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// DialBackoff returns the exponential backoff delay before the next
// connection attempt: baseDelay * 2^retry, capped at maxDelay.
func DialBackoff(retry int) time.Duration {
	if retry < 0 {
		return baseDelay
	}
	// 2^31s already exceeds the cap.
	if retry > 30 {
		return maxDelay
	}
	d := baseDelay * time.Duration(1<<retry)
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// ReplayJitter returns a uniformly random delay in [0, max) used to spread
// subscription replay after a reconnect, so a server restart does not get a
// synchronized storm from every terminal at once. Non-positive max means no
// delay.
func ReplayJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
