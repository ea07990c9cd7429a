// Package stream tracks which push-channel topics the terminal wants and
// keeps them subscribed across reconnects. The desired set is decoupled from
// the connection: subscribing is always safe, and a transport drop never
// forgets a topic.
package stream

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danapple/openbroker/internal/domain"
	"github.com/danapple/openbroker/internal/infra"
)

// Topic builders for the three channel families.

// DepthTopic is the order-book feed for an instrument.
func DepthTopic(instrumentKey string) string {
	return "/markets/" + instrumentKey + "/depth"
}

// LastTradeTopic is the trade-print feed for an instrument.
func LastTradeTopic(instrumentKey string) string {
	return "/markets/" + instrumentKey + "/last_trade"
}

// AccountTopic is the combined balance/position/order feed for an account.
func AccountTopic(accountKey string) string {
	return "/accounts/" + accountKey + "/updates"
}

const accountTopicPrefix = "/accounts/"

// Handler consumes message bodies delivered on a topic. Aliased so the stomp
// client's Subscribe satisfies Transport directly.
type Handler = func(body []byte)

// Transport is the push channel the manager drives. Implemented by the stomp
// client; faked in tests.
type Transport interface {
	Subscribe(destination string, h Handler) error
	Publish(destination string, body []byte) error
}

// Manager is the subscription lifecycle state machine: disconnected or
// connected, with a retained table of desired subscriptions. On every
// transition to connected it replays the whole table, and for account topics
// also pulls the balance, positions, and orders snapshots — the channel does
// not deliver initial state on subscribe alone. Replay after a reconnect is
// delayed by a bounded random jitter; the very first connection replays
// immediately.
type Manager struct {
	mu            sync.Mutex
	desired       map[string]Handler
	order         []string // replay in subscribe order
	transport     Transport
	connected     bool
	everConnected bool
	maxJitter     time.Duration

	// schedule defers a replay; overridden in tests.
	schedule func(d time.Duration, f func())
}

// NewManager creates a disconnected manager. maxJitter bounds the reconnect
// replay delay.
func NewManager(maxJitter time.Duration) *Manager {
	return &Manager{
		desired:   make(map[string]Handler),
		maxJitter: maxJitter,
		schedule: func(d time.Duration, f func()) {
			if d <= 0 {
				f()
				return
			}
			time.AfterFunc(d, f)
		},
	}
}

// Subscribe records the desire for a topic. Safe in any state: while
// disconnected it only updates the table; while connected it also issues the
// subscription (and snapshot pulls) immediately.
func (m *Manager) Subscribe(topic string, h Handler) {
	m.mu.Lock()
	if _, exists := m.desired[topic]; !exists {
		m.order = append(m.order, topic)
	}
	m.desired[topic] = h
	t := m.transport
	connected := m.connected
	m.mu.Unlock()

	if connected {
		m.issue(t, topic, h)
	}
}

// Topics returns the desired topics in subscription order.
func (m *Manager) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Connected reports the current state.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// HandleConnect transitions to connected and replays the desired set against
// the transport. The first connection replays at once; later ones wait a
// random jitter so a restarting server is not stormed by every terminal
// simultaneously.
func (m *Manager) HandleConnect(t Transport) {
	m.mu.Lock()
	delay := time.Duration(0)
	if m.everConnected {
		delay = infra.ReplayJitter(m.maxJitter)
	}
	m.connected = true
	m.everConnected = true
	m.transport = t
	schedule := m.schedule
	m.mu.Unlock()

	slog.Info("push channel up, replaying subscriptions", "delay", delay)
	schedule(delay, func() { m.replay(t) })
}

// HandleDisconnect transitions to disconnected. The desired set is retained
// unchanged so the next connect replays the same topics.
func (m *Manager) HandleDisconnect() {
	m.mu.Lock()
	m.connected = false
	m.transport = nil
	m.mu.Unlock()
	slog.Warn("push channel down, retaining subscriptions")
}

// replay issues every desired subscription once, in original order.
func (m *Manager) replay(t Transport) {
	m.mu.Lock()
	if !m.connected || m.transport != t {
		// A disconnect (or a newer connect) won the race with the jitter
		// timer; that connection's own replay is responsible now.
		m.mu.Unlock()
		return
	}
	topics := make([]string, len(m.order))
	copy(topics, m.order)
	handlers := make([]Handler, len(topics))
	for i, topic := range topics {
		handlers[i] = m.desired[topic]
	}
	m.mu.Unlock()

	for i, topic := range topics {
		m.issue(t, topic, handlers[i])
	}
}

// issue subscribes one topic and, for account topics, pulls the three
// initial snapshots.
func (m *Manager) issue(t Transport, topic string, h Handler) {
	if err := t.Subscribe(topic, h); err != nil {
		slog.Warn("subscribe failed", "topic", topic, "err", err)
		return
	}
	if !strings.HasPrefix(topic, accountTopicPrefix) {
		return
	}
	for _, scope := range []string{domain.ScopeBalance, domain.ScopePositions, domain.ScopeOrders} {
		body, err := json.Marshal(domain.SnapshotRequest{Request: "GET", Scope: scope})
		if err != nil {
			continue
		}
		if err := t.Publish(topic, body); err != nil {
			slog.Warn("snapshot pull failed", "topic", topic, "scope", scope, "err", err)
		}
	}
}
