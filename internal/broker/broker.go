// Package broker wires the engine, the REST client, and the push channel
// into the single facade the display layer talks to. The display registers
// callbacks for derived entities and calls the two command operations; it
// never mutates engine state.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danapple/openbroker/internal/domain"
	"github.com/danapple/openbroker/internal/engine"
	"github.com/danapple/openbroker/internal/rest"
	"github.com/danapple/openbroker/internal/stomp"
	"github.com/danapple/openbroker/internal/storage"
	"github.com/danapple/openbroker/internal/stream"
)

// Options configures a Broker.
type Options struct {
	RestURL   string
	WSURL     string
	MaxJitter time.Duration

	// Callbacks observe derived entities; nil slots are no-ops.
	Callbacks engine.Callbacks

	// Command outcome callbacks. Independent of the order-state updates
	// that later arrive on the push channel.
	OnSubmitResult rest.ResultFunc
	OnCancelResult rest.ResultFunc

	// Journal, when non-nil, records every accepted update.
	Journal *storage.Journal
}

// Broker is the terminal-side engine facade.
type Broker struct {
	engine   *engine.Engine
	rest     *rest.Client
	subs     *stream.Manager
	push     *stomp.Client
	journal  *storage.Journal
	onSubmit rest.ResultFunc
	onCancel rest.ResultFunc

	ctx context.Context
}

// New creates a Broker; call Start to load reference data and begin
// streaming.
func New(opts Options) *Broker {
	b := &Broker{
		engine:   engine.New(opts.Callbacks),
		rest:     rest.NewClient(opts.RestURL),
		subs:     stream.NewManager(opts.MaxJitter),
		journal:  opts.Journal,
		onSubmit: opts.OnSubmitResult,
		onCancel: opts.OnCancelResult,
	}
	b.push = stomp.NewClient(opts.WSURL,
		func() { b.subs.HandleConnect(b.push) },
		func() { b.subs.HandleDisconnect() },
	)
	return b
}

// Start performs the startup sequence: load instruments, register market
// subscriptions for the tradeable ones, load accounts, register their update
// subscriptions, then bring up the push channel. Subscriptions registered
// here are replayed on every (re)connect.
func (b *Broker) Start(ctx context.Context) error {
	b.ctx = ctx

	instruments, err := b.rest.Instruments(ctx)
	if err != nil {
		return fmt.Errorf("startup instrument load failed: %w", err)
	}
	tradeable := b.engine.LoadInstruments(instruments, time.Now().UnixMilli())
	for _, inst := range tradeable {
		key := inst.InstrumentKey
		b.subs.Subscribe(stream.DepthTopic(key), b.handleDepthMessage)
		b.subs.Subscribe(stream.LastTradeTopic(key), b.handleLastTradeMessage)
	}
	slog.Info("instruments loaded", "total", len(instruments), "tradeable", len(tradeable))

	accounts, err := b.rest.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("startup account load failed: %w", err)
	}
	loaded := b.engine.LoadAccounts(accounts)
	for _, acct := range loaded {
		b.subs.Subscribe(stream.AccountTopic(acct.AccountKey), b.handleAccountMessage)
	}
	slog.Info("accounts loaded", "count", len(loaded))

	b.push.Start(ctx)
	return nil
}

// Stop tears down the push channel. Desired subscriptions remain registered,
// so a later Start on a fresh broker is the only way to resume.
func (b *Broker) Stop() {
	b.push.Stop()
}

// Engine exposes the entity store for lookups. Collaborators read only.
func (b *Broker) Engine() *engine.Engine {
	return b.engine
}

// SubmitOrder issues a single-leg limit order for the account. The outcome
// callback fires with the server's verdict; the order's lifecycle then
// arrives via order-state updates on the push channel.
func (b *Broker) SubmitOrder(ctx context.Context, accountKey, instrumentKey string, quantity, price decimal.Decimal) {
	req := domain.NewOrderRequest{
		Price:    price,
		Quantity: quantity,
		Legs:     []domain.OrderLeg{{Ratio: 1, InstrumentKey: instrumentKey}},
	}
	b.rest.SubmitOrder(ctx, accountKey, req, b.result(b.onSubmit))
}

// CancelOrder requests cancellation of an order by external id.
func (b *Broker) CancelOrder(ctx context.Context, accountKey, extOrderID string) {
	b.rest.CancelOrder(ctx, accountKey, extOrderID, b.result(b.onCancel))
}

func (b *Broker) result(f rest.ResultFunc) rest.ResultFunc {
	if f != nil {
		return f
	}
	return func(status int, body json.RawMessage, err error) {
		if err != nil {
			slog.Warn("command transport failure", "err", err)
			return
		}
		slog.Info("command result", "status", status)
	}
}

// --- Push message handlers. A malformed payload fails that single update,
// logged at Warn; it never disturbs other state. Stale updates are dropped
// by the engine without logging — they are expected, not errors. ---

func (b *Broker) handleDepthMessage(body []byte) {
	var depth domain.MarketDepth
	if err := json.Unmarshal(body, &depth); err != nil || depth.InstrumentKey == "" {
		slog.Warn("malformed depth payload", "err", err)
		return
	}
	if b.engine.ApplyDepth(&depth) {
		b.record("depth", depth.InstrumentKey, depth.VersionNumber, body)
	}
}

func (b *Broker) handleLastTradeMessage(body []byte) {
	var lt domain.LastTrade
	if err := json.Unmarshal(body, &lt); err != nil || lt.InstrumentKey == "" {
		slog.Warn("malformed last trade payload", "err", err)
		return
	}
	if b.engine.ApplyLastTrade(&lt) {
		b.record("last_trade", lt.InstrumentKey, lt.VersionNumber, body)
	}
}

// handleAccountMessage processes the update envelope part by part, so one
// bad section cannot block the others.
func (b *Broker) handleAccountMessage(body []byte) {
	var update domain.AccountUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		slog.Warn("malformed account update payload", "err", err)
		return
	}

	if bal := update.Balance; bal != nil {
		if bal.AccountKey == "" {
			slog.Warn("balance update missing account_key")
		} else if b.engine.ApplyBalance(bal) {
			b.record("balance", bal.AccountKey, bal.VersionNumber, body)
		}
	}
	if pos := update.Position; pos != nil {
		if pos.AccountKey == "" || pos.InstrumentKey == "" {
			slog.Warn("position update missing keys", "account_key", pos.AccountKey, "instrument_key", pos.InstrumentKey)
		} else if b.engine.ApplyPosition(pos) {
			b.record("position", pos.AccountKey+"/"+pos.InstrumentKey, pos.VersionNumber, body)
		}
	}
	if os := update.OrderState; os != nil {
		if os.Order.AccountKey == "" || os.Order.ExtOrderID == "" {
			slog.Warn("order state update missing keys", "account_key", os.Order.AccountKey)
		} else if b.engine.ApplyOrderState(os) {
			b.record("order_state", os.Order.AccountKey+"/"+os.Order.ExtOrderID, os.VersionNumber, body)
		}
	}
}

func (b *Broker) record(kind, key string, version int64, payload []byte) {
	if b.journal == nil {
		return
	}
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := b.journal.Record(ctx, kind, key, version, payload); err != nil {
		slog.Warn("journal write failed", "kind", kind, "key", key, "err", err)
	}
}
