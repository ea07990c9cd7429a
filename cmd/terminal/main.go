// Command terminal runs the trading-terminal engine headless: it connects to
// an OpenBroker server, streams market and account updates, and logs every
// derived entity as it changes. A display layer would register the same
// callbacks and render instead of log.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danapple/openbroker/internal/broker"
	"github.com/danapple/openbroker/internal/domain"
	"github.com/danapple/openbroker/internal/engine"
	"github.com/danapple/openbroker/internal/infra"
	"github.com/danapple/openbroker/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		slog.Error("configuration load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(infra.NewLogger(cfg.Logging.Level))

	var journal *storage.Journal
	if cfg.Journal.Path != "" {
		journal, err = storage.OpenJournal(cfg.Journal.Path)
		if err != nil {
			slog.Error("journal open failed", slog.String("path", cfg.Journal.Path), slog.Any("error", err))
			os.Exit(1)
		}
		defer journal.Close()
		slog.Info("session journal enabled", slog.String("path", cfg.Journal.Path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := broker.New(broker.Options{
		RestURL:   cfg.Server.RestURL,
		WSURL:     cfg.Server.WSURL,
		MaxJitter: time.Duration(cfg.Reconnect.MaxJitterMS) * time.Millisecond,
		Journal:   journal,
		Callbacks: logCallbacks(),
	})
	if err := b.Start(ctx); err != nil {
		slog.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("terminal engine started",
		slog.String("rest", cfg.Server.RestURL),
		slog.String("ws", cfg.Server.WSURL))

	<-ctx.Done()
	slog.Info("shutting down")
	b.Stop()
}

// logCallbacks is the headless stand-in for a display surface.
func logCallbacks() engine.Callbacks {
	return engine.Callbacks{
		OnInstrument: func(i domain.Instrument) {
			slog.Info("instrument", slog.String("symbol", i.Symbol), slog.String("key", i.InstrumentKey))
		},
		OnAccount: func(a domain.Account) {
			slog.Info("account", slog.String("key", a.AccountKey), slog.String("name", a.AccountName))
		},
		OnQuote: func(q domain.Quote) {
			slog.Debug("quote", slog.String("key", q.InstrumentKey), slog.Any("mark", q.Mark))
		},
		OnPosition: func(p domain.Position) {
			slog.Info("position",
				slog.String("account", p.AccountKey),
				slog.String("instrument", p.InstrumentKey),
				slog.String("quantity", p.Quantity.String()),
				slog.Any("net_liq", p.NetLiq),
				slog.Any("open_gain", p.OpenGain))
		},
		OnOrderState: func(os_ domain.OrderState) {
			slog.Info("order",
				slog.String("account", os_.Order.AccountKey),
				slog.String("id", os_.Order.ExtOrderID),
				slog.String("status", string(os_.OrderStatus)),
				slog.String("remaining", os_.RemainingQuantity.String()))
		},
		OnBalance: func(b domain.Balance, t domain.Totals) {
			slog.Info("balance",
				slog.String("account", b.AccountKey),
				slog.String("cash", b.Cash.String()),
				slog.String("net_liq", t.NetLiq.String()))
		},
		OnTotals: func(t domain.Totals) {
			slog.Info("totals",
				slog.String("cost", t.Cost.String()),
				slog.String("open_gain", t.OpenGain.String()),
				slog.String("net_liq", t.NetLiq.String()))
		},
	}
}
