package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelex/snipebot/internal/cache/redis"
	"github.com/avelex/snipebot/internal/config"
	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/gateway"
	"github.com/avelex/snipebot/internal/notify"
	"github.com/avelex/snipebot/internal/platform/dexscreener"
	"github.com/avelex/snipebot/internal/platform/helius"
	"github.com/avelex/snipebot/internal/platform/rugcheck"
	"github.com/avelex/snipebot/internal/score"
	"github.com/avelex/snipebot/internal/server"
	"github.com/avelex/snipebot/internal/store"
	"github.com/avelex/snipebot/internal/store/postgres"
)

// Dependencies bundles everything the run loop needs. Constructed by Wire,
// torn down by the returned cleanup function.
type Dependencies struct {
	// State
	Book      *store.Book
	Blacklist *store.Blacklist
	Events    *store.EventLog
	Stats     *store.Stats

	// External surfaces
	Market   domain.MarketData
	Risk     domain.RiskChecker
	Gateway  domain.ExecutionGateway
	Balances domain.BalanceOracle
	Scorer   domain.Scorer

	// Sinks and alerts
	Closes   domain.CloseSink
	Alerts   *notify.TradeAlerts
	Notifier *notify.Notifier

	// Optional snapshot mirror
	Publisher server.SnapshotPublisher
}

// Wire constructs the concrete dependency graph from cfg and returns it with
// a cleanup function releasing connections in reverse order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Book:      store.NewBook(),
		Blacklist: store.NewBlacklist(cfg.Risk.RuggedDevWindow.Duration),
		Events:    store.NewEventLog(200),
		Stats:     store.NewStats(),
		Scorer:    score.NewDeterministic(70, 97),
	}

	// --- Platform clients ---
	deps.Market = dexscreener.New(cfg.Market.DexscreenerURL, cfg.Market.Timeout.Duration, logger)
	deps.Risk = rugcheck.New(cfg.Risk.RugcheckURL, cfg.Risk.Timeout.Duration, logger)
	deps.Gateway = gateway.NewTelegram("", cfg.Telegram.BotToken, cfg.Telegram.ExecChatID, logger)
	if cfg.Wallet.HeliusAPIKey != "" || cfg.Wallet.HeliusRPCURL != "" {
		deps.Balances = helius.New(cfg.Wallet.HeliusRPCURL, cfg.Wallet.HeliusAPIKey, cfg.Market.Timeout.Duration, logger)
	}

	// --- Redis: price cache + snapshot mirror (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Market = redis.NewCachedMarket(redisClient, deps.Market, cfg.Redis.PriceTTL.Duration, logger)
		deps.Publisher = redis.NewSnapshotPublisher(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender("", cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	deps.Alerts = notify.NewTradeAlerts(deps.Notifier)

	// --- Close-event fan-out: stats always, history and alerts when wired ---
	sinks := store.MultiSink{deps.Stats}
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		history := postgres.NewTradeHistory(pgClient, logger)
		if err := history.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: %w", err)
		}
		sinks = append(sinks, history)
	}
	if deps.Notifier.Enabled() {
		sinks = append(sinks, deps.Alerts)
	}
	deps.Closes = sinks

	return deps, cleanup, nil
}
