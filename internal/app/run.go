package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/engine"
	"github.com/avelex/snipebot/internal/feed"
	"github.com/avelex/snipebot/internal/server"
)

// run starts every long-lived goroutine under one errgroup: the discovery
// feeds, the signal router, the exit evaluator, the WS hub, and the HTTP
// server. The group context cancels them all together when one fails or the
// parent is cancelled.
func (a *App) run(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)
	cfg := a.cfg

	candidates := make(chan domain.TokenSignal, cfg.Feeds.QueueSize)
	promoted := make(chan string, 32)

	// --- Engine ---
	gate := engine.NewGate(deps.Risk, deps.Blacklist, deps.Events, cfg.Risk.MaxHolderPct, a.logger)

	onEntry := func(pos domain.Position) {
		if deps.Notifier.Enabled() {
			go deps.Alerts.Entry(context.WithoutCancel(ctx), pos)
		}
	}
	policies := engine.NewPolicies(
		*cfg, deps.Market, gate, deps.Gateway,
		deps.Book, deps.Blacklist, deps.Events, deps.Scorer,
		onEntry, a.logger,
	)

	aggregator := engine.NewAggregator(cfg.Consensus.MinSignals, func(mint string) {
		select {
		case promoted <- mint:
		default:
			a.logger.Warn("consensus queue full, dropping promotion", slog.String("mint", mint))
		}
	}, a.logger)

	router := engine.NewRouter(candidates, promoted, policies, aggregator, a.logger)
	g.Go(func() error { return router.Run(ctx) })

	evaluator := engine.NewEvaluator(
		*cfg, deps.Market, deps.Gateway, deps.Balances,
		deps.Book, deps.Blacklist, deps.Events, deps.Closes, a.logger,
	)
	g.Go(func() error { return evaluator.Run(ctx) })

	// --- Feeds ---
	if cfg.Feeds.PumpFunWSURL != "" {
		pump := feed.NewPumpFunFeed(cfg.Feeds.PumpFunWSURL, candidates, a.logger)
		g.Go(func() error { return pump.Run(ctx) })
	}
	if cfg.Feeds.MoralisAPIKey != "" {
		moralis := feed.NewMoralisFeed(
			cfg.Feeds.MoralisURL, cfg.Feeds.MoralisAPIKey,
			cfg.Feeds.MoralisInterval.Duration, candidates, a.logger,
		)
		g.Go(func() error { return moralis.Run(ctx) })
	} else {
		a.logger.Info("moralis feed disabled, no api key")
	}
	if cfg.Feeds.BitqueryAPIKey != "" {
		bitquery := feed.NewBitqueryFeed(
			cfg.Feeds.BitqueryURL, cfg.Feeds.BitqueryAPIKey,
			cfg.Feeds.BitqueryInterval.Duration, candidates, a.logger,
		)
		g.Go(func() error { return bitquery.Run(ctx) })
	} else {
		a.logger.Info("bitquery feed disabled, no api key")
	}

	// --- Reporting surface ---
	if cfg.Server.Enabled {
		snapshots := server.NewSnapshotter(deps.Book, deps.Events, deps.Stats)
		hub := server.NewHub(snapshots, cfg.Server.SnapshotInterval.Duration, deps.Publisher, a.logger)
		g.Go(func() error { return hub.Run(ctx) })

		srv := server.NewServer(cfg.Server.Port, snapshots, hub, a.logger)
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	a.logger.Info("snipebot running")
	return g.Wait()
}
