package engine

import (
	"context"
	"log/slog"

	"github.com/avelex/snipebot/internal/domain"
	"github.com/avelex/snipebot/internal/solana"
)

// Router is the single consumer of the candidate queue. It validates each
// discovered mint, dispatches the source-appropriate entry policy, and feeds
// every discovery into the consensus vote record. One goroutine; the entry
// policies themselves serialize behind it, which keeps the entry path free
// of per-mint locking.
type Router struct {
	candidates <-chan domain.TokenSignal
	promoted   <-chan string
	policies   *Policies
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewRouter creates a router draining candidates and the consensus-promotion
// queue.
func NewRouter(candidates <-chan domain.TokenSignal, promoted <-chan string, policies *Policies, aggregator *Aggregator, logger *slog.Logger) *Router {
	return &Router{
		candidates: candidates,
		promoted:   promoted,
		policies:   policies,
		aggregator: aggregator,
		logger:     logger.With(slog.String("component", "router")),
	}
}

// Run consumes until ctx is cancelled. A failure handling one signal never
// stops the loop.
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info("router started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("router stopped")
			return ctx.Err()
		case sig, ok := <-r.candidates:
			if !ok {
				return nil
			}
			r.handle(ctx, sig)
		case mint, ok := <-r.promoted:
			if !ok {
				return nil
			}
			// Errors are terminal per promotion; rejections were already
			// logged inside the policy.
			_, _ = r.policies.EnterConsensus(ctx, mint)
		}
	}
}

func (r *Router) handle(ctx context.Context, sig domain.TokenSignal) {
	if !solana.ValidMint(sig.Mint) {
		r.logger.Warn("dropping malformed mint",
			slog.String("mint", sig.Mint),
			slog.String("source", sig.Source),
			slog.String("signal_id", sig.ID),
		)
		return
	}

	r.logger.Debug("candidate",
		slog.String("mint", sig.Mint),
		slog.String("source", sig.Source),
		slog.String("signal_id", sig.ID),
	)

	// Every source counts toward consensus, including the one that also
	// triggers a direct entry below.
	r.aggregator.RecordVote(sig.Mint, sig.Source)

	switch sig.Source {
	case domain.SourcePumpFun:
		_, _ = r.policies.EnterRapid(ctx, sig.Mint)
	case domain.SourceMoralis, domain.SourceBitquery:
		_, _ = r.policies.EnterMomentum(ctx, sig.Mint, sig.Source)
	default:
		r.logger.Warn("unknown signal source", slog.String("source", sig.Source))
	}
}
