package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelex/snipebot/internal/domain"
)

// Well-formed mainnet mint addresses for router validation.
const (
	wsolMint = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func newTestRouter(h *harness, candidates chan domain.TokenSignal, promoted chan string) (*Router, *Aggregator) {
	aggr := NewAggregator(2, func(mint string) {
		select {
		case promoted <- mint:
		default:
		}
	}, slog.Default())
	return NewRouter(candidates, promoted, h.policies, aggr, slog.Default()), aggr
}

func TestRouterDispatchesBySource(t *testing.T) {
	h := newHarness(t)
	h.market.liqSeq[wsolMint] = []float64{10, 12, 15}
	h.market.prices[wsolMint] = 0.001

	candidates := make(chan domain.TokenSignal, 4)
	promoted := make(chan string, 4)
	r, aggr := newTestRouter(h, candidates, promoted)

	r.handle(context.Background(), domain.TokenSignal{ID: "s1", Mint: wsolMint, Source: domain.SourcePumpFun})

	require.Equal(t, []string{wsolMint}, h.gateway.buys, "pumpfun discovery routes to the sniper")
	pos, ok := h.book.Get(wsolMint)
	require.True(t, ok)
	assert.Equal(t, domain.StrategyRapid, pos.Strategy)
	assert.Equal(t, 1, aggr.Sources(wsolMint), "direct entries still count as votes")
}

func TestRouterDropsMalformedMint(t *testing.T) {
	h := newHarness(t)
	candidates := make(chan domain.TokenSignal, 4)
	promoted := make(chan string, 4)
	r, aggr := newTestRouter(h, candidates, promoted)

	r.handle(context.Background(), domain.TokenSignal{ID: "s1", Mint: "not-a-mint!!", Source: domain.SourcePumpFun})

	assert.Empty(t, h.gateway.buys)
	assert.Equal(t, 0, aggr.Sources("not-a-mint!!"), "malformed mints are dropped before voting")
}

func TestRouterPromotesConsensusAcrossSources(t *testing.T) {
	h := newHarness(t)
	// Momentum pre-gates fail so only the consensus path can open anything.
	h.market.prices[usdcMint] = 0.5
	h.market.holders[usdcMint] = domain.HolderStats{Holders: 400, MaxHolderPct: 0.05}

	candidates := make(chan domain.TokenSignal, 4)
	promoted := make(chan string, 4)
	r, _ := newTestRouter(h, candidates, promoted)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	candidates <- domain.TokenSignal{ID: "s1", Mint: usdcMint, Source: domain.SourceMoralis}
	candidates <- domain.TokenSignal{ID: "s2", Mint: usdcMint, Source: domain.SourceBitquery}

	require.Eventually(t, func() bool {
		pos, ok := h.book.Get(usdcMint)
		return ok && pos.Strategy == domain.StrategyConsensus
	}, 2*time.Second, 10*time.Millisecond, "two distinct sources must promote to a consensus entry")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRouterSurvivesPolicyFailure(t *testing.T) {
	h := newHarness(t)
	h.risk.err = assert.AnError // every gate check fails

	candidates := make(chan domain.TokenSignal, 4)
	promoted := make(chan string, 4)
	r, _ := newTestRouter(h, candidates, promoted)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	h.market.liqSeq[wsolMint] = []float64{10, 12, 15}
	candidates <- domain.TokenSignal{ID: "s1", Mint: wsolMint, Source: domain.SourcePumpFun}
	candidates <- domain.TokenSignal{ID: "s2", Mint: wsolMint, Source: domain.SourcePumpFun}

	require.Eventually(t, func() bool { return len(candidates) == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, h.gateway.buys)
}
